package feed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/shopspring/decimal"
)

var (
	catalogProducts = []struct {
		name, sku string
		price     string
	}{
		{"Classic Crew Tee", "TEE-CLS-M", "29.99"},
		{"Slim Fit Chinos", "CHN-SLM-32", "51.98"},
		{"Linen Summer Shirt", "SHT-LIN-L", "44.50"},
		{"Denim Trucker Jacket", "JKT-DNM-M", "89.00"},
		{"Merino Knit Sweater", "SWT-MER-S", "74.25"},
		{"Canvas Low Sneakers", "SNK-CNV-42", "59.90"},
		{"Leather Card Wallet", "ACC-WAL-01", "24.00"},
		{"Pleated Midi Skirt", "SKT-PLT-S", "39.95"},
	}

	catalogCustomers = []string{
		"Aisha K.", "Omar S.", "Lena M.", "Ravi P.", "Sofia G.",
		"Yusuf A.", "Mei L.", "Daniel R.", "Fatima H.", "Noah B.",
	}

	catalogCities = []string{
		"Dubai", "Abu Dhabi", "Sharjah", "Riyadh", "Doha", "Muscat", "Manama",
	}

	activityKinds = []ActivityKind{
		ActivityViewed, ActivityViewed, ActivityViewed,
		ActivityAddToCart, ActivityAddToCart,
		ActivityWishlist, ActivitySignup, ActivityReview,
	}
)

// GenerateSalesPoint is the revenue booked in one sales interval.
func GenerateSalesPoint(rng *rand.Rand, now time.Time) SalesPoint {
	orders := 1 + rng.Intn(6)
	revenue := decimal.Zero
	for i := 0; i < orders; i++ {
		p := catalogProducts[rng.Intn(len(catalogProducts))]
		qty := 1 + rng.Intn(3)
		revenue = revenue.Add(decimal.RequireFromString(p.price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return SalesPoint{Time: now, Revenue: revenue, Orders: orders}
}

func GenerateInventoryAlert(rng *rand.Rand, _ time.Time) InventoryAlert {
	p := catalogProducts[rng.Intn(len(catalogProducts))]
	a := InventoryAlert{ProductName: p.name, SKU: p.sku}
	switch r := rng.Float64(); {
	case r < 0.3:
		a.Level, a.Stock = AlertOutOfStock, 0
	case r < 0.85:
		a.Level, a.Stock = AlertLowStock, 1+rng.Intn(5)
	default:
		a.Level, a.Stock = AlertRestocked, 20+rng.Intn(80)
	}
	return a
}

func GenerateCustomerActivity(rng *rand.Rand, _ time.Time) CustomerActivity {
	a := CustomerActivity{
		Customer: catalogCustomers[rng.Intn(len(catalogCustomers))],
		Kind:     activityKinds[rng.Intn(len(activityKinds))],
		City:     catalogCities[rng.Intn(len(catalogCities))],
	}
	if a.Kind != ActivitySignup {
		a.ProductName = catalogProducts[rng.Intn(len(catalogProducts))].name
	}
	return a
}

func GenerateOrder(rng *rand.Rand, now time.Time) OrderEvent {
	lines := 1 + rng.Intn(4)
	total := decimal.Zero
	items := 0
	for i := 0; i < lines; i++ {
		p := catalogProducts[rng.Intn(len(catalogProducts))]
		qty := 1 + rng.Intn(2)
		items += qty
		total = total.Add(decimal.RequireFromString(p.price).Mul(decimal.NewFromInt(int64(qty))))
	}
	return OrderEvent{
		OrderNumber: fmt.Sprintf("ORD-%d-%03d", now.Year(), 1+rng.Intn(999)),
		Customer:    catalogCustomers[rng.Intn(len(catalogCustomers))],
		Items:       items,
		Total:       total,
		Status:      "pending",
	}
}

// InitialMetrics seeds the dashboard before the first perturbation.
func InitialMetrics(rng *rand.Rand) Metrics {
	return Metrics{
		RevenueToday:   decimal.NewFromInt(int64(8000 + rng.Intn(4000))).Add(decimal.New(int64(rng.Intn(100)), -2)),
		OrdersToday:    120 + rng.Intn(60),
		ActiveVisitors: 300 + rng.Intn(200),
		ConversionRate: 2.5 + rng.Float64(),
	}
}

// PerturbMetrics moves every metric by a bounded random walk step of at
// most 5% and records the step as the trend.
func PerturbMetrics(rng *rand.Rand, m Metrics) Metrics {
	step := func() float64 { return (rng.Float64()*2 - 1) * 0.05 }

	out := m
	rs := step()
	out.RevenueToday = m.RevenueToday.Mul(decimal.NewFromFloat(1 + rs)).Round(2)
	out.RevenueTrend = percent(rs)

	ords := step()
	out.OrdersToday = walkInt(m.OrdersToday, ords)
	out.OrdersTrend = percent(ords)

	vs := step()
	out.ActiveVisitors = walkInt(m.ActiveVisitors, vs)
	out.VisitorsTrend = percent(vs)

	cs := step()
	out.ConversionRate = math.Round(m.ConversionRate*(1+cs)*100) / 100
	out.ConversionTrend = percent(cs)
	return out
}

func walkInt(v int, step float64) int {
	n := int(math.Round(float64(v) * (1 + step)))
	if n < 0 {
		return 0
	}
	return n
}

func percent(step float64) float64 {
	return math.Round(step*1000) / 10
}

// notificationFor returns the notification a high-signal event raises, if
// any.
func notificationFor(p Payload) (Notification, bool) {
	switch v := p.(type) {
	case InventoryAlert:
		if v.Level != AlertOutOfStock {
			return Notification{}, false
		}
		return Notification{
			Title:    "Out of stock",
			Message:  fmt.Sprintf("%s (%s) is out of stock", v.ProductName, v.SKU),
			Priority: PriorityHigh,
			Source:   CategoryInventory,
		}, true
	case OrderEvent:
		if v.Status != "" && v.Status != "pending" {
			return Notification{
				Title:    "Order updated",
				Message:  fmt.Sprintf("%s is now %s", v.OrderNumber, v.Status),
				Priority: PriorityLow,
				Source:   CategoryOrders,
			}, true
		}
		return Notification{
			Title:    "New order",
			Message:  fmt.Sprintf("%s placed %s for %s", v.Customer, v.OrderNumber, v.Total.StringFixed(2)),
			Priority: PriorityMedium,
			Source:   CategoryOrders,
		}, true
	case CustomerActivity:
		if v.Kind != ActivitySignup {
			return Notification{}, false
		}
		return Notification{
			Title:    "New customer",
			Message:  fmt.Sprintf("%s signed up from %s", v.Customer, v.City),
			Priority: PriorityLow,
			Source:   CategoryActivity,
		}, true
	}
	return Notification{}, false
}
