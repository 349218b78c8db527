// Package feed produces the dashboard event stream. Simulator generates
// plausible events on timers; Remote reads the same stream from a BFF
// websocket. Both satisfy Feed so callers never know which one they hold.
package feed

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrAlreadyStarted = errors.New("feed: already started")

type Category string

const (
	CategorySales         Category = "sales"
	CategoryInventory     Category = "inventory"
	CategoryActivity      Category = "activity"
	CategoryOrders        Category = "orders"
	CategoryMetrics       Category = "metrics"
	CategoryNotifications Category = "notifications"
	// CategoryAlerts carries high priority notifications as they happen.
	CategoryAlerts Category = "alerts"
)

// Categories lists every category that keeps a recent-events buffer.
var Categories = []Category{
	CategorySales,
	CategoryInventory,
	CategoryActivity,
	CategoryOrders,
	CategoryMetrics,
	CategoryNotifications,
	CategoryAlerts,
}

type Handler func(Event)

type Feed interface {
	IsConnected() bool
	// Subscribe registers h for events of category c. The returned func
	// removes the subscription and is safe to call more than once.
	Subscribe(c Category, h Handler) (unsubscribe func())
}

// Payload is one of SalesPoint, InventoryAlert, CustomerActivity,
// OrderEvent, Notification or Metrics.
type Payload interface {
	payload()
}

type Event struct {
	ID        string    `json:"id"`
	Category  Category  `json:"category"`
	Timestamp time.Time `json:"timestamp"`
	Payload   Payload   `json:"payload"`
}

func (e *Event) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Category  Category        `json:"category"`
		Timestamp time.Time       `json:"timestamp"`
		Payload   json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var p Payload
	switch raw.Category {
	case CategorySales:
		p = &SalesPoint{}
	case CategoryInventory:
		p = &InventoryAlert{}
	case CategoryActivity:
		p = &CustomerActivity{}
	case CategoryOrders:
		p = &OrderEvent{}
	case CategoryMetrics:
		p = &Metrics{}
	case CategoryNotifications, CategoryAlerts:
		p = &Notification{}
	default:
		return fmt.Errorf("feed: unknown category %q", raw.Category)
	}
	if len(raw.Payload) > 0 && string(raw.Payload) != "null" {
		if err := json.Unmarshal(raw.Payload, p); err != nil {
			return fmt.Errorf("feed: decode %s payload: %w", raw.Category, err)
		}
	}

	e.ID, e.Category, e.Timestamp = raw.ID, raw.Category, raw.Timestamp
	e.Payload = deref(p)
	return nil
}

func deref(p Payload) Payload {
	switch v := p.(type) {
	case *SalesPoint:
		return *v
	case *InventoryAlert:
		return *v
	case *CustomerActivity:
		return *v
	case *OrderEvent:
		return *v
	case *Metrics:
		return *v
	case *Notification:
		return *v
	}
	return p
}

type SalesPoint struct {
	Time    time.Time       `json:"time"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

type AlertLevel string

const (
	AlertLowStock   AlertLevel = "low_stock"
	AlertOutOfStock AlertLevel = "out_of_stock"
	AlertRestocked  AlertLevel = "restocked"
)

type InventoryAlert struct {
	ProductName string     `json:"productName"`
	SKU         string     `json:"sku"`
	Stock       int        `json:"stock"`
	Level       AlertLevel `json:"level"`
}

type ActivityKind string

const (
	ActivityViewed    ActivityKind = "viewed"
	ActivityAddToCart ActivityKind = "added_to_cart"
	ActivityWishlist  ActivityKind = "wishlisted"
	ActivitySignup    ActivityKind = "signed_up"
	ActivityReview    ActivityKind = "reviewed"
)

type CustomerActivity struct {
	Customer    string       `json:"customer"`
	Kind        ActivityKind `json:"kind"`
	ProductName string       `json:"productName,omitempty"`
	City        string       `json:"city"`
}

type OrderEvent struct {
	OrderNumber string          `json:"orderNumber"`
	Customer    string          `json:"customer"`
	Items       int             `json:"items"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
}

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Priority  Priority  `json:"priority"`
	Source    Category  `json:"source"`
	CreatedAt time.Time `json:"createdAt"`
}

// Metrics are the headline dashboard numbers. Each *Trend is the percent
// change applied by the last perturbation.
type Metrics struct {
	RevenueToday    decimal.Decimal `json:"revenueToday"`
	RevenueTrend    float64         `json:"revenueTrend"`
	OrdersToday     int             `json:"ordersToday"`
	OrdersTrend     float64         `json:"ordersTrend"`
	ActiveVisitors  int             `json:"activeVisitors"`
	VisitorsTrend   float64         `json:"visitorsTrend"`
	ConversionRate  float64         `json:"conversionRate"`
	ConversionTrend float64         `json:"conversionTrend"`
}

func (SalesPoint) payload()       {}
func (InventoryAlert) payload()   {}
func (CustomerActivity) payload() {}
func (OrderEvent) payload()       {}
func (Notification) payload()     {}
func (Metrics) payload()          {}
