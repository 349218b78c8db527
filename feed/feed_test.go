package feed

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fastConfig() Config {
	return Config{
		ConnectDelay:         60 * time.Millisecond,
		SalesInterval:        2 * time.Millisecond,
		CheckInterval:        2 * time.Millisecond,
		MetricsInterval:      3 * time.Millisecond,
		InventoryProbability: 1,
		ActivityProbability:  1,
		OrderProbability:     1,
		BufferSize:           4,
		NotificationCap:      5,
		Seed:                 42,
	}
}

func TestSimulator_NotConnectedBeforeDelay(t *testing.T) {
	cfg := fastConfig()
	s := NewSimulator(cfg)
	assert.Equal(t, Disconnected, s.State())

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	started := s.startedAt

	assert.False(t, s.IsConnected())
	assert.Equal(t, Connecting, s.State())

	require.Eventually(t, s.IsConnected, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, s.ConnectedAt().Sub(started), cfg.ConnectDelay)
}

func TestSimulator_BuffersNeverExceedCap(t *testing.T) {
	cfg := fastConfig()
	s := NewSimulator(cfg)

	var sales atomic.Int32
	unsub := s.Subscribe(CategorySales, func(Event) { sales.Add(1) })
	defer unsub()

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()
	deadline := time.Now().Add(3 * time.Second)
	for sales.Load() <= int32(3*cfg.BufferSize) && time.Now().Before(deadline) {
		for _, c := range Categories {
			require.LessOrEqual(t, len(s.Recent(c)), cfg.BufferSize, "category %s", c)
		}
		require.LessOrEqual(t, len(s.Unread()), cfg.NotificationCap)
		time.Sleep(2 * time.Millisecond)
	}
	require.Greater(t, sales.Load(), int32(3*cfg.BufferSize))
	s.Stop()

	assert.Len(t, s.Recent(CategorySales), cfg.BufferSize)
	assert.Equal(t, Disconnected, s.State())
}

func TestSimulator_StopBeforeConnect(t *testing.T) {
	cfg := fastConfig()
	cfg.ConnectDelay = time.Hour
	s := NewSimulator(cfg)

	require.NoError(t, s.Start(context.Background()))
	s.Stop()
	s.Stop()

	assert.False(t, s.IsConnected())
	assert.True(t, s.ConnectedAt().IsZero())
}

func TestSimulator_StartTwice(t *testing.T) {
	s := NewSimulator(fastConfig())
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.ErrorIs(t, s.Start(context.Background()), ErrAlreadyStarted)
}

func TestSimulator_ContextCancelReleasesTimers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewSimulator(fastConfig())
	require.NoError(t, s.Start(ctx))
	done := s.Done()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("simulator did not stop on cancel")
	}
	assert.Equal(t, Disconnected, s.State())
	s.Stop()

	require.NoError(t, s.Start(context.Background()), "restart after cancel")
	s.Stop()
}

func TestSimulator_Notifications(t *testing.T) {
	s := NewSimulator(fastConfig())

	var alerts []Event
	var mu sync.Mutex
	s.Subscribe(CategoryAlerts, func(e Event) {
		mu.Lock()
		alerts = append(alerts, e)
		mu.Unlock()
	})

	s.publish(CategoryInventory, InventoryAlert{ProductName: "Tee", SKU: "TEE", Level: AlertOutOfStock})
	s.publish(CategoryInventory, InventoryAlert{ProductName: "Tee", SKU: "TEE", Level: AlertLowStock, Stock: 2})
	s.publish(CategoryOrders, OrderEvent{OrderNumber: "ORD-2024-001", Customer: "Ada", Total: decimal.NewFromInt(10)})
	s.publish(CategoryActivity, CustomerActivity{Customer: "Ada", Kind: ActivitySignup, City: "Doha"})
	s.publish(CategoryActivity, CustomerActivity{Customer: "Ada", Kind: ActivityViewed, City: "Doha"})

	unread := s.Unread()
	require.Len(t, unread, 3)
	assert.Equal(t, PriorityLow, unread[0].Priority, "newest first")
	assert.Equal(t, PriorityMedium, unread[1].Priority)
	assert.Equal(t, PriorityHigh, unread[2].Priority)

	mu.Lock()
	require.Len(t, alerts, 1, "only high priority is raised as an alert")
	assert.Equal(t, unread[2].ID, alerts[0].Payload.(Notification).ID)
	mu.Unlock()
	assert.Len(t, s.Recent(CategoryNotifications), 3)

	assert.True(t, s.Acknowledge(unread[1].ID))
	assert.False(t, s.Acknowledge(unread[1].ID))
	assert.Len(t, s.Unread(), 2)
	assert.Equal(t, 2, s.AcknowledgeAll())
	assert.Empty(t, s.Unread())
}

func TestSimulator_OrderStatusChangeIsNotANewOrder(t *testing.T) {
	s := NewSimulator(fastConfig())

	s.Publish(CategoryOrders, OrderEvent{OrderNumber: "ORD-2024-001", Status: "delivered"})
	s.Publish(CategoryOrders, OrderEvent{OrderNumber: "ORD-2024-002", Customer: "Ada", Status: "pending", Total: decimal.NewFromInt(5)})

	unread := s.Unread()
	require.Len(t, unread, 2)
	assert.Equal(t, "New order", unread[0].Title)
	assert.Equal(t, "Ada placed ORD-2024-002 for 5.00", unread[0].Message)
	assert.Equal(t, "Order updated", unread[1].Title)
	assert.Equal(t, "ORD-2024-001 is now delivered", unread[1].Message)
	assert.Equal(t, PriorityLow, unread[1].Priority)
	assert.Len(t, s.Recent(CategoryOrders), 2)
}

func TestSimulator_PublishUnknownCategoryIsDropped(t *testing.T) {
	s := NewSimulator(fastConfig())
	var n int
	s.Subscribe(Category("returns"), func(Event) { n++ })

	assert.NotPanics(t, func() {
		s.Publish(Category("returns"), OrderEvent{OrderNumber: "ORD-2024-003"})
	})
	assert.Zero(t, n)
	assert.Empty(t, s.Recent(Category("returns")))
	assert.Empty(t, s.Unread())
	assert.Empty(t, s.Recent(CategoryNotifications))
}

func TestSimulator_NotificationCap(t *testing.T) {
	cfg := fastConfig()
	s := NewSimulator(cfg)
	for i := 0; i < cfg.NotificationCap+3; i++ {
		s.publish(CategoryOrders, OrderEvent{OrderNumber: string(rune('A' + i))})
	}

	unread := s.Unread()
	require.Len(t, unread, cfg.NotificationCap)
	assert.Contains(t, unread[0].Message, string(rune('A'+cfg.NotificationCap+2)))
}

func TestSimulator_Unsubscribe(t *testing.T) {
	s := NewSimulator(fastConfig())
	var n int
	unsub := s.Subscribe(CategoryOrders, func(Event) { n++ })

	s.publish(CategoryOrders, OrderEvent{})
	unsub()
	unsub()
	s.publish(CategoryOrders, OrderEvent{})

	assert.Equal(t, 1, n)
	assert.Equal(t, 0, s.subs.count(CategoryOrders))
}

func TestSimulator_SnapshotCopies(t *testing.T) {
	s := NewSimulator(fastConfig())
	s.publish(CategoryOrders, OrderEvent{OrderNumber: "ORD-1"})

	snap := s.Snapshot()
	assert.Equal(t, Disconnected, snap.State)
	require.Len(t, snap.Recent[CategoryOrders], 1)
	require.Len(t, snap.Unread, 1)

	snap.Unread[0].Title = "changed"
	assert.Equal(t, "New order", s.Unread()[0].Title)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"state":"disconnected"`)
}

func TestRing_KeepsNewestFirst(t *testing.T) {
	r := newRing[int](3)
	for i := 1; i <= 5; i++ {
		r.push(i)
	}
	assert.Equal(t, []int{5, 4, 3}, r.items())
	assert.Equal(t, 3, r.len())
}

func TestGenerators_Deterministic(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	run := func() []Payload {
		rng := rand.New(rand.NewSource(7))
		return []Payload{
			GenerateSalesPoint(rng, now),
			GenerateInventoryAlert(rng, now),
			GenerateCustomerActivity(rng, now),
			GenerateOrder(rng, now),
		}
	}
	assert.Equal(t, run(), run())

	o := GenerateOrder(rand.New(rand.NewSource(1)), now)
	assert.True(t, strings.HasPrefix(o.OrderNumber, "ORD-2024-"))
	assert.Positive(t, o.Items)
	assert.True(t, o.Total.IsPositive())
}

func TestPerturbMetrics_BoundedStep(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := InitialMetrics(rng)
	for i := 0; i < 100; i++ {
		next := PerturbMetrics(rng, m)
		assert.LessOrEqual(t, absf(next.RevenueTrend), 5.0)
		assert.LessOrEqual(t, absf(next.ConversionTrend), 5.0)
		assert.GreaterOrEqual(t, next.ActiveVisitors, 0)
		m = next
	}
}

func absf(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func TestEvent_UnmarshalPayloadByCategory(t *testing.T) {
	in := Event{
		ID:        "e1",
		Category:  CategoryAlerts,
		Timestamp: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
		Payload:   Notification{ID: "n1", Title: "Out of stock", Priority: PriorityHigh, Source: CategoryInventory},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Event
	require.NoError(t, json.Unmarshal(data, &out))
	n, ok := out.Payload.(Notification)
	require.True(t, ok, "payload is %T", out.Payload)
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, PriorityHigh, n.Priority)

	assert.Error(t, json.Unmarshal([]byte(`{"category":"weather","payload":{}}`), &out))
}

func TestHubStreamsToRemote(t *testing.T) {
	hub := NewHub(nil)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r)
	}))
	defer srv.Close()
	defer hub.Close()

	sim := NewSimulator(fastConfig())
	detach := hub.Attach(sim)
	defer detach()

	remote := NewRemote("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	assert.False(t, remote.IsConnected())
	require.NoError(t, remote.Start(context.Background()))
	defer remote.Stop()
	assert.True(t, remote.IsConnected())

	got := make(chan Event, 4)
	remote.Subscribe(CategoryOrders, func(e Event) { got <- e })
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, 2*time.Second, 5*time.Millisecond)

	sim.publish(CategoryOrders, OrderEvent{OrderNumber: "ORD-2024-007", Total: decimal.RequireFromString("12.50")})

	select {
	case e := <-got:
		o, ok := e.Payload.(OrderEvent)
		require.True(t, ok)
		assert.Equal(t, "ORD-2024-007", o.OrderNumber)
		assert.True(t, decimal.RequireFromString("12.50").Equal(o.Total))
	case <-time.After(2 * time.Second):
		t.Fatal("remote received nothing")
	}

	remote.Stop()
	assert.False(t, remote.IsConnected())
	require.Eventually(t, func() bool { return hub.Clients() == 0 }, 2*time.Second, 5*time.Millisecond)
}
