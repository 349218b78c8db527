package feed

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Config controls the simulator timings. Zero durations and sizes fall back
// to DefaultConfig; probabilities are used as given.
type Config struct {
	ConnectDelay    time.Duration `yaml:"connect_delay"`
	SalesInterval   time.Duration `yaml:"sales_interval"`
	CheckInterval   time.Duration `yaml:"check_interval"`
	MetricsInterval time.Duration `yaml:"metrics_interval"`

	InventoryProbability float64 `yaml:"inventory_probability"`
	ActivityProbability  float64 `yaml:"activity_probability"`
	OrderProbability     float64 `yaml:"order_probability"`

	BufferSize      int   `yaml:"buffer_size"`
	NotificationCap int   `yaml:"notification_cap"`
	Seed            int64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		ConnectDelay:         1500 * time.Millisecond,
		SalesInterval:        5 * time.Second,
		CheckInterval:        5 * time.Second,
		MetricsInterval:      10 * time.Second,
		InventoryProbability: 0.25,
		ActivityProbability:  0.6,
		OrderProbability:     0.3,
		BufferSize:           10,
		NotificationCap:      50,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.ConnectDelay <= 0 {
		c.ConnectDelay = d.ConnectDelay
	}
	if c.SalesInterval <= 0 {
		c.SalesInterval = d.SalesInterval
	}
	if c.CheckInterval <= 0 {
		c.CheckInterval = d.CheckInterval
	}
	if c.MetricsInterval <= 0 {
		c.MetricsInterval = d.MetricsInterval
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.NotificationCap <= 0 {
		c.NotificationCap = d.NotificationCap
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c
}

type State int

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type Snapshot struct {
	State       State                `json:"state"`
	ConnectedAt time.Time            `json:"connectedAt,omitempty"`
	Metrics     Metrics              `json:"metrics"`
	Recent      map[Category][]Event `json:"recent"`
	Unread      []Notification       `json:"unread"`
}

// Simulator is a Feed backed by random generators on timers. It is safe
// for concurrent use; handlers run on the simulator goroutine, outside any
// lock.
type Simulator struct {
	cfg Config
	log *zap.Logger
	now func() time.Time

	// rng is only touched by the run goroutine.
	rng *rand.Rand

	mu          sync.RWMutex
	state       State
	startedAt   time.Time
	connectedAt time.Time
	buffers     map[Category]*ring[Event]
	unread      []Notification
	metrics     Metrics

	subs subscribers

	lifeMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Simulator)

func WithLogger(log *zap.Logger) Option {
	return func(s *Simulator) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func NewSimulator(cfg Config, opts ...Option) *Simulator {
	cfg = cfg.withDefaults()
	s := &Simulator{
		cfg:     cfg,
		log:     zap.NewNop(),
		now:     time.Now,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		buffers: make(map[Category]*ring[Event], len(Categories)),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, c := range Categories {
		s.buffers[c] = newRing[Event](cfg.BufferSize)
	}
	s.metrics = InitialMetrics(s.rng)
	return s
}

func (s *Simulator) Config() Config { return s.cfg }

// Start moves the simulator to connecting and, after ConnectDelay, to
// connected. Generation stops when ctx is cancelled or Stop is called.
func (s *Simulator) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.mu.Lock()
	s.state = Connecting
	s.startedAt = s.now()
	s.connectedAt = time.Time{}
	s.mu.Unlock()

	s.log.Info("feed simulator connecting", zap.Duration("delay", s.cfg.ConnectDelay))
	go s.run(ctx, s.done)
	return nil
}

// Stop cancels every timer and waits for the run goroutine to exit.
func (s *Simulator) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// Done is closed when the current run ends. It is nil before Start.
func (s *Simulator) Done() <-chan struct{} {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	return s.done
}

func (s *Simulator) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer s.setState(Disconnected)

	handshake := time.NewTimer(s.cfg.ConnectDelay)
	defer handshake.Stop()
	select {
	case <-ctx.Done():
		return
	case <-handshake.C:
	}

	s.mu.Lock()
	s.state = Connected
	s.connectedAt = s.now()
	s.mu.Unlock()
	s.log.Info("feed simulator connected")

	sales := time.NewTicker(s.cfg.SalesInterval)
	defer sales.Stop()
	checks := time.NewTicker(s.cfg.CheckInterval)
	defer checks.Stop()
	metrics := time.NewTicker(s.cfg.MetricsInterval)
	defer metrics.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("feed simulator stopped")
			return
		case <-sales.C:
			s.tickSales()
		case <-checks.C:
			s.tickChecks()
		case <-metrics.C:
			s.tickMetrics()
		}
	}
}

func (s *Simulator) tickSales() {
	p := GenerateSalesPoint(s.rng, s.now())
	s.mu.Lock()
	s.metrics.RevenueToday = s.metrics.RevenueToday.Add(p.Revenue)
	s.metrics.OrdersToday += p.Orders
	s.mu.Unlock()
	s.publish(CategorySales, p)
}

// tickChecks runs the inventory, activity and order checks, each gated by
// its own Bernoulli draw.
func (s *Simulator) tickChecks() {
	now := s.now()
	if s.rng.Float64() < s.cfg.InventoryProbability {
		s.publish(CategoryInventory, GenerateInventoryAlert(s.rng, now))
	}
	if s.rng.Float64() < s.cfg.ActivityProbability {
		s.publish(CategoryActivity, GenerateCustomerActivity(s.rng, now))
	}
	if s.rng.Float64() < s.cfg.OrderProbability {
		s.publish(CategoryOrders, GenerateOrder(s.rng, now))
	}
}

func (s *Simulator) tickMetrics() {
	s.mu.Lock()
	s.metrics = PerturbMetrics(s.rng, s.metrics)
	m := s.metrics
	s.mu.Unlock()
	s.publish(CategoryMetrics, m)
}

// Publish injects an event from outside the generators, e.g. a real order
// placed through the storefront. It works whether or not the simulator is
// running.
func (s *Simulator) Publish(c Category, p Payload) {
	s.publish(c, p)
}

// publish buffers the event, fans it out and raises any notification the
// payload calls for.
func (s *Simulator) publish(c Category, p Payload) {
	if !s.dispatch(c, p) {
		return
	}

	n, ok := notificationFor(p)
	if !ok {
		return
	}
	n.ID = uuid.NewString()
	n.CreatedAt = s.now()

	s.mu.Lock()
	s.unread = append([]Notification{n}, s.unread...)
	if len(s.unread) > s.cfg.NotificationCap {
		s.unread = s.unread[:s.cfg.NotificationCap]
	}
	s.mu.Unlock()

	s.dispatch(CategoryNotifications, n)
	if n.Priority == PriorityHigh {
		s.dispatch(CategoryAlerts, n)
	}
}

// dispatch reports false when c has no buffer; such events are dropped.
func (s *Simulator) dispatch(c Category, p Payload) bool {
	e := Event{ID: uuid.NewString(), Category: c, Timestamp: s.now(), Payload: p}

	s.mu.Lock()
	b, ok := s.buffers[c]
	if ok {
		b.push(e)
	}
	s.mu.Unlock()
	if !ok {
		s.log.Warn("feed event dropped: unknown category", zap.String("category", string(c)))
		return false
	}

	s.log.Debug("feed event", zap.String("category", string(c)), zap.String("id", e.ID))
	for _, h := range s.subs.handlers(c) {
		h(e)
	}
	return true
}

func (s *Simulator) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Simulator) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Simulator) IsConnected() bool {
	return s.State() == Connected
}

// ConnectedAt is zero until the handshake delay has elapsed.
func (s *Simulator) ConnectedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connectedAt
}

func (s *Simulator) Subscribe(c Category, h Handler) func() {
	return s.subs.add(c, h)
}

// Recent returns the buffered events of c, newest first.
func (s *Simulator) Recent(c Category) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.buffers[c]
	if !ok {
		return nil
	}
	return b.items()
}

func (s *Simulator) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metrics
}

// Unread returns the unacknowledged notifications, newest first.
func (s *Simulator) Unread() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Notification(nil), s.unread...)
}

// Acknowledge marks one notification read. It reports whether id was
// unread.
func (s *Simulator) Acknowledge(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.unread {
		if n.ID == id {
			s.unread = append(s.unread[:i:i], s.unread[i+1:]...)
			return true
		}
	}
	return false
}

// AcknowledgeAll empties the unread list and returns how many it held.
func (s *Simulator) AcknowledgeAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.unread)
	s.unread = nil
	return n
}

func (s *Simulator) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{
		State:       s.state,
		ConnectedAt: s.connectedAt,
		Metrics:     s.metrics,
		Recent:      make(map[Category][]Event, len(s.buffers)),
		Unread:      append([]Notification(nil), s.unread...),
	}
	for c, b := range s.buffers {
		snap.Recent[c] = b.items()
	}
	return snap
}
