// Package cart keeps a shopping cart across a session, for guests and for
// signed-in users alike.
//
// A guest cart is persisted as a versioned snapshot through the storage
// port. An authenticated cart pushes every change to the server through a
// Syncer. In both modes the in-memory state is the source of truth: a
// failed persist is returned to the caller but never rolled back.
package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrUnknownVariant = errors.New("cart: unknown variant")

// Syncer pushes cart changes to the server cart.
type Syncer interface {
	PutCartItem(ctx context.Context, item models.CartItem) error
	DeleteCartItem(ctx context.Context, variantID string) error
	ClearCart(ctx context.Context) error
}

type Mode int

const (
	ModeGuest Mode = iota
	ModeAuthenticated
)

func (m Mode) String() string {
	if m == ModeAuthenticated {
		return "authenticated"
	}
	return "guest"
}

type snapshot struct {
	CartID string            `json:"cartId"`
	Items  []models.CartItem `json:"items"`
}

type Store struct {
	log   *zap.Logger
	store storage.Store
	now   func() time.Time

	// syncMu is held across a mutation and its persist, so mutations of
	// one cart reach storage or the server in the order they were applied.
	syncMu sync.Mutex

	mu     sync.RWMutex
	mode   Mode
	id     string
	items  []models.CartItem
	syncer Syncer
}

type Option func(*Store)

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) { s.log = log }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func newStore(store storage.Store, opts []Option) *Store {
	s := &Store{
		log:   zap.NewNop(),
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadGuest restores the guest cart saved in store. The cart id is created
// lazily on the first write when none was saved yet.
func LoadGuest(ctx context.Context, store storage.Store, opts ...Option) (*Store, error) {
	s := newStore(store, opts)
	s.mode = ModeGuest

	var id string
	if _, err := storage.GetJSON(ctx, store, storage.KeyGuestCartID, &id); err != nil && !errors.Is(err, storage.ErrVersionMismatch) {
		return nil, fmt.Errorf("cart: load guest id: %w", err)
	}

	var snap snapshot
	ok, err := storage.GetJSON(ctx, store, storage.KeyCart, &snap)
	switch {
	case errors.Is(err, storage.ErrVersionMismatch):
		s.log.Warn("discarding guest cart written by another format version", zap.Error(err))
	case err != nil:
		return nil, fmt.Errorf("cart: load guest cart: %w", err)
	case ok:
		s.items = sanitize(snap.Items)
		if id == "" {
			id = snap.CartID
		}
	}
	s.id = id
	return s, nil
}

// NewAuthenticated wraps the server cart of a signed-in user.
func NewAuthenticated(server models.Cart, syncer Syncer, store storage.Store, opts ...Option) *Store {
	s := newStore(store, opts)
	s.mode = ModeAuthenticated
	s.id = server.ID
	s.items = sanitize(server.Items)
	s.syncer = syncer
	return s
}

func (s *Store) ID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.id
}

func (s *Store) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// SetSyncer replaces the server syncer, e.g. when the bearer token changes.
func (s *Store) SetSyncer(syncer Syncer) {
	s.mu.Lock()
	s.syncer = syncer
	s.mu.Unlock()
}

// Items returns a copy of the lines in display order.
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.CartItem(nil), s.items...)
}

// Snapshot returns the cart as a models.Cart.
func (s *Store) Snapshot() models.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.Cart{ID: s.id, Items: append([]models.CartItem(nil), s.items...)}
}

func (s *Store) TotalPrice() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.LineTotal())
	}
	return total
}

func (s *Store) TotalItems() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// AddItem adds item.Quantity units of the variant. An existing line is
// incremented, a new one is appended. Quantities are capped at the known
// stock.
func (s *Store) AddItem(ctx context.Context, item models.CartItem) error {
	if item.VariantID == "" {
		return fmt.Errorf("%w: empty variant id", ErrUnknownVariant)
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	s.ensureID()
	var line models.CartItem
	if i := s.indexOf(item.VariantID); i >= 0 {
		cur := &s.items[i]
		if item.Stock > 0 {
			cur.Stock = item.Stock
		}
		cur.Quantity = clamp(cur.Quantity+item.Quantity, cur.Stock)
		line = *cur
	} else {
		item.Quantity = clamp(item.Quantity, item.Stock)
		if item.AddedAt.IsZero() {
			item.AddedAt = s.now()
		}
		s.items = append(s.items, item)
		line = item
	}
	s.mu.Unlock()

	return s.persist(ctx, func(ctx context.Context, syncer Syncer) error {
		return syncer.PutCartItem(ctx, line)
	})
}

// UpdateQuantity sets the quantity of a line, clamped to [1, stock].
// A quantity of zero or less removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, variantID string, qty int) error {
	if qty <= 0 {
		return s.RemoveItem(ctx, variantID)
	}

	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	i := s.indexOf(variantID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownVariant, variantID)
	}
	s.items[i].Quantity = clamp(qty, s.items[i].Stock)
	line := s.items[i]
	s.mu.Unlock()

	return s.persist(ctx, func(ctx context.Context, syncer Syncer) error {
		return syncer.PutCartItem(ctx, line)
	})
}

// RemoveItem deletes a line. Removing an absent variant is not an error.
func (s *Store) RemoveItem(ctx context.Context, variantID string) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	if i := s.indexOf(variantID); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.mu.Unlock()

	return s.persist(ctx, func(ctx context.Context, syncer Syncer) error {
		return syncer.DeleteCartItem(ctx, variantID)
	})
}

// Clear empties the cart, e.g. after an order was placed.
func (s *Store) Clear(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	return s.persist(ctx, func(ctx context.Context, syncer Syncer) error {
		return syncer.ClearCart(ctx)
	})
}

// persist writes the current state. Guest carts are snapshotted to storage,
// authenticated carts run remote against the syncer. Callers hold syncMu.
func (s *Store) persist(ctx context.Context, remote func(context.Context, Syncer) error) error {
	s.mu.RLock()
	mode, syncer := s.mode, s.syncer
	snap := snapshot{CartID: s.id, Items: append([]models.CartItem(nil), s.items...)}
	s.mu.RUnlock()

	if mode == ModeGuest {
		if err := s.saveGuest(ctx, snap); err != nil {
			s.log.Warn("guest cart persist failed", zap.String("cart_id", snap.CartID), zap.Error(err))
			return err
		}
		return nil
	}

	if syncer == nil {
		return nil
	}
	if err := remote(ctx, syncer); err != nil {
		s.log.Warn("cart sync failed", zap.String("cart_id", snap.CartID), zap.Error(err))
		return fmt.Errorf("cart: sync: %w", err)
	}
	return nil
}

func (s *Store) saveGuest(ctx context.Context, snap snapshot) error {
	if s.store == nil {
		return nil
	}
	if err := storage.SetJSON(ctx, s.store, storage.KeyGuestCartID, snap.CartID); err != nil {
		return err
	}
	return storage.SetJSON(ctx, s.store, storage.KeyCart, snap)
}

// ensureID assigns a client-generated id to a new guest cart. Callers hold mu.
func (s *Store) ensureID() {
	if s.id == "" && s.mode == ModeGuest {
		s.id = "guest-" + uuid.NewString()
	}
}

func (s *Store) indexOf(variantID string) int {
	for i := range s.items {
		if s.items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}

// clamp bounds qty to [1, stock]; stock <= 0 means unknown.
func clamp(qty, stock int) int {
	if stock > 0 && qty > stock {
		qty = stock
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}

// sanitize drops non-positive lines and folds duplicate variants.
func sanitize(items []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, 0, len(items))
	index := make(map[string]int, len(items))
	for _, it := range items {
		if it.Quantity <= 0 || it.VariantID == "" {
			continue
		}
		if i, ok := index[it.VariantID]; ok {
			out[i].Quantity = clamp(out[i].Quantity+it.Quantity, out[i].Stock)
			continue
		}
		index[it.VariantID] = len(out)
		out = append(out, it)
	}
	return out
}
