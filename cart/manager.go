package cart

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
	"go.uber.org/zap"
)

// Remote is the server cart of one signed-in user.
type Remote interface {
	Syncer
	GetCart(ctx context.Context) (models.Cart, error)
}

// DefaultGuestIdle is how long an unused guest cart stays cached.
const DefaultGuestIdle = 30 * time.Minute

// Manager owns one Store per guest and per user. Guest state is scoped into
// storage under "guest:<id>", user state under "user:<id>".
//
// Guest stores persist on every mutation, so a guest idle for longer than
// the idle window is dropped from memory and reloaded from storage on its
// next request.
type Manager struct {
	log       *zap.Logger
	store     storage.Store
	guestIdle time.Duration
	now       func() time.Time

	mu     sync.Mutex
	guests map[string]*guestEntry
	users  map[string]*Store
}

type guestEntry struct {
	store    *Store
	lastUsed time.Time
}

type ManagerOption func(*Manager)

// WithGuestIdle sets the idle window for cached guest carts.
func WithGuestIdle(d time.Duration) ManagerOption {
	return func(m *Manager) {
		if d > 0 {
			m.guestIdle = d
		}
	}
}

func NewManager(store storage.Store, log *zap.Logger, opts ...ManagerOption) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		log:       log,
		store:     store,
		guestIdle: DefaultGuestIdle,
		now:       time.Now,
		guests:    make(map[string]*guestEntry),
		users:     make(map[string]*Store),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Guest returns the cart of guestID, restoring it from storage on first use.
func (m *Manager) Guest(ctx context.Context, guestID string) (*Store, error) {
	m.mu.Lock()
	now := m.now()
	m.evictIdleGuests(now)
	if e, ok := m.guests[guestID]; ok {
		e.lastUsed = now
		m.mu.Unlock()
		return e.store, nil
	}
	m.mu.Unlock()

	loaded, err := LoadGuest(ctx, storage.Scoped(m.store, "guest:"+guestID), WithLogger(m.log.With(zap.String("guest_id", guestID))))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.guests[guestID]; ok {
		return e.store, nil
	}
	m.guests[guestID] = &guestEntry{store: loaded, lastUsed: m.now()}
	return loaded, nil
}

// evictIdleGuests runs with m.mu held.
func (m *Manager) evictIdleGuests(now time.Time) {
	for id, e := range m.guests {
		if now.Sub(e.lastUsed) > m.guestIdle {
			delete(m.guests, id)
		}
	}
}

// CachedGuests is the number of guest carts held in memory.
func (m *Manager) CachedGuests() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.guests)
}

// User returns the cart of userID. The first call loads the server cart;
// later calls only swap in remote so syncs use the caller's credentials.
func (m *Manager) User(ctx context.Context, userID string, remote Remote) (*Store, error) {
	m.mu.Lock()
	s, ok := m.users[userID]
	m.mu.Unlock()
	if ok {
		s.SetSyncer(remote)
		return s, nil
	}

	server, err := remote.GetCart(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart: load server cart: %w", err)
	}
	loaded := NewAuthenticated(server, remote, storage.Scoped(m.store, "user:"+userID),
		WithLogger(m.log.With(zap.String("user_id", userID))))

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.users[userID]; ok {
		s.SetSyncer(remote)
		return s, nil
	}
	m.users[userID] = loaded
	return loaded, nil
}

// MergeGuest merges the guest cart of guestID into the server cart of
// userID. The merged store becomes the user's cart.
func (m *Manager) MergeGuest(ctx context.Context, guestID, userID string, remote Remote) (MergeResult, error) {
	guest, err := m.Guest(ctx, guestID)
	if err != nil {
		return MergeResult{Status: MergeFailed}, err
	}
	if guest.Mode() != ModeGuest || guest.ID() == "" {
		m.mu.Lock()
		delete(m.guests, guestID)
		m.mu.Unlock()
		return MergeResult{Status: MergeNoGuestCart}, nil
	}

	server, err := remote.GetCart(ctx)
	if err != nil {
		return MergeResult{Status: MergeFailed}, fmt.Errorf("cart: load server cart: %w", err)
	}

	res, err := guest.MergeGuestCart(ctx, server, remote)

	m.mu.Lock()
	delete(m.guests, guestID)
	m.users[userID] = guest
	m.mu.Unlock()

	return res, err
}

// Forget drops the cached cart of userID, e.g. after the session expired.
func (m *Manager) Forget(userID string) {
	m.mu.Lock()
	delete(m.users, userID)
	m.mu.Unlock()
}
