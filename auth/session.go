package auth

import (
	"context"
	"sync"

	"github.com/junaidrashid-git/storefront/api"
	"github.com/junaidrashid-git/storefront/cart"
	"github.com/junaidrashid-git/storefront/search"
	"github.com/junaidrashid-git/storefront/storage"
	"go.uber.org/zap"
)

// Sessions ties a signed-in user id to the state the BFF keeps for them:
// the backend token, the cached profile, the cart and the search history.
type Sessions struct {
	API   *api.Client
	Store storage.Store
	Carts *cart.Manager
	Log   *zap.Logger

	mu       sync.Mutex
	searches map[string]*search.History
}

func (s *Sessions) userStore(userID string) storage.Store {
	return storage.Scoped(s.Store, "user:"+userID)
}

func (s *Sessions) Credentials(userID string) api.StoredCredentials {
	return api.StoredCredentials{Store: s.userStore(userID)}
}

// Client calls the backend as userID. A 401 evicts the stored token.
func (s *Sessions) Client(userID string) *api.Client {
	return s.API.As(s.Credentials(userID))
}

// Active reports whether a backend token is stored for userID.
func (s *Sessions) Active(ctx context.Context, userID string) (bool, error) {
	token, err := s.Credentials(userID).Token(ctx)
	return token != "", err
}

// Searches returns the one search history of userID, so concurrent
// requests of the same user serialize on it.
func (s *Sessions) Searches(userID string) *search.History {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.searches == nil {
		s.searches = make(map[string]*search.History)
	}
	h, ok := s.searches[userID]
	if !ok {
		h = search.NewHistory(s.userStore(userID), search.DefaultLimit)
		s.searches[userID] = h
	}
	return h
}

// Cart returns the cart of userID, syncing through the user's client.
func (s *Sessions) Cart(ctx context.Context, userID string) (*cart.Store, error) {
	return s.Carts.User(ctx, userID, s.Client(userID))
}

// End drops the stored token, the cached profile, the cached cart and the
// in-memory search history handle. Stored searches are kept.
func (s *Sessions) End(ctx context.Context, userID string) error {
	s.Carts.Forget(userID)
	s.mu.Lock()
	delete(s.searches, userID)
	s.mu.Unlock()
	return s.Credentials(userID).Clear(ctx)
}
