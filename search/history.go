// Package search keeps the short list of recent product searches.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/junaidrashid-git/storefront/storage"
)

const DefaultLimit = 5

type History struct {
	store storage.Store
	limit int
	mu    sync.Mutex
}

// NewHistory keeps at most limit searches in store. limit <= 0 means
// DefaultLimit.
func NewHistory(store storage.Store, limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{store: store, limit: limit}
}

// Add records q as the most recent search. Blank queries are ignored and an
// earlier case-insensitive duplicate is dropped.
func (h *History) Add(ctx context.Context, q string) error {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	prev, err := h.load(ctx)
	if err != nil {
		return err
	}
	next := make([]string, 0, h.limit)
	next = append(next, q)
	for _, p := range prev {
		if len(next) == h.limit {
			break
		}
		if !strings.EqualFold(p, q) {
			next = append(next, p)
		}
	}
	return storage.SetJSON(ctx, h.store, storage.KeyRecentSearches, next)
}

// List returns the searches, newest first.
func (h *History) List(ctx context.Context) ([]string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.load(ctx)
}

func (h *History) Clear(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Remove(ctx, storage.KeyRecentSearches)
}

func (h *History) load(ctx context.Context) ([]string, error) {
	var out []string
	_, err := storage.GetJSON(ctx, h.store, storage.KeyRecentSearches, &out)
	if errors.Is(err, storage.ErrVersionMismatch) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(out) > h.limit {
		out = out[:h.limit]
	}
	return out, nil
}
