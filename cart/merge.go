package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/storage"
	"go.uber.org/zap"
)

// Merge folds guest lines into the server lines. Server order is kept and
// guest-only variants are appended in guest order. Overlapping variants sum
// their quantities, capped at the known stock.
func Merge(guest, server []models.CartItem) []models.CartItem {
	out := sanitize(server)
	index := make(map[string]int, len(out))
	for i, it := range out {
		index[it.VariantID] = i
	}

	for _, g := range sanitize(guest) {
		i, ok := index[g.VariantID]
		if !ok {
			index[g.VariantID] = len(out)
			out = append(out, g)
			continue
		}
		cur := &out[i]
		if cur.Stock <= 0 {
			cur.Stock = g.Stock
		}
		cur.Quantity = clamp(cur.Quantity+g.Quantity, cur.Stock)
	}
	return out
}

// MergeStatus values mirror what the login endpoint reports.
const (
	MergeNoGuestCart = "no-guest-cart"
	MergeGuestEmpty  = "guest-cart-empty"
	MergeSuccess     = "merged-success"
	MergeFailed      = "merge-failed"
)

type MergeResult struct {
	Status  string
	Added   int // guest-only lines pushed to the server
	Updated int // overlapping lines whose quantity changed
}

// MergeGuestCart is called once at login on the guest store. It merges the
// guest lines into server, switches the store to authenticated mode and
// pushes every changed line through syncer. The guest snapshot is removed
// from storage whether or not the push succeeds; a failed push is returned
// and the merged in-memory state is kept.
func (s *Store) MergeGuestCart(ctx context.Context, server models.Cart, syncer Syncer) (MergeResult, error) {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.mu.Lock()
	if s.mode != ModeGuest {
		s.mu.Unlock()
		return MergeResult{Status: MergeNoGuestCart}, nil
	}
	guest := s.items
	merged := Merge(guest, server.Items)
	changed := changedLines(server.Items, merged)

	s.mode = ModeAuthenticated
	s.id = server.ID
	s.items = merged
	s.syncer = syncer
	s.mu.Unlock()

	res := MergeResult{Status: MergeSuccess}
	if len(guest) == 0 {
		res.Status = MergeGuestEmpty
	}

	if s.store != nil {
		for _, key := range []string{storage.KeyCart, storage.KeyGuestCartID} {
			if err := s.store.Remove(ctx, key); err != nil {
				s.log.Warn("guest cart cleanup failed", zap.String("key", key), zap.Error(err))
			}
		}
	}

	var errs []error
	for _, line := range changed {
		if line.added {
			res.Added++
		} else {
			res.Updated++
		}
		if syncer == nil {
			continue
		}
		if err := syncer.PutCartItem(ctx, line.item); err != nil {
			errs = append(errs, fmt.Errorf("variant %s: %w", line.item.VariantID, err))
		}
	}
	if len(errs) > 0 {
		res.Status = MergeFailed
		return res, fmt.Errorf("cart: merge sync: %w", errors.Join(errs...))
	}

	s.log.Info("guest cart merged",
		zap.String("cart_id", server.ID),
		zap.Int("added", res.Added),
		zap.Int("updated", res.Updated))
	return res, nil
}

type changedLine struct {
	item  models.CartItem
	added bool
}

func changedLines(server, merged []models.CartItem) []changedLine {
	before := make(map[string]int, len(server))
	for _, it := range server {
		before[it.VariantID] = it.Quantity
	}
	var out []changedLine
	for _, it := range merged {
		qty, ok := before[it.VariantID]
		switch {
		case !ok:
			out = append(out, changedLine{item: it, added: true})
		case qty != it.Quantity:
			out = append(out, changedLine{item: it})
		}
	}
	return out
}
