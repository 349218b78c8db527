// Package storage is the get/set/remove port behind every piece of
// persisted client state (guest cart, credentials, recent searches).
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Fixed keys. Values under these keys are written with SetJSON.
const (
	KeyGuestCartID    = "guest_cart_id"
	KeyCart           = "cart"
	KeyRecentSearches = "recent_searches"
	KeyAuthToken      = "auth_token"
	KeyUser           = "user"
)

// FormatVersion is the envelope version written by SetJSON.
const FormatVersion = 1

var ErrVersionMismatch = errors.New("storage: format version mismatch")

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type envelope struct {
	Version int             `json:"v"`
	Data    json.RawMessage `json:"data"`
}

// GetJSON decodes the value under key into out. It reports false when the
// key is absent. A value written by another format version is reported as
// ErrVersionMismatch; callers treat it as absent.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return false, fmt.Errorf("storage: decode %q: %w", key, err)
	}
	if env.Version != FormatVersion {
		return false, fmt.Errorf("%w: key %q has v%d", ErrVersionMismatch, key, env.Version)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return false, fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v inside a versioned envelope and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	raw, err := json.Marshal(envelope{Version: FormatVersion, Data: data})
	if err != nil {
		return fmt.Errorf("storage: encode %q: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}

type scoped struct {
	base   Store
	prefix string
}

// Scoped returns a view of base whose keys are prefixed with prefix + ":".
func Scoped(base Store, prefix string) Store {
	return &scoped{base: base, prefix: prefix + ":"}
}

func (s *scoped) Get(ctx context.Context, key string) (string, bool, error) {
	return s.base.Get(ctx, s.prefix+key)
}

func (s *scoped) Set(ctx context.Context, key, value string) error {
	return s.base.Set(ctx, s.prefix+key, value)
}

func (s *scoped) Remove(ctx context.Context, key string) error {
	return s.base.Remove(ctx, s.prefix+key)
}
