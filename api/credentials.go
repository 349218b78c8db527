package api

import (
	"context"
	"errors"

	"github.com/junaidrashid-git/storefront/storage"
)

// Credentials is where the bearer token lives.
type Credentials interface {
	Token(ctx context.Context) (string, error)
	Clear(ctx context.Context) error
}

// StoredCredentials keeps the token and the cached user in a storage port.
type StoredCredentials struct {
	Store storage.Store
}

func (c StoredCredentials) Token(ctx context.Context) (string, error) {
	var token string
	_, err := storage.GetJSON(ctx, c.Store, storage.KeyAuthToken, &token)
	if errors.Is(err, storage.ErrVersionMismatch) {
		return "", nil
	}
	return token, err
}

// SetToken saves a token obtained at login.
func (c StoredCredentials) SetToken(ctx context.Context, token string) error {
	return storage.SetJSON(ctx, c.Store, storage.KeyAuthToken, token)
}

func (c StoredCredentials) Clear(ctx context.Context) error {
	return errors.Join(
		c.Store.Remove(ctx, storage.KeyAuthToken),
		c.Store.Remove(ctx, storage.KeyUser),
	)
}

// StaticToken is a per-request credential; clearing it is a no-op.
type StaticToken string

func (t StaticToken) Token(context.Context) (string, error) { return string(t), nil }
func (StaticToken) Clear(context.Context) error             { return nil }
