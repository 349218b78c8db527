package api

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/junaidrashid-git/storefront/models"
)

const minPasswordLength = 8

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"-"`
}

func (p PasswordChange) Validate() error {
	fields := map[string]string{}
	if p.CurrentPassword == "" {
		fields["currentPassword"] = "is required"
	}
	if utf8.RuneCountInString(p.NewPassword) < minPasswordLength {
		fields["newPassword"] = "must be at least 8 characters"
	}
	if p.NewPassword != p.ConfirmPassword {
		fields["confirmPassword"] = "does not match"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (c *Client) GetCurrentUser(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.call(ctx, true, http.MethodGet, "/identities/me", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateProfile(ctx context.Context, in models.ProfileUpdate) (models.User, error) {
	var out models.User
	err := c.call(ctx, true, http.MethodPatch, "/identities/me", nil, in, &out)
	return out, err
}

func (c *Client) ChangePassword(ctx context.Context, in PasswordChange) error {
	if err := in.Validate(); err != nil {
		return err
	}
	return c.call(ctx, true, http.MethodPost, "/identities/password", nil, in, nil)
}

func (c *Client) ListUsers(ctx context.Context, page, limit int) (models.Page[models.User], error) {
	var out models.Page[models.User]
	q := OrderQuery{Page: page, Limit: limit}.Values()
	err := c.call(ctx, true, http.MethodGet, "/identities/users", q, nil, &out)
	return out, err
}
