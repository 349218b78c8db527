package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/junaidrashid-git/storefront/models"
)

// AddressInput is validated before it is sent.
type AddressInput models.Address

func (a AddressInput) Validate() error {
	fields := map[string]string{}
	required := map[string]string{
		"fullName":   a.FullName,
		"phone":      a.Phone,
		"street":     a.Street,
		"city":       a.City,
		"postalCode": a.PostalCode,
		"country":    a.Country,
	}
	for name, val := range required {
		if strings.TrimSpace(val) == "" {
			fields[name] = "is required"
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func (c *Client) ListAddresses(ctx context.Context) ([]models.Address, error) {
	var out []models.Address
	err := c.call(ctx, true, http.MethodGet, "/address", nil, nil, &out)
	return out, err
}

func (c *Client) CreateAddress(ctx context.Context, in AddressInput) (models.Address, error) {
	if err := in.Validate(); err != nil {
		return models.Address{}, err
	}
	var out models.Address
	err := c.call(ctx, true, http.MethodPost, "/address", nil, in, &out)
	return out, err
}

func (c *Client) UpdateAddress(ctx context.Context, id string, in AddressInput) (models.Address, error) {
	if err := in.Validate(); err != nil {
		return models.Address{}, err
	}
	var out models.Address
	err := c.call(ctx, true, http.MethodPut, "/address/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteAddress(ctx context.Context, id string) error {
	return c.call(ctx, true, http.MethodDelete, "/address/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SetDefaultAddress(ctx context.Context, id string) (models.Address, error) {
	var out models.Address
	err := c.call(ctx, true, http.MethodPatch, "/address/"+url.PathEscape(id)+"/default", nil, nil, &out)
	return out, err
}
