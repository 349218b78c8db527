package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/junaidrashid-git/storefront/models"
)

func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	var out []models.Category
	err := c.call(ctx, false, http.MethodGet, "/categories", nil, nil, &out)
	return out, err
}

func (c *Client) GetCategory(ctx context.Context, id string) (models.Category, error) {
	var out models.Category
	err := c.call(ctx, false, http.MethodGet, "/categories/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

func (c *Client) CreateCategory(ctx context.Context, in models.CategoryInput) (models.Category, error) {
	var out models.Category
	err := c.call(ctx, true, http.MethodPost, "/categories", nil, in, &out)
	return out, err
}

func (c *Client) UpdateCategory(ctx context.Context, id string, in models.CategoryInput) (models.Category, error) {
	var out models.Category
	err := c.call(ctx, true, http.MethodPut, "/categories/"+url.PathEscape(id), nil, in, &out)
	return out, err
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.call(ctx, true, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil, nil)
}
