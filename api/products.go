package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/junaidrashid-git/storefront/models"
	"github.com/shopspring/decimal"
)

// ProductQuery is translated into the /products query string. Zero fields
// are omitted.
type ProductQuery struct {
	Page       int
	Limit      int
	Search     string
	CategoryID string
	Size       string
	Color      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string
	Order      string
}

func (q ProductQuery) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	setString(v, "search", q.Search)
	setString(v, "categoryId", q.CategoryID)
	setString(v, "size", q.Size)
	setString(v, "color", q.Color)
	if q.MinPrice != nil {
		v.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", q.MaxPrice.String())
	}
	setString(v, "sortBy", q.SortBy)
	setString(v, "order", q.Order)
	return v
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (models.Page[models.Product], error) {
	var page models.Page[models.Product]
	err := c.call(ctx, false, http.MethodGet, "/products", q.Values(), nil, &page)
	return page, err
}

func (c *Client) GetProduct(ctx context.Context, id string) (models.Product, error) {
	var p models.Product
	err := c.call(ctx, false, http.MethodGet, "/products/"+url.PathEscape(id), nil, nil, &p)
	return p, err
}

// SearchProducts is ListProducts narrowed to a search term.
func (c *Client) SearchProducts(ctx context.Context, term string, limit int) (models.Page[models.Product], error) {
	return c.ListProducts(ctx, ProductQuery{Search: term, Limit: limit})
}

func (c *Client) CreateProduct(ctx context.Context, in models.ProductInput) (models.Product, error) {
	var p models.Product
	err := c.call(ctx, true, http.MethodPost, "/products", nil, in, &p)
	return p, err
}

func (c *Client) UpdateProduct(ctx context.Context, id string, in models.ProductInput) (models.Product, error) {
	var p models.Product
	err := c.call(ctx, true, http.MethodPut, "/products/"+url.PathEscape(id), nil, in, &p)
	return p, err
}

func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.call(ctx, true, http.MethodDelete, "/products/"+url.PathEscape(id), nil, nil, nil)
}

func setString(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

func setInt(v url.Values, key string, val int) {
	if val > 0 {
		v.Set(key, strconv.Itoa(val))
	}
}
