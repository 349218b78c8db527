package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/junaidrashid-git/storefront/models"
)

func (c *Client) GetCart(ctx context.Context) (models.Cart, error) {
	var out models.Cart
	err := c.call(ctx, true, http.MethodGet, "/cart", nil, nil, &out)
	return out, err
}

// AddToCart asks the server to add qty units of a variant.
func (c *Client) AddToCart(ctx context.Context, variantID string, qty int) (models.Cart, error) {
	var out models.Cart
	body := map[string]any{"variantId": variantID, "quantity": qty}
	err := c.call(ctx, true, http.MethodPost, "/cart/items", nil, body, &out)
	return out, err
}

// PutCartItem sets the server quantity of a line.
func (c *Client) PutCartItem(ctx context.Context, item models.CartItem) error {
	body := map[string]any{"productId": item.ProductID, "quantity": item.Quantity}
	return c.call(ctx, true, http.MethodPut, "/cart/items/"+url.PathEscape(item.VariantID), nil, body, nil)
}

func (c *Client) DeleteCartItem(ctx context.Context, variantID string) error {
	return c.call(ctx, true, http.MethodDelete, "/cart/items/"+url.PathEscape(variantID), nil, nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.call(ctx, true, http.MethodDelete, "/cart", nil, nil, nil)
}
