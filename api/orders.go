package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/junaidrashid-git/storefront/models"
)

type OrderQuery struct {
	Page   int
	Limit  int
	Status models.OrderStatus
}

func (q OrderQuery) Values() url.Values {
	v := url.Values{}
	setInt(v, "page", q.Page)
	setInt(v, "limit", q.Limit)
	setString(v, "status", string(q.Status))
	return v
}

func (c *Client) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	if len(req.Items) == 0 {
		return models.Order{}, &ValidationError{Fields: map[string]string{"items": "cart is empty"}}
	}
	if req.AddressID == "" {
		return models.Order{}, &ValidationError{Fields: map[string]string{"addressId": "shipping address is required"}}
	}
	var out models.Order
	err := c.call(ctx, true, http.MethodPost, "/orders", nil, req, &out)
	return out, err
}

func (c *Client) ListOrders(ctx context.Context, q OrderQuery) (models.Page[models.Order], error) {
	var out models.Page[models.Order]
	err := c.call(ctx, true, http.MethodGet, "/orders", q.Values(), nil, &out)
	return out, err
}

func (c *Client) GetOrder(ctx context.Context, id string) (models.Order, error) {
	var out models.Order
	err := c.call(ctx, true, http.MethodGet, "/orders/"+url.PathEscape(id), nil, nil, &out)
	return out, err
}

// GetOrderByNumber looks an order up by its display number, e.g.
// "ORD-2024-001". A missing order is a *RequestError with status 404.
func (c *Client) GetOrderByNumber(ctx context.Context, number string) (models.Order, error) {
	var out models.Order
	err := c.call(ctx, true, http.MethodGet, "/orders/number/"+url.PathEscape(number), nil, nil, &out)
	return out, err
}

func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, &ValidationError{Fields: map[string]string{"status": fmt.Sprintf("unknown status %q", status)}}
	}
	var out models.Order
	body := map[string]models.OrderStatus{"status": status}
	err := c.call(ctx, true, http.MethodPatch, "/orders/"+url.PathEscape(id)+"/status", nil, body, &out)
	return out, err
}

func (c *Client) CancelOrder(ctx context.Context, id string) (models.Order, error) {
	var out models.Order
	err := c.call(ctx, true, http.MethodPost, "/orders/"+url.PathEscape(id)+"/cancel", nil, nil, &out)
	return out, err
}
