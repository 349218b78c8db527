package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem is one line of a cart. VariantID is the line key.
type CartItem struct {
	ProductID   string          `json:"productId"`
	VariantID   string          `json:"variantId"`
	ProductName string          `json:"productName"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	SKU         string          `json:"sku,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Quantity    int             `json:"quantity"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Stock       int             `json:"stock,omitempty"` // 0 means unknown
	AddedAt     time.Time       `json:"addedAt"`
}

// LineTotal is UnitPrice * Quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the server representation of a cart, as returned by GET /cart.
type Cart struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId,omitempty"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// Subtotal sums the line totals. It is never stored.
func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// TotalItems sums the quantities.
func (c Cart) TotalItems() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// CartItemInput is the body accepted by the add-to-cart endpoints. Price,
// name and stock are resolved from the catalog, never taken from the client.
type CartItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	VariantID string `json:"variant_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// QuantityInput is the body of the update-quantity endpoints. Zero or less
// removes the line.
type QuantityInput struct {
	Quantity *int `json:"quantity" binding:"required"`
}
