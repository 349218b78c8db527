package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	SalePrice   decimal.Decimal `json:"salePrice,omitempty"`
	Images      []string        `json:"images"`
	CategoryID  string          `json:"categoryId"`
	Category    *Category       `json:"category,omitempty"`
	Variants    []Variant       `json:"variants"`
	IsActive    bool            `json:"isActive"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// Variant is a purchasable SKU of a product.
type Variant struct {
	ID    string          `json:"id"`
	SKU   string          `json:"sku"`
	Size  string          `json:"size"`
	Color string          `json:"color"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
}

// CartItem builds a cart line for qty units of variant v.
func (p Product) CartItem(v Variant, qty int) CartItem {
	image := ""
	if len(p.Images) > 0 {
		image = p.Images[0]
	}
	return CartItem{
		ProductID:   p.ID,
		VariantID:   v.ID,
		ProductName: p.Name,
		Size:        v.Size,
		Color:       v.Color,
		SKU:         v.SKU,
		UnitPrice:   v.Price,
		Quantity:    qty,
		ImageURL:    image,
		Stock:       v.Stock,
	}
}

type ProductInput struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	SalePrice   decimal.Decimal `json:"salePrice,omitempty"`
	Images      []string        `json:"images"`
	CategoryID  string          `json:"categoryId"`
	Variants    []Variant       `json:"variants"`
	IsActive    bool            `json:"isActive"`
}
