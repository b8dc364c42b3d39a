package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalog entry
// Schema matches the products table: uuid, name, description, price,
// image_url, category, is_hidden, stock_quantity, created_at
type Product struct {
	ID            string          `json:"uuid"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	Category      string          `json:"category"`
	Hidden        bool            `json:"is_hidden"`
	StockQuantity int             `json:"stock_quantity"`
	CreatedAt     *time.Time      `json:"created_at,omitempty"`
}

// ProductDraft is a product that has not been persisted yet.
// Hidden always starts false on insert.
type ProductDraft struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	ImageURL      string          `json:"image_url"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
}

// ProductPatch is a partial update; nil fields are left untouched
type ProductPatch struct {
	Name          *string          `json:"name,omitempty"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	ImageURL      *string          `json:"image_url,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Hidden        *bool            `json:"is_hidden,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty"`
}

// Apply copies the non-nil fields of the patch onto p
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ImageURL != nil {
		p.ImageURL = *patch.ImageURL
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Hidden != nil {
		p.Hidden = *patch.Hidden
	}
	if patch.StockQuantity != nil {
		p.StockQuantity = *patch.StockQuantity
	}
}

// IsEmpty reports whether the patch changes nothing
func (patch ProductPatch) IsEmpty() bool {
	return patch.Name == nil && patch.Description == nil && patch.Price == nil &&
		patch.ImageURL == nil && patch.Category == nil && patch.Hidden == nil &&
		patch.StockQuantity == nil
}
