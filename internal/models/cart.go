package models

import "github.com/shopspring/decimal"

// CartLineItem is a product snapshot taken when it was added to the cart,
// plus the quantity the shopper asked for. LineQuantity is unrelated to the
// catalog's StockQuantity; the two only meet in NewCartLineItem.
type CartLineItem struct {
	ProductID    string          `json:"uuid"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	ImageURL     string          `json:"image_url"`
	Category     string          `json:"category"`
	LineQuantity int             `json:"line_quantity"`
}

// NewCartLineItem copies p by value so later catalog edits do not reach the cart
func NewCartLineItem(p Product, quantity int) CartLineItem {
	return CartLineItem{
		ProductID:    p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		ImageURL:     p.ImageURL,
		Category:     p.Category,
		LineQuantity: quantity,
	}
}

// LineTotal returns price * quantity
func (i CartLineItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.LineQuantity)))
}
