// Package checkout composes the persisted cart into what the cart page
// shows and builds the messaging handoff that ends the purchase flow.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/Lixing-Zhang/hobbyshop/internal/cart"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
)

var ErrEmptyCart = errors.New("cart is empty")

const defaultHandoffBase = "https://wa.me/"

// CartStore is the part of the persisted cart the controller needs
type CartStore interface {
	GetCart(ctx context.Context, cartID string) ([]models.CartLineItem, error)
	UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) ([]models.CartLineItem, error)
}

// LineView is a cart line with its computed total
type LineView struct {
	models.CartLineItem
	LineTotal string `json:"line_total"`
}

// View is the cart page model
type View struct {
	Items []LineView `json:"items"`
	Count int        `json:"count"`
	Total string     `json:"total"`
}

// Handoff is where the shopper is sent to finish the order. Nothing is
// awaited or recorded after it is produced.
type Handoff struct {
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Controller drives the cart page
type Controller struct {
	carts       CartStore
	number      string
	handoffBase string
}

// NewController creates a controller that hands checkouts off to the
// given WhatsApp number
func NewController(carts CartStore, whatsAppNumber string) *Controller {
	return &Controller{
		carts:       carts,
		number:      whatsAppNumber,
		handoffBase: defaultHandoffBase,
	}
}

// View returns the current cart with line totals and the cart total
func (c *Controller) View(ctx context.Context, cartID string) (View, error) {
	items, err := c.carts.GetCart(ctx, cartID)
	if err != nil {
		return View{}, err
	}
	return NewView(items), nil
}

// Increment raises the quantity of a line by one
func (c *Controller) Increment(ctx context.Context, cartID, productID string) (View, error) {
	return c.step(ctx, cartID, productID, 1)
}

// Decrement lowers the quantity of a line by one; at zero the line goes away
func (c *Controller) Decrement(ctx context.Context, cartID, productID string) (View, error) {
	return c.step(ctx, cartID, productID, -1)
}

func (c *Controller) step(ctx context.Context, cartID, productID string, delta int) (View, error) {
	items, err := c.carts.GetCart(ctx, cartID)
	if err != nil {
		return View{}, err
	}

	for _, item := range items {
		if item.ProductID == productID {
			items, err = c.carts.UpdateQuantity(ctx, cartID, productID, item.LineQuantity+delta)
			if err != nil {
				return View{}, err
			}
			break
		}
	}
	return NewView(items), nil
}

// Checkout builds the handoff URL carrying the encoded order summary. The
// URL and the plain message come from the same read. The cart is left as
// it is.
func (c *Controller) Checkout(ctx context.Context, cartID string) (Handoff, error) {
	items, err := c.carts.GetCart(ctx, cartID)
	if err != nil {
		return Handoff{}, err
	}
	if len(items) == 0 {
		return Handoff{}, ErrEmptyCart
	}

	message := cart.CheckoutMessage(items)
	return Handoff{
		URL:     fmt.Sprintf("%s%s?text=%s", c.handoffBase, c.number, cart.EncodeURIComponent(message)),
		Message: message,
	}, nil
}

// NewView computes line totals and the cart total
func NewView(items []models.CartLineItem) View {
	lines := make([]LineView, 0, len(items))
	count := 0
	for _, item := range items {
		lines = append(lines, LineView{
			CartLineItem: item,
			LineTotal:    item.LineTotal().StringFixed(2),
		})
		count += item.LineQuantity
	}
	return View{
		Items: lines,
		Count: count,
		Total: cart.Total(items).StringFixed(2),
	}
}
