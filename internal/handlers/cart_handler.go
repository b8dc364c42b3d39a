package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/hobbyshop/internal/checkout"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/go-chi/chi/v5"
)

// CartStore is the persisted cart as used by the cart endpoints
type CartStore interface {
	AddToCart(ctx context.Context, cartID string, product models.Product, quantity int) ([]models.CartLineItem, error)
	UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) ([]models.CartLineItem, error)
	RemoveFromCart(ctx context.Context, cartID, productID string) ([]models.CartLineItem, error)
	ClearCart(ctx context.Context, cartID string) error
}

// CartController is the cart page: view, quantity steps and checkout
type CartController interface {
	View(ctx context.Context, cartID string) (checkout.View, error)
	Increment(ctx context.Context, cartID, productID string) (checkout.View, error)
	Decrement(ctx context.Context, cartID, productID string) (checkout.View, error)
	Checkout(ctx context.Context, cartID string) (checkout.Handoff, error)
}

// CartHandler handles the shopper's cart
type CartHandler struct {
	carts      CartStore
	controller CartController
	catalog    Catalog
	logger     *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(carts CartStore, controller CartController, catalog Catalog, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:      carts,
		controller: controller,
		catalog:    catalog,
		logger:     logger,
	}
}

// AddItemRequest is the body of POST /api/cart/items
type AddItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  *int   `json:"quantity,omitempty"`
}

// SetQuantityRequest is the body of PUT /api/cart/items/{productId}
type SetQuantityRequest struct {
	Quantity *int `json:"quantity"`
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	view, err := h.controller.View(r.Context(), cartID(r))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.logger)
}

// ClearCart handles DELETE /api/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.ClearCart(r.Context(), cartID(r)); err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, checkout.NewView(nil), h.logger)
}

// AddItem handles POST /api/cart/items
// The product is looked up in the catalogue and snapshotted into the cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if req.ProductID == "" {
		WriteError(w, http.StatusBadRequest, "productId is required", h.logger)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	product, err := h.catalog.GetProduct(r.Context(), req.ProductID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	id := ensureCartID(w, r)
	items, err := h.carts.AddToCart(r.Context(), id, *product, quantity)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	h.logger.Debug("added to cart", "productId", product.ID, "quantity", quantity)
	WriteJSON(w, http.StatusOK, checkout.NewView(items), h.logger)
}

// SetQuantity handles PUT /api/cart/items/{productId}
// A quantity of zero or less removes the line
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	var req SetQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), h.logger)
		return
	}
	if req.Quantity == nil {
		WriteError(w, http.StatusBadRequest, "quantity is required", h.logger)
		return
	}

	items, err := h.carts.UpdateQuantity(r.Context(), cartID(r), chi.URLParam(r, "productId"), *req.Quantity)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, checkout.NewView(items), h.logger)
}

// RemoveItem handles DELETE /api/cart/items/{productId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	items, err := h.carts.RemoveFromCart(r.Context(), cartID(r), chi.URLParam(r, "productId"))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, checkout.NewView(items), h.logger)
}

// Increment handles POST /api/cart/items/{productId}/increment
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.controller.Increment)
}

// Decrement handles POST /api/cart/items/{productId}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	h.step(w, r, h.controller.Decrement)
}

func (h *CartHandler) step(w http.ResponseWriter, r *http.Request, fn func(context.Context, string, string) (checkout.View, error)) {
	view, err := fn(r.Context(), cartID(r), chi.URLParam(r, "productId"))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, view, h.logger)
}

// Checkout handles POST /api/cart/checkout
// Returns the messaging URL; the cart is kept
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	handoff, err := h.controller.Checkout(r.Context(), cartID(r))
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("checkout handoff", "url_length", len(handoff.URL))
	WriteJSON(w, http.StatusOK, handoff, h.logger)
}
