// Package cart implements the persisted shopping cart: an ordered list of
// line items, at most one per product id, kept as a single JSON blob in a
// named storage slot. Every operation re-reads the whole blob and writes
// it back whole; concurrent writers to the same slot are not coordinated
// and the last write wins.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/Lixing-Zhang/hobbyshop/internal/storage"
	"github.com/shopspring/decimal"
)

// MaxLineQuantity caps a single line
const MaxLineQuantity = 9999

var (
	ErrInvalidQuantity = errors.New("quantity must be between 1 and 9999")
	ErrMissingCartID   = errors.New("cart id is required")
)

// Store reads and writes carts in slots named "<slot>:<cartID>"
type Store struct {
	storage storage.Storage
	slot    string
	logger  *slog.Logger
}

// NewStore creates a cart store over the given slot storage
func NewStore(s storage.Storage, slot string, logger *slog.Logger) *Store {
	return &Store{
		storage: s,
		slot:    slot,
		logger:  logger,
	}
}

func (s *Store) key(cartID string) string {
	return s.slot + ":" + cartID
}

// GetCart returns the persisted cart. A missing or unreadable blob is an
// empty cart; only storage failures are returned as errors.
func (s *Store) GetCart(ctx context.Context, cartID string) ([]models.CartLineItem, error) {
	if cartID == "" {
		return []models.CartLineItem{}, nil
	}

	raw, ok, err := s.storage.Get(ctx, s.key(cartID))
	if err != nil {
		return nil, fmt.Errorf("failed to read cart: %w", err)
	}
	if !ok {
		return []models.CartLineItem{}, nil
	}

	var items []models.CartLineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("discarding unreadable cart", "cartId", cartID, "error", err)
		return []models.CartLineItem{}, nil
	}

	// Drop anything that breaks the cart invariants instead of failing
	cleaned := make([]models.CartLineItem, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.ProductID == "" || item.LineQuantity <= 0 || seen[item.ProductID] {
			continue
		}
		seen[item.ProductID] = true
		cleaned = append(cleaned, item)
	}
	return cleaned, nil
}

// AddToCart adds quantity units of product. An existing line for the same
// product id is incremented; otherwise a snapshot of product is appended.
func (s *Store) AddToCart(ctx context.Context, cartID string, product models.Product, quantity int) ([]models.CartLineItem, error) {
	if cartID == "" {
		return nil, ErrMissingCartID
	}
	if quantity <= 0 || quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	items, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range items {
		if items[i].ProductID == product.ID {
			// both operands are capped, so the sum cannot wrap
			if items[i].LineQuantity+quantity > MaxLineQuantity {
				return nil, ErrInvalidQuantity
			}
			items[i].LineQuantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, models.NewCartLineItem(product, quantity))
	}

	if err := s.save(ctx, cartID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateQuantity sets the quantity of a line to exactly quantity. Zero or
// less removes the line. Unknown product ids leave the cart unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) ([]models.CartLineItem, error) {
	if quantity <= 0 {
		return s.RemoveFromCart(ctx, cartID, productID)
	}
	if quantity > MaxLineQuantity {
		return nil, ErrInvalidQuantity
	}

	items, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	for i := range items {
		if items[i].ProductID == productID {
			items[i].LineQuantity = quantity
			if err := s.save(ctx, cartID, items); err != nil {
				return nil, err
			}
			break
		}
	}
	return items, nil
}

// RemoveFromCart drops the line for productID and persists the rest
func (s *Store) RemoveFromCart(ctx context.Context, cartID, productID string) ([]models.CartLineItem, error) {
	if cartID == "" {
		return []models.CartLineItem{}, nil
	}

	items, err := s.GetCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	kept := make([]models.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}

	if err := s.save(ctx, cartID, kept); err != nil {
		return nil, err
	}
	return kept, nil
}

// ClearCart erases the slot
func (s *Store) ClearCart(ctx context.Context, cartID string) error {
	if cartID == "" {
		return nil
	}
	if err := s.storage.Delete(ctx, s.key(cartID)); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// GetCartTotal returns the sum of price * quantity over the cart
func (s *Store) GetCartTotal(ctx context.Context, cartID string) (decimal.Decimal, error) {
	items, err := s.GetCart(ctx, cartID)
	if err != nil {
		return decimal.Zero, err
	}
	return Total(items), nil
}

// GenerateCheckoutMessage returns the order summary, percent-encoded for a
// URL query string
func (s *Store) GenerateCheckoutMessage(ctx context.Context, cartID string) (string, error) {
	items, err := s.GetCart(ctx, cartID)
	if err != nil {
		return "", err
	}
	return EncodeURIComponent(CheckoutMessage(items)), nil
}

func (s *Store) save(ctx context.Context, cartID string, items []models.CartLineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, s.key(cartID), string(data)); err != nil {
		return fmt.Errorf("failed to write cart: %w", err)
	}
	return nil
}
