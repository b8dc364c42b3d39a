package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for the products table.
// Listings are returned in insertion order.
type ProductRepository interface {
	GetAll(ctx context.Context) ([]models.Product, error)
	GetVisible(ctx context.Context) ([]models.Product, error)
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Create(ctx context.Context, draft models.ProductDraft) (*models.Product, error)
	Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error)
	Delete(ctx context.Context, id string) error
}

// InMemoryProductRepository implements ProductRepository with in-memory storage
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products []models.Product
	now      func() time.Time
}

// NewInMemoryProductRepository creates a new in-memory product repository with seed data
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return NewInMemoryProductRepositoryWith(SeedProducts())
}

// NewInMemoryProductRepositoryWith creates a repository holding a copy of products
func NewInMemoryProductRepositoryWith(products []models.Product) *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: append([]models.Product(nil), products...),
		now:      time.Now,
	}
}

// SeedProducts returns the built-in product set. It seeds the in-memory
// repository and doubles as the static fallback catalogue.
func SeedProducts() []models.Product {
	ts := func(s string) *time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return &t
	}

	return []models.Product{
		{
			ID:            "1",
			Name:          "Charizard Card",
			Description:   "Rare holographic Charizard trading card",
			Price:         decimal.RequireFromString("299.99"),
			ImageURL:      "https://images.unsplash.com/photo-1606107557195-0e29a4b5b4aa?w=400",
			Category:      "Trading Cards",
			StockQuantity: 3,
			CreatedAt:     ts("2023-10-01T12:00:00Z"),
		},
		{
			ID:            "2",
			Name:          "Settlers of Catan",
			Description:   "Classic strategy board game for 3-4 players",
			Price:         decimal.RequireFromString("49.99"),
			ImageURL:      "https://images.unsplash.com/photo-1606092195730-5d7b9af1efc5?w=400",
			Category:      "Board Games",
			StockQuantity: 10,
			CreatedAt:     ts("2023-10-05T15:30:00Z"),
		},
		{
			ID:            "3",
			Name:          "Space Marine Miniature",
			Description:   "Detailed painted miniature figure",
			Price:         decimal.RequireFromString("24.99"),
			ImageURL:      "https://images.unsplash.com/photo-1578662996442-48f60103fc96?w=400",
			Category:      "Miniatures",
			StockQuantity: 15,
			CreatedAt:     ts("2023-10-10T09:45:00Z"),
		},
	}
}

// GetAll returns all products, hidden ones included
func (r *InMemoryProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]models.Product{}, r.products...), nil
}

// GetVisible returns the products that are not hidden
func (r *InMemoryProductRepository) GetVisible(ctx context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, product := range r.products {
		if !product.Hidden {
			products = append(products, product)
		}
	}
	return products, nil
}

// GetByID returns a product by its ID
func (r *InMemoryProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	product := r.products[i]
	return &product, nil
}

// Create inserts a new visible product with a generated ID
func (r *InMemoryProductRepository) Create(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	created := r.now().UTC()
	product := models.Product{
		ID:            uuid.New().String(),
		Name:          draft.Name,
		Description:   draft.Description,
		Price:         draft.Price,
		ImageURL:      draft.ImageURL,
		Category:      draft.Category,
		StockQuantity: draft.StockQuantity,
		CreatedAt:     &created,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products = append(r.products, product)
	return &product, nil
}

// Update applies a partial patch and returns the updated record
func (r *InMemoryProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, ErrProductNotFound
	}
	patch.Apply(&r.products[i])
	product := r.products[i]
	return &product, nil
}

// Delete removes a product
func (r *InMemoryProductRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrProductNotFound
	}
	r.products = append(r.products[:i], r.products[i+1:]...)
	return nil
}

// indexOf must be called with r.mu held
func (r *InMemoryProductRepository) indexOf(id string) int {
	for i := range r.products {
		if r.products[i].ID == id {
			return i
		}
	}
	return -1
}
