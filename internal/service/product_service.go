package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/Lixing-Zhang/hobbyshop/internal/repository"
)

// ProductService is the catalog provider: visible listings for shoppers
// and full CRUD for the admin views. Every call is a round-trip to the
// repository; failures other than not-found come back as FetchError.
type ProductService struct {
	repo     repository.ProductRepository
	fallback []models.Product
	logger   *slog.Logger
}

// NewProductService creates a new product service
func NewProductService(repo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// WithFallback sets the static product set served by FallbackProducts
func (s *ProductService) WithFallback(products []models.Product) *ProductService {
	s.fallback = append([]models.Product(nil), products...)
	return s
}

// ListProducts returns the products that are not hidden
func (s *ProductService) ListProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetVisible(ctx)
	if err != nil {
		return nil, apperr.NewFetchError("catalog.ListVisible", err)
	}
	return products, nil
}

// ListAllProducts returns every product, hidden ones included
func (s *ProductService) ListAllProducts(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, apperr.NewFetchError("catalog.ListAll", err)
	}
	return products, nil
}

// FallbackProducts returns the visible part of the static product set,
// and false when no fallback is configured
func (s *ProductService) FallbackProducts() ([]models.Product, bool) {
	if s.fallback == nil {
		return nil, false
	}
	products := make([]models.Product, 0, len(s.fallback))
	for _, p := range s.fallback {
		if !p.Hidden {
			products = append(products, p)
		}
	}
	return products, true
}

// GetProduct returns a visible product by ID. Hidden products are reported
// as not found. While the repository is unreachable, ids from the fallback
// set still resolve so that the listed products can be added to a cart.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		err = s.wrap("catalog.Get", err)
		if apperr.IsFetchError(err) {
			if p, ok := s.fallbackProduct(id); ok {
				s.logger.Warn("serving fallback product", "productId", id, "error", err)
				return p, nil
			}
		}
		return nil, err
	}
	if product.Hidden {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

// CreateProduct inserts a new product. Hidden is always false on insert.
func (s *ProductService) CreateProduct(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	product, err := s.repo.Create(ctx, draft)
	if err != nil {
		return nil, apperr.NewFetchError("catalog.Create", err)
	}

	s.logger.Info("product created", "productId", product.ID, "category", product.Category)
	return product, nil
}

// UpdateProduct applies a partial patch and returns the stored record
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	product, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, s.wrap("catalog.Update", err)
	}

	s.logger.Info("product updated", "productId", id, "hidden", product.Hidden)
	return product, nil
}

// DeleteProduct removes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.wrap("catalog.Delete", err)
	}

	s.logger.Info("product deleted", "productId", id)
	return nil
}

func (s *ProductService) fallbackProduct(id string) (*models.Product, bool) {
	products, ok := s.FallbackProducts()
	if !ok {
		return nil, false
	}
	for _, p := range products {
		if p.ID == id {
			return &p, true
		}
	}
	return nil, false
}

func (s *ProductService) wrap(op string, err error) error {
	if errors.Is(err, repository.ErrProductNotFound) {
		return err
	}
	return apperr.NewFetchError(op, err)
}

func validateDraft(draft models.ProductDraft) error {
	fields := make(map[string]string)
	if strings.TrimSpace(draft.Name) == "" {
		fields["name"] = "Name is required"
	}
	if draft.Price.IsNegative() {
		fields["price"] = "Price must not be negative"
	}
	if !models.IsCategory(draft.Category) {
		fields["category"] = "Category must be one of the catalog categories"
	}
	if draft.StockQuantity < 0 {
		fields["stock_quantity"] = "Stock must not be negative"
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}

func validatePatch(patch models.ProductPatch) error {
	fields := make(map[string]string)
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		fields["name"] = "Name is required"
	}
	if patch.Price != nil && patch.Price.IsNegative() {
		fields["price"] = "Price must not be negative"
	}
	if patch.Category != nil && !models.IsCategory(*patch.Category) {
		fields["category"] = "Category must be one of the catalog categories"
	}
	if patch.StockQuantity != nil && *patch.StockQuantity < 0 {
		fields["stock_quantity"] = "Stock must not be negative"
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}
