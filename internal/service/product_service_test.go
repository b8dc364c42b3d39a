package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/Lixing-Zhang/hobbyshop/internal/repository"
	"github.com/shopspring/decimal"
)

var errRemoteDown = errors.New("remote store unavailable")

// failingRepository fails every call the way an unreachable remote store would
type failingRepository struct{}

func (failingRepository) GetAll(context.Context) ([]models.Product, error) { return nil, errRemoteDown }
func (failingRepository) GetVisible(context.Context) ([]models.Product, error) {
	return nil, errRemoteDown
}
func (failingRepository) GetByID(context.Context, string) (*models.Product, error) {
	return nil, errRemoteDown
}
func (failingRepository) Create(context.Context, models.ProductDraft) (*models.Product, error) {
	return nil, errRemoteDown
}
func (failingRepository) Update(context.Context, string, models.ProductPatch) (*models.Product, error) {
	return nil, errRemoteDown
}
func (failingRepository) Delete(context.Context, string) error { return errRemoteDown }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProductService_HiddenProducts(t *testing.T) {
	repo := repository.NewInMemoryProductRepository()
	svc := NewProductService(repo, discardLogger())
	ctx := context.Background()

	hidden := true
	if _, err := svc.UpdateProduct(ctx, "1", models.ProductPatch{Hidden: &hidden}); err != nil {
		t.Fatalf("UpdateProduct() unexpected error = %v", err)
	}

	visible, err := svc.ListProducts(ctx)
	if err != nil {
		t.Fatalf("ListProducts() unexpected error = %v", err)
	}
	for _, p := range visible {
		if p.ID == "1" {
			t.Error("hidden product must not appear in ListProducts()")
		}
	}

	all, err := svc.ListAllProducts(ctx)
	if err != nil {
		t.Fatalf("ListAllProducts() unexpected error = %v", err)
	}
	found := false
	for _, p := range all {
		if p.ID == "1" {
			found = true
		}
	}
	if !found {
		t.Error("hidden product must appear in ListAllProducts()")
	}

	if _, err := svc.GetProduct(ctx, "1"); err != repository.ErrProductNotFound {
		t.Errorf("GetProduct() on hidden product error = %v, want %v", err, repository.ErrProductNotFound)
	}
}

func TestProductService_CreateProduct(t *testing.T) {
	svc := NewProductService(repository.NewInMemoryProductRepositoryWith(nil), discardLogger())

	tests := []struct {
		name      string
		draft     models.ProductDraft
		wantField string
	}{
		{
			name:  "valid draft",
			draft: models.ProductDraft{Name: "Dice Tower", Price: decimal.RequireFromString("15"), Category: "Dice & Accessories"},
		},
		{
			name:      "empty name",
			draft:     models.ProductDraft{Name: "  ", Price: decimal.RequireFromString("15"), Category: "Collectibles"},
			wantField: "name",
		},
		{
			name:      "negative price",
			draft:     models.ProductDraft{Name: "Dice", Price: decimal.RequireFromString("-1"), Category: "Collectibles"},
			wantField: "price",
		},
		{
			name:      "unknown category",
			draft:     models.ProductDraft{Name: "Dice", Price: decimal.RequireFromString("1"), Category: "Pokémon"},
			wantField: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := svc.CreateProduct(context.Background(), tt.draft)

			if tt.wantField != "" {
				ve, ok := apperr.AsValidationError(err)
				if !ok {
					t.Fatalf("CreateProduct() error = %v, want ValidationError", err)
				}
				if _, ok := ve.Fields[tt.wantField]; !ok {
					t.Errorf("expected field error for %s, got %v", tt.wantField, ve.Fields)
				}
				return
			}

			if err != nil {
				t.Fatalf("CreateProduct() unexpected error = %v", err)
			}
			if product.ID == "" || product.Hidden {
				t.Errorf("CreateProduct() = %+v, want assigned ID and visible", product)
			}
		})
	}
}

func TestProductService_RemoteFailures(t *testing.T) {
	svc := NewProductService(failingRepository{}, discardLogger())
	ctx := context.Background()
	hidden := true

	calls := map[string]func() error{
		"list visible": func() error { _, err := svc.ListProducts(ctx); return err },
		"list all":     func() error { _, err := svc.ListAllProducts(ctx); return err },
		"create": func() error {
			_, err := svc.CreateProduct(ctx, models.ProductDraft{Name: "x", Category: "Collectibles"})
			return err
		},
		"update": func() error { _, err := svc.UpdateProduct(ctx, "1", models.ProductPatch{Hidden: &hidden}); return err },
		"delete": func() error { return svc.DeleteProduct(ctx, "1") },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			if !apperr.IsFetchError(err) {
				t.Errorf("error = %v, want FetchError", err)
			}
			if !errors.Is(err, errRemoteDown) {
				t.Errorf("error = %v, want wrapped %v", err, errRemoteDown)
			}
		})
	}
}

func TestProductService_NotFoundIsNotFetchError(t *testing.T) {
	svc := NewProductService(repository.NewInMemoryProductRepository(), discardLogger())

	err := svc.DeleteProduct(context.Background(), "missing")
	if err != repository.ErrProductNotFound {
		t.Errorf("DeleteProduct() error = %v, want %v", err, repository.ErrProductNotFound)
	}
}

func TestProductService_FallbackProducts(t *testing.T) {
	svc := NewProductService(failingRepository{}, discardLogger())
	if _, ok := svc.FallbackProducts(); ok {
		t.Error("FallbackProducts() without configuration should report false")
	}

	seed := repository.SeedProducts()
	seed[0].Hidden = true
	svc.WithFallback(seed)

	products, ok := svc.FallbackProducts()
	if !ok {
		t.Fatal("FallbackProducts() should report true once configured")
	}
	if len(products) != 2 {
		t.Errorf("expected 2 visible fallback products, got %d", len(products))
	}
}

func TestProductService_GetProductFromFallback(t *testing.T) {
	ctx := context.Background()

	svc := NewProductService(failingRepository{}, discardLogger())
	if _, err := svc.GetProduct(ctx, "2"); !apperr.IsFetchError(err) {
		t.Errorf("GetProduct() without fallback error = %v, want FetchError", err)
	}

	seed := repository.SeedProducts()
	seed[0].Hidden = true
	svc.WithFallback(seed)

	product, err := svc.GetProduct(ctx, "2")
	if err != nil {
		t.Fatalf("GetProduct() error = %v", err)
	}
	if product.Name != "Settlers of Catan" {
		t.Errorf("GetProduct() = %s, want Settlers of Catan", product.Name)
	}

	for _, id := range []string{"1", "missing"} {
		if _, err := svc.GetProduct(ctx, id); !apperr.IsFetchError(err) {
			t.Errorf("GetProduct(%q) error = %v, want FetchError", id, err)
		}
	}
}
