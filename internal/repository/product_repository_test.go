package repository

import (
	"context"
	"testing"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/shopspring/decimal"
)

func TestInMemoryProductRepository_Seed(t *testing.T) {
	repo := NewInMemoryProductRepository()

	products, err := repo.GetAll(context.Background())
	if err != nil {
		t.Fatalf("GetAll() unexpected error = %v", err)
	}

	if len(products) != 3 {
		t.Fatalf("expected 3 seed products, got %d", len(products))
	}

	wantOrder := []string{"Charizard Card", "Settlers of Catan", "Space Marine Miniature"}
	for i, name := range wantOrder {
		if products[i].Name != name {
			t.Errorf("products[%d].Name = %s, want %s", i, products[i].Name, name)
		}
	}
}

func TestInMemoryProductRepository_GetVisible(t *testing.T) {
	repo := NewInMemoryProductRepository()
	ctx := context.Background()

	hidden := true
	if _, err := repo.Update(ctx, "2", models.ProductPatch{Hidden: &hidden}); err != nil {
		t.Fatalf("Update() unexpected error = %v", err)
	}

	visible, err := repo.GetVisible(ctx)
	if err != nil {
		t.Fatalf("GetVisible() unexpected error = %v", err)
	}
	for _, p := range visible {
		if p.ID == "2" {
			t.Error("hidden product returned by GetVisible()")
		}
	}
	if len(visible) != 2 {
		t.Errorf("expected 2 visible products, got %d", len(visible))
	}

	all, _ := repo.GetAll(ctx)
	if len(all) != 3 {
		t.Errorf("expected hidden product to remain in GetAll(), got %d products", len(all))
	}
}

func TestInMemoryProductRepository_CreateUpdateDelete(t *testing.T) {
	repo := NewInMemoryProductRepositoryWith(nil)
	ctx := context.Background()

	created, err := repo.Create(ctx, models.ProductDraft{
		Name:     "D20 Set",
		Price:    decimal.RequireFromString("12.50"),
		Category: "Dice & Accessories",
	})
	if err != nil {
		t.Fatalf("Create() unexpected error = %v", err)
	}
	if created.ID == "" {
		t.Error("Create() should assign an ID")
	}
	if created.Hidden {
		t.Error("Create() should default hidden to false")
	}
	if created.CreatedAt == nil {
		t.Error("Create() should set created_at")
	}

	name := "Metal D20 Set"
	updated, err := repo.Update(ctx, created.ID, models.ProductPatch{Name: &name})
	if err != nil {
		t.Fatalf("Update() unexpected error = %v", err)
	}
	if updated.Name != name || updated.Category != "Dice & Accessories" {
		t.Errorf("Update() = %+v, want only the name changed", updated)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() unexpected error = %v", err)
	}
	if _, err := repo.GetByID(ctx, created.ID); err != ErrProductNotFound {
		t.Errorf("GetByID() after delete error = %v, want %v", err, ErrProductNotFound)
	}
}

func TestInMemoryProductRepository_NotFound(t *testing.T) {
	repo := NewInMemoryProductRepository()
	ctx := context.Background()

	hidden := true
	tests := []struct {
		name string
		call func() error
	}{
		{"get", func() error { _, err := repo.GetByID(ctx, "999"); return err }},
		{"update", func() error { _, err := repo.Update(ctx, "999", models.ProductPatch{Hidden: &hidden}); return err }},
		{"delete", func() error { return repo.Delete(ctx, "999") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); err != ErrProductNotFound {
				t.Errorf("error = %v, want %v", err, ErrProductNotFound)
			}
		})
	}
}

func TestInMemoryProductRepository_ReturnsCopies(t *testing.T) {
	repo := NewInMemoryProductRepository()
	ctx := context.Background()

	products, _ := repo.GetAll(ctx)
	products[0].Name = "mutated"

	p, err := repo.GetByID(ctx, products[0].ID)
	if err != nil {
		t.Fatalf("GetByID() unexpected error = %v", err)
	}
	if p.Name == "mutated" {
		t.Error("GetAll() must not expose internal storage")
	}
}
