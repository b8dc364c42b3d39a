package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestPostgresProductRepository_PingUnreachable(t *testing.T) {
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=shop dbname=shop sslmode=disable connect_timeout=1"),
		&gorm.Config{DisableAutomaticPing: true})
	if err != nil {
		t.Fatalf("gorm.Open() error = %v", err)
	}
	repo := NewPostgresProductRepository(db)
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := repo.Ping(ctx); err == nil {
		t.Error("Ping() against a closed port should fail")
	}
}

// TestPostgresProductRepository_Integration runs against a real database.
// It is skipped unless TEST_DATABASE_URL points at a disposable PostgreSQL.
func TestPostgresProductRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping database test in short mode")
	}

	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("skipping test: TEST_DATABASE_URL not set")
	}

	repo, err := OpenPostgres(databaseURL)
	if err != nil {
		t.Fatalf("OpenPostgres() error = %v", err)
	}
	defer repo.Close()
	ctx := context.Background()

	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	created, err := repo.Create(ctx, models.ProductDraft{
		Name:          "Integration Sleeves",
		Description:   "100 matte sleeves",
		Price:         decimal.RequireFromString("8.99"),
		ImageURL:      "https://example.com/sleeves.jpg",
		Category:      "Card Sleeves",
		StockQuantity: 4,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	t.Cleanup(func() { _ = repo.Delete(context.Background(), created.ID) })

	if created.Hidden {
		t.Error("Create() should default is_hidden to false")
	}

	hidden := true
	updated, err := repo.Update(ctx, created.ID, models.ProductPatch{Hidden: &hidden})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.Hidden {
		t.Error("Update() did not hide the product")
	}

	visible, err := repo.GetVisible(ctx)
	if err != nil {
		t.Fatalf("GetVisible() error = %v", err)
	}
	for _, p := range visible {
		if p.ID == created.ID {
			t.Error("hidden product returned by GetVisible()")
		}
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(ctx, created.ID); err != ErrProductNotFound {
		t.Errorf("second Delete() error = %v, want %v", err, ErrProductNotFound)
	}
}

func TestPatchColumns(t *testing.T) {
	hidden := true
	stock := 0
	cols := patchColumns(models.ProductPatch{Hidden: &hidden, StockQuantity: &stock})

	if len(cols) != 2 {
		t.Fatalf("expected 2 columns, got %d: %v", len(cols), cols)
	}
	if cols["is_hidden"] != true {
		t.Errorf("is_hidden = %v, want true", cols["is_hidden"])
	}
	if cols["stock_quantity"] != 0 {
		t.Errorf("stock_quantity = %v, want 0", cols["stock_quantity"])
	}
}
