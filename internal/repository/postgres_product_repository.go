package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productRow is the products table as stored remotely
type productRow struct {
	UUID          string          `gorm:"column:uuid;primaryKey;type:varchar(36)"`
	Name          string          `gorm:"column:name;not null"`
	Description   string          `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	ImageURL      string          `gorm:"column:image_url"`
	Category      string          `gorm:"column:category;not null;index"`
	IsHidden      bool            `gorm:"column:is_hidden;not null;default:false;index"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (productRow) TableName() string {
	return "products"
}

func (row productRow) toModel() models.Product {
	created := row.CreatedAt
	return models.Product{
		ID:            row.UUID,
		Name:          row.Name,
		Description:   row.Description,
		Price:         row.Price,
		ImageURL:      row.ImageURL,
		Category:      row.Category,
		Hidden:        row.IsHidden,
		StockQuantity: row.StockQuantity,
		CreatedAt:     &created,
	}
}

// PostgresProductRepository implements ProductRepository on a PostgreSQL
// products table through GORM
type PostgresProductRepository struct {
	db *gorm.DB
}

// OpenPostgres connects to databaseURL and migrates the products table
func OpenPostgres(databaseURL string) (*PostgresProductRepository, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&productRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate products table: %w", err)
	}

	return NewPostgresProductRepository(db), nil
}

// NewPostgresProductRepository wraps an open GORM handle
func NewPostgresProductRepository(db *gorm.DB) *PostgresProductRepository {
	return &PostgresProductRepository{db: db}
}

// Ping checks that the database answers
func (r *PostgresProductRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool
func (r *PostgresProductRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *PostgresProductRepository) find(ctx context.Context, scope func(*gorm.DB) *gorm.DB) ([]models.Product, error) {
	var rows []productRow
	if err := scope(r.db.WithContext(ctx)).Order("created_at asc").Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, row.toModel())
	}
	return products, nil
}

// GetAll selects every product
func (r *PostgresProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB { return db })
}

// GetVisible selects products where is_hidden is false
func (r *PostgresProductRepository) GetVisible(ctx context.Context) ([]models.Product, error) {
	return r.find(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("is_hidden = ?", false)
	})
}

// GetByID returns a product by its uuid
func (r *PostgresProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var row productRow
	err := r.db.WithContext(ctx).Where("uuid = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	product := row.toModel()
	return &product, nil
}

// Create inserts a row with is_hidden false and returns it as stored
func (r *PostgresProductRepository) Create(ctx context.Context, draft models.ProductDraft) (*models.Product, error) {
	row := productRow{
		UUID:          uuid.New().String(),
		Name:          draft.Name,
		Description:   draft.Description,
		Price:         draft.Price,
		ImageURL:      draft.ImageURL,
		Category:      draft.Category,
		IsHidden:      false,
		StockQuantity: draft.StockQuantity,
	}

	if err := r.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&row).Error; err != nil {
		return nil, err
	}
	product := row.toModel()
	return &product, nil
}

// Update applies the non-nil patch columns to the row with the given uuid
func (r *PostgresProductRepository) Update(ctx context.Context, id string, patch models.ProductPatch) (*models.Product, error) {
	updates := patchColumns(patch)
	if len(updates) == 0 {
		return r.GetByID(ctx, id)
	}

	var rows []productRow
	result := r.db.WithContext(ctx).
		Model(&rows).
		Clauses(clause.Returning{}).
		Where("uuid = ?", id).
		Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 || len(rows) == 0 {
		return nil, ErrProductNotFound
	}
	product := rows[0].toModel()
	return &product, nil
}

// Delete removes the row with the given uuid
func (r *PostgresProductRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("uuid = ?", id).Delete(&productRow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

func patchColumns(patch models.ProductPatch) map[string]interface{} {
	updates := make(map[string]interface{})
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.Category != nil {
		updates["category"] = *patch.Category
	}
	if patch.Hidden != nil {
		updates["is_hidden"] = *patch.Hidden
	}
	if patch.StockQuantity != nil {
		updates["stock_quantity"] = *patch.StockQuantity
	}
	return updates
}
