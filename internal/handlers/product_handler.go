package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/Lixing-Zhang/hobbyshop/internal/service"
	"github.com/go-chi/chi/v5"
)

// CatalogNoticeHeader is set when the listing comes from the built-in
// product set because the catalogue could not be reached
const CatalogNoticeHeader = "X-Catalog-Notice"

// Catalog is the read side of the product catalogue
type Catalog interface {
	ListProducts(ctx context.Context) ([]models.Product, error)
	FallbackProducts() ([]models.Product, bool)
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

// ProductHandler handles product-related HTTP requests
type ProductHandler struct {
	catalog Catalog
	logger  *slog.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog Catalog, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		logger:  logger,
	}
}

// ListProducts handles GET /api/product?category=
// Returns the visible products, optionally narrowed to one category
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category != models.AllCategories && !models.IsCategory(category) {
		WriteError(w, http.StatusBadRequest, "Unknown category", h.logger)
		return
	}

	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		fallback, ok := h.catalog.FallbackProducts()
		if !ok {
			WriteServiceError(w, err, h.logger)
			return
		}
		h.logger.Warn("serving fallback catalogue", "error", err)
		w.Header().Set(CatalogNoticeHeader, "Showing sample products; the catalogue is temporarily unavailable")
		products = fallback
	}

	WriteJSON(w, http.StatusOK, service.FilterByCategory(products, category), h.logger)
}

// GetProduct handles GET /api/product/{productId}
// - 200: successful operation
// - 404: Product not found or hidden
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	productID := chi.URLParam(r, "productId")

	if productID == "" {
		WriteError(w, http.StatusBadRequest, "Invalid ID supplied", h.logger)
		return
	}

	product, err := h.catalog.GetProduct(r.Context(), productID)
	if err != nil {
		WriteServiceError(w, err, h.logger)
		return
	}

	WriteJSON(w, http.StatusOK, product, h.logger)
}

// ListCategories handles GET /api/categories
func (h *ProductHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, models.Categories, h.logger)
}
