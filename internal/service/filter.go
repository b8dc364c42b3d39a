package service

import "github.com/Lixing-Zhang/hobbyshop/internal/models"

// FilterByCategory returns the products in category, keeping source order.
// models.AllCategories returns the input unchanged.
func FilterByCategory(products []models.Product, category string) []models.Product {
	if category == models.AllCategories {
		return products
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
