package admin

import (
	"fmt"
	"io"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/tealeg/xlsx"
)

// ExportContentType is the MIME type written by ExportProducts
const ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var exportHeaders = []string{
	"ID", "Name", "Description", "Price", "Category", "Hidden", "Stock", "Image", "CreatedAt",
}

// ExportProducts writes products as a single-sheet Excel workbook
func ExportProducts(w io.Writer, products []models.Product) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Products")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range exportHeaders {
		header.AddCell().SetValue(h)
	}

	for _, p := range products {
		row := sheet.AddRow()
		row.AddCell().SetValue(p.ID)
		row.AddCell().SetValue(p.Name)
		row.AddCell().SetValue(p.Description)
		row.AddCell().SetValue(p.Price.StringFixed(2))
		row.AddCell().SetValue(p.Category)
		row.AddCell().SetValue(p.Hidden)
		row.AddCell().SetValue(p.StockQuantity)
		row.AddCell().SetValue(p.ImageURL)

		created := ""
		if p.CreatedAt != nil {
			created = p.CreatedAt.Format("2006-01-02 15:04:05")
		}
		row.AddCell().SetValue(created)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
