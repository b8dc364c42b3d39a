package admin

import (
	"errors"
	"reflect"
	"strings"

	"github.com/Lixing-Zhang/hobbyshop/internal/apperr"
	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// ManualForm is the hand-entered product intake form
type ManualForm struct {
	Name          string          `json:"name" validate:"required"`
	Description   string          `json:"description" validate:"required"`
	Price         decimal.Decimal `json:"price" validate:"gte=0.01"`
	ImageURL      string          `json:"image_url" validate:"required,url"`
	Category      string          `json:"category" validate:"required,category"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}

// ExternalForm completes a card picked from the external search. Name
// and image come from the card; an empty description falls back to the
// card's own.
type ExternalForm struct {
	Price         decimal.Decimal `json:"price" validate:"gte=0.01"`
	Description   string          `json:"description"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
}

// ExternalCategory is where products created from card search land
const ExternalCategory = "Trading Cards"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Prices are compared as numbers
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return models.IsCategory(fl.Field().String())
	})

	return v
}

// validateForm runs the struct rules and turns failures into a
// ValidationError keyed by JSON field name
func validateForm(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var failures validator.ValidationErrors
	if !errors.As(err, &failures) {
		return err
	}

	fields := make(map[string]string, len(failures))
	for _, fe := range failures {
		fields[fe.Field()] = message(fe)
	}
	return &apperr.ValidationError{Fields: fields}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "url":
		return "Must be a valid URL"
	case "category":
		return "Must be one of the catalog categories"
	case "gte":
		if fe.Field() == "price" {
			return "Price must be at least " + fe.Param()
		}
		return "Must be at least " + fe.Param()
	default:
		return "Invalid value"
	}
}

func (f ManualForm) draft() models.ProductDraft {
	return models.ProductDraft{
		Name:          strings.TrimSpace(f.Name),
		Description:   strings.TrimSpace(f.Description),
		Price:         f.Price.Round(2),
		ImageURL:      strings.TrimSpace(f.ImageURL),
		Category:      f.Category,
		StockQuantity: f.StockQuantity,
	}
}

func (f ExternalForm) draft(card models.CardSummary) models.ProductDraft {
	description := strings.TrimSpace(f.Description)
	if description == "" {
		description = card.Description
	}
	return models.ProductDraft{
		Name:          card.Name,
		Description:   description,
		Price:         f.Price.Round(2),
		ImageURL:      card.ImageURL,
		Category:      ExternalCategory,
		StockQuantity: f.StockQuantity,
	}
}
