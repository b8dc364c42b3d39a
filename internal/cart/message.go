package cart

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/Lixing-Zhang/hobbyshop/internal/models"
	"github.com/shopspring/decimal"
)

const messageGreeting = "Hello! I would like to order the following items:"

// Total returns the sum of every line total
func Total(items []models.CartLineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// CheckoutMessage renders the plain-text order summary: a greeting, one
// "• name xN - $line" row per item and a closing "Total: $X" row
func CheckoutMessage(items []models.CartLineItem) string {
	var b strings.Builder

	b.WriteString(messageGreeting)
	b.WriteString("\n\n")
	for _, item := range items {
		fmt.Fprintf(&b, "• %s x%d - $%s\n", item.Name, item.LineQuantity, item.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: $%s", Total(items).StringFixed(2))

	return b.String()
}

// encodeURIComponent leaves these unescaped where url.QueryEscape does not
var uriComponentFixups = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeURIComponent percent-encodes s like the browser function of the
// same name: spaces become %20 and only A-Z a-z 0-9 - _ . ! ~ * ' ( ) are
// left as is
func EncodeURIComponent(s string) string {
	return uriComponentFixups.Replace(url.QueryEscape(s))
}
