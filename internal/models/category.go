package models

// AllCategories is the filter sentinel meaning "no category filter"
const AllCategories = ""

// Categories is the fixed set of catalog categories, in display order
var Categories = []string{
	"Trading Cards",
	"Board Games",
	"Miniatures",
	"Dice & Accessories",
	"Card Sleeves",
	"Collectibles",
}

// IsCategory reports whether name is one of the catalog categories
func IsCategory(name string) bool {
	for _, c := range Categories {
		if c == name {
			return true
		}
	}
	return false
}
