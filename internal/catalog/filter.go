// Package catalog searches and filters the product catalog.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// AllOption disables the category or brand constraint.
const AllOption = "All"

// Item is a product as shown in the storefront grid.
type Item struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Brand    string          `json:"brand"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
	InStock  bool            `json:"in_stock"`
	SKU      string          `json:"sku"`
}

// Filter keeps items matching all three criteria. Empty Category or Brand
// behaves like AllOption.
type Filter struct {
	Search   string
	Category string
	Brand    string
}

// Match is case-insensitive on Search, which looks at name and brand and is
// used as typed, spaces included. Category and Brand compare exactly.
func (f Filter) Match(it Item) bool {
	if term := strings.ToLower(f.Search); term != "" {
		if !strings.Contains(strings.ToLower(it.Name), term) && !strings.Contains(strings.ToLower(it.Brand), term) {
			return false
		}
	}
	if !isAll(f.Category) && it.Category != f.Category {
		return false
	}
	if !isAll(f.Brand) && it.Brand != f.Brand {
		return false
	}
	return true
}

// Apply returns the matching items in their original order.
func (f Filter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if f.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

func isAll(v string) bool { return v == "" || v == AllOption }
