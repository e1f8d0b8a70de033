// Package catalog holds the static product knowledge base loaded once at boot.
package catalog

// Catalog is the root of the brand/product dataset. It is loaded once at
// startup and immutable for the process lifetime.
type Catalog struct {
	Brands []Brand `json:"brands"`
}

// Brand groups the products sold under one brand name.
type Brand struct {
	BrandName string    `json:"brand_name"`
	Products  []Product `json:"products"`
}

// Product is a partially-specified catalog entry. Every field is optional;
// missing fields surface as "N/A" at render time, not at parse time.
type Product struct {
	Name              string   `json:"name,omitempty"`
	Category          string   `json:"category,omitempty"`
	Features          string   `json:"features,omitempty"`
	UsageInstructions string   `json:"usage_instructions,omitempty"`
	Ingredients       []string `json:"ingredients,omitempty"`
	PriceBDT          *float64 `json:"price_bdt,omitempty"`
	Suitability       string   `json:"suitability,omitempty"`
}

// BrandCount returns the number of brands in the catalog.
func (c *Catalog) BrandCount() int {
	return len(c.Brands)
}

// ProductCount returns the total number of products across all brands.
func (c *Catalog) ProductCount() int {
	n := 0
	for _, b := range c.Brands {
		n += len(b.Products)
	}
	return n
}
