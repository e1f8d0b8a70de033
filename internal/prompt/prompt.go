// Package prompt renders the boot-time knowledge base into the one-time
// system instruction sent ahead of each conversation.
package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"lira-chatbot/internal/catalog"
)

const missingField = "N/A"

// FlatProduct is a catalog product tagged with its parent brand name.
type FlatProduct struct {
	catalog.Product
	Brand string
}

// Flatten walks every brand in listed order and copies each product with the
// parent brand name injected. Products under a brand with no name get
// "Unknown Brand".
func Flatten(c *catalog.Catalog) []FlatProduct {
	var products []FlatProduct
	for _, brand := range c.Brands {
		brandName := brand.BrandName
		if brandName == "" {
			brandName = "Unknown Brand"
		}
		for _, p := range brand.Products {
			products = append(products, FlatProduct{Product: p, Brand: brandName})
		}
	}
	return products
}

// RenderProducts emits one fixed-field block per product, fields in a fixed
// order, missing values as "N/A", blocks separated by a line of dashes.
func RenderProducts(products []FlatProduct) string {
	var b strings.Builder
	for _, p := range products {
		fmt.Fprintf(&b, "\nProduct Name: %s\n", orNA(p.Name))
		fmt.Fprintf(&b, "Brand: %s\n", orNA(p.Brand))
		fmt.Fprintf(&b, "Category: %s\n", orNA(p.Category))
		fmt.Fprintf(&b, "Features: %s\n", orNA(p.Features))
		fmt.Fprintf(&b, "Usage Instructions: %s\n", orNA(p.UsageInstructions))
		fmt.Fprintf(&b, "Ingredients: %s\n", strings.Join(p.Ingredients, ", "))
		fmt.Fprintf(&b, "Price: %s BDT\n", formatPrice(p.PriceBDT))
		fmt.Fprintf(&b, "Suitability: %s\n", orNA(p.Suitability))
		b.WriteString("---\n")
	}
	return b.String()
}

// BuildSystemInstruction combines the persona preamble, the company article,
// the rendered product block, and the answering rules into the one-time
// context message.
func BuildSystemInstruction(article, renderedProducts string) string {
	return fmt.Sprintf(`
You are a professional customer service officer for Lira Cosmetics Ltd.

Company Info:
%s

Products:
%s

Rules:
- Answer ONLY based on this data.
- Be clear, polite, and customer-friendly.
- Do NOT invent information.
`, article, renderedProducts)
}

func orNA(s string) string {
	if s == "" {
		return missingField
	}
	return s
}

func formatPrice(price *float64) string {
	if price == nil {
		return missingField
	}
	return strconv.FormatFloat(*price, 'f', -1, 64)
}
