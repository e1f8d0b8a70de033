package catalog

import (
	"encoding/json"
	"os"

	"lira-chatbot/internal/common/logger"

	"github.com/xeipuuv/gojsonschema"
)

// catalogSchema shape-checks the catalog document. Product fields stay
// optional so partially-specified entries load unchanged.
const catalogSchema = `{
	"type": "object",
	"required": ["brands"],
	"properties": {
		"brands": {
			"type": "array",
			"items": {
				"type": "object",
				"properties": {
					"brand_name": {"type": "string"},
					"products": {
						"type": "array",
						"items": {
							"type": "object",
							"properties": {
								"name": {"type": "string"},
								"category": {"type": "string"},
								"features": {"type": "string"},
								"usage_instructions": {"type": "string"},
								"ingredients": {"type": "array", "items": {"type": "string"}},
								"price_bdt": {"type": "number"},
								"suitability": {"type": "string"}
							}
						}
					}
				}
			}
		}
	}
}`

// LoadCatalog reads and parses the product catalog. Any read, parse, or shape
// failure degrades to an empty catalog with a warning; boot never aborts on
// bad knowledge-base data.
func LoadCatalog(path string, log logger.Logger) *Catalog {
	empty := &Catalog{Brands: []Brand{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("failed to load product catalog, serving with empty data", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return empty
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		log.Warn("catalog is not valid JSON, serving with empty data", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return empty
	}
	if !result.Valid() {
		fields := map[string]interface{}{"path": path}
		if errs := result.Errors(); len(errs) > 0 {
			fields["reason"] = errs[0].String()
		}
		log.Warn("catalog failed schema validation, serving with empty data", fields)
		return empty
	}

	var c Catalog
	if err := json.Unmarshal(raw, &c); err != nil {
		log.Warn("failed to parse product catalog, serving with empty data", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return empty
	}
	if c.Brands == nil {
		c.Brands = []Brand{}
	}

	log.Info("product catalog loaded", map[string]interface{}{
		"path":     path,
		"brands":   c.BrandCount(),
		"products": c.ProductCount(),
	})
	return &c
}

// LoadArticle reads the company article text. A read failure degrades to an
// empty string with a warning.
func LoadArticle(path string, log logger.Logger) string {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Warn("failed to load company article, serving with empty text", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
		return ""
	}

	log.Info("company article loaded", map[string]interface{}{
		"path":  path,
		"bytes": len(raw),
	})
	return string(raw)
}
