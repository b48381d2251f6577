package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// CatalogSchema describes the catalog document. Only the envelope is
// checked; individual item records are accepted as they are.
var CatalogSchema = `{
	"type": "object",
	"properties": {
		"Items": {
			"type": "array",
			"items": {"type": "object"}
		}
	},
	"required": ["Items"]
}`

var catalogSchema = gojsonschema.NewStringLoader(CatalogSchema)

// ValidateCatalogDocument checks raw catalog JSON against CatalogSchema.
func ValidateCatalogDocument(jsonData []byte) error {
	result, err := gojsonschema.Validate(catalogSchema, gojsonschema.NewBytesLoader(jsonData))
	if err != nil {
		return fmt.Errorf("failed to validate catalog document: %w", err)
	}

	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return fmt.Errorf("invalid catalog document: %s", strings.Join(errorMessages, "; "))
	}

	return nil
}
