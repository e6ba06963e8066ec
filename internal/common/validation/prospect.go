// internal/common/validation/prospect.go
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "outreach-engine/internal/common/errors"
)

// prospectSchema validates inbound prospect payloads before any state
// mutation. Sector is deliberately a free string: unknown sectors are
// scored as "no match", not rejected.
const prospectSchema = `{
	"type": "object",
	"required": ["owner_id", "name", "sector", "estimated_budget", "company_size"],
	"properties": {
		"id": {"type": "string", "minLength": 1},
		"owner_id": {"type": "string", "minLength": 1},
		"name": {"type": "string", "minLength": 1, "maxLength": 200},
		"sector": {"type": "string", "minLength": 1, "maxLength": 64},
		"estimated_budget": {
			"type": "string",
			"enum": ["0-500", "500-1000", "1000-5000", "5000-20000", "20000+"]
		},
		"company_size": {
			"type": "string",
			"enum": ["small", "medium", "large"]
		},
		"needs": {"type": "string", "maxLength": 4000}
	},
	"additionalProperties": false
}`

var prospectSchemaLoader = gojsonschema.NewStringLoader(prospectSchema)

// ValidateProspectPayload checks a raw JSON prospect payload against the
// schema and returns a typed ValidationError listing every violation.
func ValidateProspectPayload(raw []byte) error {
	result, err := gojsonschema.Validate(prospectSchemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return apperrors.NewValidationError(fmt.Sprintf("malformed payload: %v", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return apperrors.NewValidationError(strings.Join(msgs, "; "))
}
