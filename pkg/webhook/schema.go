package webhook

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// configSchema describes the webhook configuration document accepted on the
// action write path. Header semantics (reserved names, secret transitions)
// are checked by ValidateHeaders; the schema only guards structure.
const configSchema = `{
	"type": "object",
	"properties": {
		"url": {
			"type": "string",
			"format": "uri",
			"description": "Delivery URL for the outbound POST request"
		},
		"headers": {
			"type": "object",
			"additionalProperties": {
				"type": "object",
				"properties": {
					"value":  {"type": "string"},
					"secret": {"type": "boolean"}
				},
				"additionalProperties": false
			}
		},
		"api_versions": {
			"type": "object",
			"additionalProperties": {"type": "string"}
		}
	},
	"required": ["url"],
	"additionalProperties": false
}`

// ValidateConfigDocument checks a raw webhook configuration document against
// the schema and returns every structural violation found.
func ValidateConfigDocument(raw json.RawMessage) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(configSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate webhook config: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, resultError := range result.Errors() {
		violations = append(violations, resultError.String())
	}

	return violations, nil
}
