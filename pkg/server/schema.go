package server

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// arenaRequestSchema validates the inbound goal request before it is
// decoded. Enum violations are rejected here with field-level errors
// instead of surfacing as opaque decode failures.
const arenaRequestSchema = `{
	"type": "object",
	"required": ["goal", "risk_preference", "depth"],
	"additionalProperties": false,
	"properties": {
		"goal": {
			"type": "string",
			"minLength": 1
		},
		"risk_preference": {
			"type": "string",
			"enum": ["low", "medium", "high"]
		},
		"depth": {
			"type": "string",
			"enum": ["quick", "standard", "deep"]
		}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(arenaRequestSchema)

// validateArenaRequest checks a raw JSON body against the request
// schema. On violation it returns the per-field messages and an error.
func validateArenaRequest(body []byte) ([]string, error) {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return []string{"body is not valid JSON"}, fmt.Errorf("schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	fieldErrors := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		fieldErrors = append(fieldErrors, desc.String())
	}

	return fieldErrors, fmt.Errorf("request failed schema validation")
}
