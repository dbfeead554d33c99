// internal/common/validation/validation.go

// Package validation checks inbound API payloads against JSON schema
// documents before they reach the store.
package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

const applicationSchema = `{
	"type": "object",
	"required": ["submitterId", "title", "description"],
	"additionalProperties": false,
	"properties": {
		"submitterId":      {"type": "string", "minLength": 1},
		"title":            {"type": "string", "minLength": 1, "maxLength": 200},
		"description":      {"type": "string", "minLength": 1, "maxLength": 5000},
		"problemStatement": {"type": "string", "maxLength": 5000},
		"solution":         {"type": "string", "maxLength": 5000},
		"techStack":        {"type": "array", "items": {"type": "string"}},
		"teamSize":         {"type": "integer", "minimum": 0},
		"teamMembers":      {"type": "array", "items": {"type": "string"}},
		"estimatedCost":    {"type": "number", "minimum": 0}
	}
}`

type Validator struct {
	schema *gojsonschema.Schema
}

// NewApplicationValidator compiles the application submission schema.
func NewApplicationValidator() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(applicationSchema))
	if err != nil {
		return nil, fmt.Errorf("compile application schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns one message per schema violation, nil when the payload
// conforms.
func (v *Validator) Validate(payload []byte) ([]string, error) {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(payload))
	if err != nil {
		return nil, fmt.Errorf("validate payload: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}
	messages := make([]string, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		messages = append(messages, fmt.Sprintf("%s: %s", resultErr.Field(), resultErr.Description()))
	}
	return messages, nil
}
