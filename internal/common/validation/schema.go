// internal/common/validation/schema.go
package validation

import (
	"fmt"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

// Schema names.
const (
	ChatRequest          = "chat-request"
	SelectionIndices     = "selection-indices"
	IntentClassification = "intent-classification"
	DocumentFile         = "document-file"
)

var schemaSources = map[string]string{
	ChatRequest: `{
		"type": "object",
		"required": ["question"],
		"properties": {
			"question": {"type": "string", "pattern": "\\S", "maxLength": 4000},
			"mode": {"type": ["string", "null"], "maxLength": 32}
		}
	}`,
	SelectionIndices: `{
		"type": "array",
		"items": {"type": "integer"}
	}`,
	IntentClassification: `{
		"type": "object",
		"required": ["intent"],
		"properties": {
			"intent": {"type": "string", "enum": ["investor", "land", "rts", "form", "general"]}
		}
	}`,
	DocumentFile: `{
		"type": "object",
		"required": ["chunks"],
		"properties": {
			"title": {"type": "string"},
			"source_url": {"type": "string"},
			"chunks": {"type": "array", "items": {"type": "string"}},
			"related_links": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["url"],
					"properties": {"title": {"type": "string"}, "url": {"type": "string", "minLength": 1}}
				}
			},
			"forms": {
				"type": "array",
				"items": {
					"type": "object",
					"required": ["name"],
					"properties": {
						"name": {"type": "string", "minLength": 1},
						"url": {"type": "string"},
						"required_fields": {"type": "array", "items": {"type": "string"}}
					}
				}
			},
			"content_type": {"type": "string", "enum": ["page", "pdf", "form", "external"]}
		}
	}`,
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Summary joins the errors into one line for logs and error details.
func (r *ValidationResult) Summary() string {
	if r.Valid || len(r.Errors) == 0 {
		return ""
	}
	msg := ""
	for i, e := range r.Errors {
		if i > 0 {
			msg += "; "
		}
		msg += fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return msg
}

var (
	compileOnce sync.Once
	compiled    map[string]*gojsonschema.Schema
	compileErr  error
)

func schemas() (map[string]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[string]*gojsonschema.Schema, len(schemaSources))
		for name, src := range schemaSources {
			s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
			if err != nil {
				compileErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			compiled[name] = s
		}
	})
	return compiled, compileErr
}

// ValidateJSON validates raw JSON bytes against a named schema. Malformed JSON
// is reported as a validation failure, not an error.
func ValidateJSON(schemaName string, data []byte) (*ValidationResult, error) {
	return validate(schemaName, gojsonschema.NewBytesLoader(data))
}

// ValidateValue validates an already decoded Go value against a named schema.
func ValidateValue(schemaName string, value interface{}) (*ValidationResult, error) {
	return validate(schemaName, gojsonschema.NewGoLoader(value))
}

func validate(schemaName string, doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	all, err := schemas()
	if err != nil {
		return nil, err
	}
	schema, ok := all[schemaName]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", schemaName)
	}

	result, err := schema.Validate(doc)
	if err != nil {
		return &ValidationResult{
			Valid: false,
			Errors: []ValidationError{{
				Field:   "(root)",
				Message: err.Error(),
				Code:    "MALFORMED_JSON",
			}},
		}, nil
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, e := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   e.Field(),
			Message: e.Description(),
			Code:    e.Type(),
		})
	}
	return out, nil
}
