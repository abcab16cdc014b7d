package validation

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var nonBlank = `\S`

// EntityFormSchema describes a submitted company form. Website, category and location are optional.
var EntityFormSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"name", "description", "phone", "email"},
	"properties": map[string]interface{}{
		"id":          map[string]interface{}{"type": "integer", "minimum": 0},
		"name":        map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 255, "pattern": nonBlank},
		"description": map[string]interface{}{"type": "string", "minLength": 1, "pattern": nonBlank},
		"phone":       map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 50, "pattern": nonBlank},
		"email":       map[string]interface{}{"type": "string", "format": "email"},
		"website":     map[string]interface{}{"type": "string", "maxLength": 255},
		"categoryId":  map[string]interface{}{"type": "integer", "minimum": 1},
		"location": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"address": map[string]interface{}{"type": "string"},
				"city":    map[string]interface{}{"type": "string"},
				"region":  map[string]interface{}{"type": "string"},
				"zipcode": map[string]interface{}{"type": "string"},
			},
		},
	},
}

// SnapshotSchema describes the company array embedded in the dashboard page.
var SnapshotSchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"id", "name", "moderationStatus"},
		"properties": map[string]interface{}{
			"id":   map[string]interface{}{"type": "integer"},
			"name": map[string]interface{}{"type": "string"},
			"moderationStatus": map[string]interface{}{
				"type": "string",
				"enum": []interface{}{"pending", "approved", "rejected"},
			},
		},
	},
}

// ValidateDocument validates a Go value against a JSON schema expressed as a map.
func ValidateDocument(schema map[string]interface{}, document interface{}) (*ValidationResult, error) {
	return validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewGoLoader(document))
}

// ValidateJSON validates raw JSON bytes against a JSON schema expressed as a map.
func ValidateJSON(schema map[string]interface{}, payload []byte) (*ValidationResult, error) {
	return validate(gojsonschema.NewGoLoader(schema), gojsonschema.NewBytesLoader(payload))
}

// ValidateEntityForm runs the required-field and format checks for a company form.
func ValidateEntityForm(form map[string]interface{}) *ValidationResult {
	result, err := ValidateDocument(EntityFormSchema, form)
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_DOCUMENT"}},
		}
	}
	return result
}

// ValidateSnapshot checks the embedded company payload.
func ValidateSnapshot(payload []byte) *ValidationResult {
	result, err := ValidateJSON(SnapshotSchema, payload)
	if err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_JSON"}},
		}
	}
	return result
}

func validate(schemaLoader, documentLoader gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if desc.Type() == "required" {
			if prop, ok := desc.Details()["property"].(string); ok {
				if field == "(root)" {
					field = prop
				} else {
					field = field + "." + prop
				}
			}
		}
		out.Errors = append(out.Errors, ValidationError{
			Field:   field,
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	sort.SliceStable(out.Errors, func(i, j int) bool { return out.Errors[i].Field < out.Errors[j].Field })
	return out, nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, err := range vr.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// InvalidFields returns the distinct field names with errors, in order.
func (vr *ValidationResult) InvalidFields() []string {
	seen := map[string]bool{}
	var fields []string
	for _, err := range vr.Errors {
		if !seen[err.Field] {
			seen[err.Field] = true
			fields = append(fields, err.Field)
		}
	}
	return fields
}

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,}$`)
	urlPattern   = regexp.MustCompile(`^(https?|ftp)://[^\s/$.?#].[^\s]*$`)
)

// ValidateEmail validates basic email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// ValidateURL validates URL format
func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}
