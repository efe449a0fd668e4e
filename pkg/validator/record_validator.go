package validator

import (
	"fmt"
	"strings"
)

// RecordValidator checks incoming cable records before they reach the
// lineage: codes must be present and attribute values must be scalars
// (string, number, boolean, or null), since the attribute model carries no
// nested structure.
type RecordValidator struct{}

// NewRecordValidator creates a new record validator.
func NewRecordValidator() *RecordValidator {
	return &RecordValidator{}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

// ValidationResult represents the result of validation
type ValidationResult struct {
	IsValid bool              `json:"is_valid"`
	Errors  []ValidationError `json:"errors"`
}

// ValidateRecord validates one record's code and attribute values.
func (rv *RecordValidator) ValidateRecord(code string, attributes map[string]any) ValidationResult {
	result := ValidationResult{
		IsValid: true,
		Errors:  []ValidationError{},
	}

	if strings.TrimSpace(code) == "" {
		result.IsValid = false
		result.Errors = append(result.Errors, ValidationError{
			Field:   "code",
			Message: "cable code is required",
		})
	}

	for field, value := range attributes {
		if strings.TrimSpace(field) == "" {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: "attribute name must not be blank",
				Value:   value,
			})
			continue
		}
		if !scalar(value) {
			result.IsValid = false
			result.Errors = append(result.Errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("attribute '%s' must be a scalar value, got %T", field, value),
				Value:   value,
			})
		}
	}

	return result
}

func scalar(value any) bool {
	switch value.(type) {
	case nil, string, bool, float64, float32, int, int32, int64:
		return true
	default:
		return false
	}
}
