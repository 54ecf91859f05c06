// -----------------------------------------------------------------------
// Submission validation - the per-FieldType rules a dynamic form applies
// before a submission is accepted
// -----------------------------------------------------------------------

package validation

import (
	"fmt"
	"regexp"

	"github.com/ternarybob/formforge/internal/models"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?\d{1,16}$`)
)

// FieldError is one validation failure, keyed by the offending field id.
type FieldError struct {
	FieldID string `json:"field_id"`
	Message string `json:"message"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.FieldID, e.Message)
}

// ValidateSubmission checks submitted data against a schema. Per field type:
// email must be RFC-shaped, phone is digits with an optional leading plus
// (1-16 digits), date and signature must be non-empty strings when required,
// checkboxes are booleans and never subject to a required-non-empty check,
// and everything else must be non-empty when required. Min and max lengths
// constrain plain text fields only. Returns nil when the submission is valid.
func ValidateSubmission(schema *models.FormSchema, data map[string]interface{}) []FieldError {
	var errs []FieldError

	for _, field := range schema.Fields {
		if field.Type == models.FieldTypeCheckbox {
			continue
		}

		value := stringValue(data, field.ID)

		if value == "" {
			if field.Required {
				errs = append(errs, FieldError{FieldID: field.ID, Message: fmt.Sprintf("%s is required", field.Label)})
			}
			continue
		}

		switch field.Type {
		case models.FieldTypeEmail:
			if !emailPattern.MatchString(value) {
				errs = append(errs, FieldError{FieldID: field.ID, Message: "must be a valid email address"})
			}
		case models.FieldTypePhone:
			if !phonePattern.MatchString(value) {
				errs = append(errs, FieldError{FieldID: field.ID, Message: "must be a phone number with an optional leading + and up to 16 digits"})
			}
		case models.FieldTypeSelect, models.FieldTypeRadio:
			if len(field.Options) > 0 && !containsOption(field.Options, value) {
				errs = append(errs, FieldError{FieldID: field.ID, Message: "must be one of the offered options"})
			}
		case models.FieldTypeText:
			if err := checkTextLength(field, value); err != nil {
				errs = append(errs, FieldError{FieldID: field.ID, Message: err.Error()})
			}
		}
	}

	return errs
}

// checkTextLength applies min/max length constraints to a plain text value.
func checkTextLength(field models.FormField, value string) error {
	if field.Validation == nil {
		return nil
	}
	length := len([]rune(value))
	if field.Validation.Min != nil && length < *field.Validation.Min {
		return fmt.Errorf("must be at least %d characters", *field.Validation.Min)
	}
	if field.Validation.Max != nil && length > *field.Validation.Max {
		return fmt.Errorf("must be at most %d characters", *field.Validation.Max)
	}
	return nil
}

func stringValue(data map[string]interface{}, fieldID string) string {
	v, found := data[fieldID]
	if !found || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func containsOption(options []string, value string) bool {
	for _, o := range options {
		if o == value {
			return true
		}
	}
	return false
}
