package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/formforge/internal/models"
)

func intPtr(v int) *int { return &v }

func testSchema() *models.FormSchema {
	return &models.FormSchema{
		Title: "Intake",
		Fields: []models.FormField{
			{ID: "name", Label: "Name", Type: models.FieldTypeText, Required: true},
			{ID: "email", Label: "Email", Type: models.FieldTypeEmail},
			{ID: "phone", Label: "Phone", Type: models.FieldTypePhone},
			{ID: "agree", Label: "I agree", Type: models.FieldTypeCheckbox, Required: true},
			{ID: "size", Label: "Size", Type: models.FieldTypeSelect, Options: []string{"S", "M", "L"}},
			{ID: "bio", Label: "Bio", Type: models.FieldTypeText, Validation: &models.Validation{Min: intPtr(2), Max: intPtr(5)}},
		},
	}
}

func TestValidateSubmission(t *testing.T) {
	tests := []struct {
		name     string
		data     map[string]interface{}
		wantErrs []string
	}{
		{
			name: "valid submission",
			data: map[string]interface{}{
				"name":  "Ada",
				"email": "ada@example.com",
				"phone": "+61412345678",
				"agree": true,
				"size":  "M",
				"bio":   "hi",
			},
		},
		{
			name:     "missing required text",
			data:     map[string]interface{}{},
			wantErrs: []string{"name"},
		},
		{
			name:     "malformed email",
			data:     map[string]interface{}{"name": "Ada", "email": "not-an-email"},
			wantErrs: []string{"email"},
		},
		{
			name:     "phone with letters",
			data:     map[string]interface{}{"name": "Ada", "phone": "+1 (555) CALL"},
			wantErrs: []string{"phone"},
		},
		{
			name:     "phone too long",
			data:     map[string]interface{}{"name": "Ada", "phone": "+12345678901234567"},
			wantErrs: []string{"phone"},
		},
		{
			name: "required checkbox never fails on false",
			data: map[string]interface{}{"name": "Ada", "agree": false},
		},
		{
			name:     "select value outside options",
			data:     map[string]interface{}{"name": "Ada", "size": "XXL"},
			wantErrs: []string{"size"},
		},
		{
			name:     "text below min length",
			data:     map[string]interface{}{"name": "Ada", "bio": "x"},
			wantErrs: []string{"bio"},
		},
		{
			name:     "text above max length",
			data:     map[string]interface{}{"name": "Ada", "bio": "far too long"},
			wantErrs: []string{"bio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateSubmission(testSchema(), tt.data)

			var gotIDs []string
			for _, e := range errs {
				gotIDs = append(gotIDs, e.FieldID)
			}
			assert.Equal(t, tt.wantErrs, gotIDs)
		})
	}
}

func TestValidateSubmission_OptionalEmptyFieldsPass(t *testing.T) {
	schema := &models.FormSchema{
		Fields: []models.FormField{
			{ID: "email", Label: "Email", Type: models.FieldTypeEmail},
			{ID: "phone", Label: "Phone", Type: models.FieldTypePhone},
		},
	}

	assert.Nil(t, ValidateSubmission(schema, map[string]interface{}{}))
}
