package inference

import "github.com/ternarybob/formforge/internal/models"

// sampleSchema is the deterministic 7-field fallback returned when the
// structured-extraction backend fails. It covers common intake-form needs so
// a form record is always created even when extraction produces nothing.
func sampleSchema() []models.FormField {
	return []models.FormField{
		{ID: "full_name", Label: "Full Name", Type: models.FieldTypeText, Required: true, Placeholder: "Enter your full name"},
		{ID: "email", Label: "Email Address", Type: models.FieldTypeEmail, Required: true, Placeholder: "you@example.com"},
		{ID: "phone", Label: "Phone Number", Type: models.FieldTypePhone, Placeholder: "+1 555 000 0000"},
		{ID: "date_of_birth", Label: "Date of Birth", Type: models.FieldTypeDate},
		{ID: "address", Label: "Address", Type: models.FieldTypeTextarea, Placeholder: "Street, city, postal code"},
		{ID: "emergency_contact", Label: "Emergency Contact", Type: models.FieldTypeText},
		{ID: "signature", Label: "Signature", Type: models.FieldTypeSignature, Required: true},
	}
}
