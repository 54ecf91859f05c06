package common

import (
	"github.com/google/uuid"
)

// NewFormID generates a unique form ID with the "form_" prefix
func NewFormID() string {
	return "form_" + uuid.New().String()
}

// NewSchemaID generates a unique schema ID with the "schema_" prefix
func NewSchemaID() string {
	return "schema_" + uuid.New().String()
}

// NewSubmissionID generates a unique submission ID with the "sub_" prefix
func NewSubmissionID() string {
	return "sub_" + uuid.New().String()
}

// NewFileKey generates a unique file storage key with the "file_" prefix
func NewFileKey() string {
	return "file_" + uuid.New().String()
}
