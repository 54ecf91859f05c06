package models

import "time"

// SubmissionStatus tracks the lifecycle of a form submission.
type SubmissionStatus string

const (
	SubmissionStatusPending   SubmissionStatus = "pending"
	SubmissionStatusCompleted SubmissionStatus = "completed"
	SubmissionStatusArchived  SubmissionStatus = "archived"
)

// FormSubmission is one end-user submission. Data maps field id to the
// submitted value: string for text-like fields, bool for checkboxes.
// A submission is created once and mutated only to attach the completed PDF
// key and flip the status to completed after a successful fill.
type FormSubmission struct {
	ID              string                 `json:"id" badgerhold:"key"`
	FormID          string                 `json:"form_id" badgerhold:"index"`
	Data            map[string]interface{} `json:"data"`
	SubmitterEmail  string                 `json:"submitter_email,omitempty"`
	Status          SubmissionStatus       `json:"status"`
	SubmittedAt     time.Time              `json:"submitted_at"`
	CompletedPDFKey string                 `json:"completed_pdf_key,omitempty"`
}

// StringValue returns the submitted value for a field id as its string form,
// with ok=false when the value is absent or empty. Checkbox booleans are not
// strings; use BoolValue for those.
func (s *FormSubmission) StringValue(fieldID string) (string, bool) {
	v, found := s.Data[fieldID]
	if !found || v == nil {
		return "", false
	}
	str, ok := v.(string)
	if !ok || str == "" {
		return "", false
	}
	return str, true
}

// BoolValue returns the submitted checkbox value for a field id.
// Absent values and the string forms "true"/"false" are handled, since
// submissions arrive as untyped JSON.
func (s *FormSubmission) BoolValue(fieldID string) bool {
	v, found := s.Data[fieldID]
	if !found || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	}
	return false
}
