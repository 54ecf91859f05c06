package fill

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/formforge/internal/models"
)

// synthesize builds a brand-new summary document when the source PDF cannot
// be loaded at all. It writes the form title, a submission header, every
// non-empty field as a "label: value" line and a submitted-timestamp footer,
// so a completed-PDF artifact always exists for a successful submission.
func (s *Service) synthesize(schema *models.FormSchema, submission *models.FormSubmission) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(50, 50, 50)
	doc.SetAutoPageBreak(true, 60)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.Write(20, schema.Title)
	doc.Ln(28)

	doc.SetFont("Helvetica", "B", 14)
	doc.Write(18, "Form Submission")
	doc.Ln(26)

	doc.SetFont("Helvetica", "", 10)
	for _, field := range schema.Fields {
		value, ok := fieldDisplayValue(field, submission)
		if !ok {
			continue
		}
		doc.Write(14, fmt.Sprintf("%s: %s", field.Label, value))
		doc.Ln(overlayStep)
	}

	doc.Ln(10)
	doc.SetFont("Helvetica", "I", 9)
	doc.Write(12, "Submitted: "+submission.SubmittedAt.Format("2006-01-02 15:04:05 MST"))

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to synthesize summary document: %w", err)
	}
	return buf.Bytes(), nil
}

// fieldDisplayValue renders one submitted value for the summary document.
// Empty and absent values report ok=false; a checked checkbox renders "yes".
func fieldDisplayValue(field models.FormField, submission *models.FormSubmission) (string, bool) {
	if field.Type == models.FieldTypeCheckbox {
		if !submission.BoolValue(field.ID) {
			return "", false
		}
		return "yes", true
	}
	return submission.StringValue(field.ID)
}
