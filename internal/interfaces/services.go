package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/formforge/internal/models"
)

// DocumentKind tells the text extraction engine how to read a document.
type DocumentKind string

const (
	DocumentKindPDF   DocumentKind = "pdf"
	DocumentKindImage DocumentKind = "image"
)

// ProgressFunc reports extraction progress. Percent is 0-100; status is a
// short human-readable phase description.
type ProgressFunc func(percent int, status string)

// TextExtractor turns a raw document into plain text. ExtractScanned is the
// OCR path for PDFs whose text layer is empty or unreadable.
type TextExtractor interface {
	Extract(ctx context.Context, document []byte, kind DocumentKind, onProgress ProgressFunc) (string, error)
	ExtractScanned(ctx context.Context, document []byte, onProgress ProgressFunc) (string, error)
}

// FieldInferencer turns extracted text (or the raw document) into a
// normalized, typed field list. Exactly one strategy runs per request.
type FieldInferencer interface {
	Infer(ctx context.Context, text string, strategy models.InferenceStrategy) (*models.InferenceResult, error)
}

// PDFFiller produces a completed PDF from an original document, a schema and
// submitted values. It is a pure function of its inputs and always returns
// well-formed PDF bytes for a successful submission.
type PDFFiller interface {
	Fill(ctx context.Context, original []byte, schema *models.FormSchema, submission *models.FormSubmission) ([]byte, error)
	BuildFormSheet(schema *models.FormSchema) ([]byte, error)
}

// Notifier sends best-effort submission notifications. Failures are logged,
// never propagated to the submit flow.
type Notifier interface {
	SendSubmitterConfirmation(ctx context.Context, to, formName, submissionID string, submittedAt time.Time) error
	SendOwnerNotification(ctx context.Context, to, formName, submissionID string, data map[string]interface{}) error
}
