package interfaces

import (
	"context"

	"github.com/ternarybob/formforge/internal/models"
)

// FormStorage persists form records with their embedded schemas.
type FormStorage interface {
	SaveForm(ctx context.Context, form *models.Form) error
	GetForm(ctx context.Context, id string) (*models.Form, error)
	ListForms(ctx context.Context, userID string) ([]*models.Form, error)
	DeleteForm(ctx context.Context, id string) error
}

// SubmissionStorage persists form submissions. Submissions are never deleted
// by the core; archival is a status flip.
type SubmissionStorage interface {
	SaveSubmission(ctx context.Context, sub *models.FormSubmission) error
	GetSubmission(ctx context.Context, id string) (*models.FormSubmission, error)
	ListSubmissions(ctx context.Context, formID string) ([]*models.FormSubmission, error)
}

// FileStorage stores raw document bytes (originals and completed PDFs) under
// opaque keys.
type FileStorage interface {
	PutFile(ctx context.Context, key string, data []byte) error
	GetFile(ctx context.Context, key string) ([]byte, error)
	DeleteFile(ctx context.Context, key string) error
}

// StorageManager owns the database connection and hands out the typed stores.
type StorageManager interface {
	FormStorage() FormStorage
	SubmissionStorage() SubmissionStorage
	FileStorage() FileStorage
	Close() error
}
