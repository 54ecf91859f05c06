package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/ternarybob/formforge/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// SubmissionStorage implements the SubmissionStorage interface for Badger.
// Submissions are never deleted; archival flips the status.
type SubmissionStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewSubmissionStorage creates a new SubmissionStorage instance
func NewSubmissionStorage(db *BadgerDB, logger arbor.ILogger) interfaces.SubmissionStorage {
	return &SubmissionStorage{
		db:     db,
		logger: logger,
	}
}

func (s *SubmissionStorage) SaveSubmission(ctx context.Context, sub *models.FormSubmission) error {
	if sub.ID == "" {
		return fmt.Errorf("submission ID is required")
	}
	if sub.FormID == "" {
		return fmt.Errorf("submission form ID is required")
	}

	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = time.Now()
	}
	if sub.Status == "" {
		sub.Status = models.SubmissionStatusPending
	}

	if err := s.db.Store().Upsert(sub.ID, sub); err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}
	return nil
}

func (s *SubmissionStorage) GetSubmission(ctx context.Context, id string) (*models.FormSubmission, error) {
	var sub models.FormSubmission
	if err := s.db.Store().Get(id, &sub); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("submission not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return &sub, nil
}

func (s *SubmissionStorage) ListSubmissions(ctx context.Context, formID string) ([]*models.FormSubmission, error) {
	var subs []models.FormSubmission
	if err := s.db.Store().Find(&subs, badgerhold.Where("FormID").Eq(formID)); err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	out := make([]*models.FormSubmission, len(subs))
	for i := range subs {
		out[i] = &subs[i]
	}
	return out, nil
}
