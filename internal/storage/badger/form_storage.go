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

// FormStorage implements the FormStorage interface for Badger
type FormStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFormStorage creates a new FormStorage instance
func NewFormStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FormStorage {
	return &FormStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FormStorage) SaveForm(ctx context.Context, form *models.Form) error {
	if form.ID == "" {
		return fmt.Errorf("form ID is required")
	}

	now := time.Now()
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	form.UpdatedAt = now

	if err := s.db.Store().Upsert(form.ID, form); err != nil {
		return fmt.Errorf("failed to save form: %w", err)
	}
	return nil
}

func (s *FormStorage) GetForm(ctx context.Context, id string) (*models.Form, error) {
	var form models.Form
	if err := s.db.Store().Get(id, &form); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("form not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get form: %w", err)
	}
	return &form, nil
}

func (s *FormStorage) ListForms(ctx context.Context, userID string) ([]*models.Form, error) {
	var forms []models.Form
	query := &badgerhold.Query{}
	if userID != "" {
		query = badgerhold.Where("UserID").Eq(userID)
	}
	if err := s.db.Store().Find(&forms, query); err != nil {
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	out := make([]*models.Form, len(forms))
	for i := range forms {
		out[i] = &forms[i]
	}
	return out, nil
}

func (s *FormStorage) DeleteForm(ctx context.Context, id string) error {
	if err := s.db.Store().Delete(id, &models.Form{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete form: %w", err)
	}
	return nil
}
