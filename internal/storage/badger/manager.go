package badger

import (
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/common"
	"github.com/ternarybob/formforge/internal/interfaces"
)

// Manager implements the StorageManager interface for Badger
type Manager struct {
	db         *BadgerDB
	form       interfaces.FormStorage
	submission interfaces.SubmissionStorage
	file       interfaces.FileStorage
	logger     arbor.ILogger
}

// NewManager creates a new Badger storage manager
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (interfaces.StorageManager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	manager := &Manager{
		db:         db,
		form:       NewFormStorage(db, logger),
		submission: NewSubmissionStorage(db, logger),
		file:       NewFileStorage(db, logger),
		logger:     logger,
	}

	logger.Info().Msg("Badger storage manager initialized")

	return manager, nil
}

// FormStorage returns the Form storage interface
func (m *Manager) FormStorage() interfaces.FormStorage {
	return m.form
}

// SubmissionStorage returns the Submission storage interface
func (m *Manager) SubmissionStorage() interfaces.SubmissionStorage {
	return m.submission
}

// FileStorage returns the File storage interface
func (m *Manager) FileStorage() interfaces.FileStorage {
	return m.file
}

// Close closes the database connection
func (m *Manager) Close() error {
	return m.db.Close()
}
