package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/interfaces"
	"github.com/timshannon/badgerhold/v4"
)

// storedFile wraps raw document bytes for badgerhold storage.
type storedFile struct {
	Key       string `badgerhold:"key"`
	Data      []byte
	CreatedAt time.Time
}

// FileStorage implements the FileStorage interface for Badger. Originals and
// completed PDFs live in the same store as the records that reference them,
// keyed by opaque file keys.
type FileStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewFileStorage creates a new FileStorage instance
func NewFileStorage(db *BadgerDB, logger arbor.ILogger) interfaces.FileStorage {
	return &FileStorage{
		db:     db,
		logger: logger,
	}
}

func (s *FileStorage) PutFile(ctx context.Context, key string, data []byte) error {
	if key == "" {
		return fmt.Errorf("file key is required")
	}

	file := &storedFile{Key: key, Data: data, CreatedAt: time.Now()}
	if err := s.db.Store().Upsert(key, file); err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}

	s.logger.Debug().Str("key", key).Int("bytes", len(data)).Msg("File stored")
	return nil
}

func (s *FileStorage) GetFile(ctx context.Context, key string) ([]byte, error) {
	var file storedFile
	if err := s.db.Store().Get(key, &file); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("file not found: %s", key)
		}
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file.Data, nil
}

func (s *FileStorage) DeleteFile(ctx context.Context, key string) error {
	if err := s.db.Store().Delete(key, &storedFile{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
