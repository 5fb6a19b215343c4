package storage

import (
	"context"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type LocalStorage struct {
	path string
}

func NewLocalStorage(path string) *LocalStorage {
	return &LocalStorage{path: path}
}

func (s *LocalStorage) Location() string {
	return s.path
}

// Write replaces the output file with data. The bytes land in a temp file next
// to the destination first, so a failed write never leaves a partial device.
func (s *LocalStorage) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lockFilePath := fmt.Sprintf("%s.lock", s.path)
	fileLock := flock.New(lockFilePath)

	locked, err := fileLock.TryLock()
	if err != nil {
		return fmt.Errorf("unable to lock <%s>: %w", s.path, err)
	}
	if !locked {
		return fmt.Errorf("another process is already writing <%s>", s.path)
	}
	defer os.Remove(lockFilePath)
	defer fileLock.Unlock()

	tmpPath := fmt.Sprintf("%s.%s", s.path, uuid.New().String()[:6])
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write <%s>: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move <%s> into place: %w", s.path, err)
	}

	log.Debug().Msgf("wrote %d bytes to <%s>", len(data), s.path)
	return nil
}
