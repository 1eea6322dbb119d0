package cache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/book-expert/broadcast-service/internal/core"
)

// File and directory permissions.
const (
	filePermissions = 0o600
	dirPermissions  = 0o750
)

// ErrInvalidObjectName is returned for names that would escape the store directory.
var ErrInvalidObjectName = errors.New("invalid object name")

// FileStore implements core.ObjectStore on a local directory, one file per key.
// Writes go through a temporary file and a rename, so concurrent processes
// writing the same key never leave a torn file behind.
type FileStore struct {
	dir string
}

// NewFileStore creates a store rooted at dir. The directory is created on the
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the root directory of the store.
func (s *FileStore) Dir() string {
	return s.dir
}

// Download reads the object stored under key.
func (s *FileStore) Download(_ context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrObjectNotFound, key)
		}

		return nil, fmt.Errorf("failed to read object '%s': %w", key, err)
	}

	return data, nil
}

// Upload writes data under key, creating the directory if needed.
func (s *FileStore) Upload(_ context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}

	err = os.MkdirAll(s.dir, dirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", s.dir, err)
	}

	return writeFileAtomic(path, data)
}

func (s *FileStore) path(key string) (string, error) {
	if key == "" || filepath.Base(key) != key || key == "." || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidObjectName, key)
	}

	return filepath.Join(s.dir, key), nil
}

func writeFileAtomic(path string, data []byte) error {
	tempFile, err := os.CreateTemp(filepath.Dir(path), ".upload-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", path, err)
	}

	tempName := tempFile.Name()

	_, writeErr := tempFile.Write(data)
	closeErr := tempFile.Close()

	if writeErr == nil {
		writeErr = closeErr
	}

	if writeErr == nil {
		writeErr = os.Chmod(tempName, filePermissions)
	}

	if writeErr == nil {
		writeErr = os.Rename(tempName, path)
	}

	if writeErr != nil {
		_ = os.Remove(tempName)

		return fmt.Errorf("failed to write %s: %w", path, writeErr)
	}

	return nil
}
