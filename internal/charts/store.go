package charts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Store persists downloaded charts under slash-separated keys such as
// "FACT/APP.ILS_RWY_01.pdf".
type Store interface {
	Exists(ctx context.Context, key string) (bool, error)
	Put(ctx context.Context, key string, data []byte) error
}

// FileStore keeps charts in a local directory.
type FileStore struct {
	Dir string
}

// NewFileStore returns a FileStore rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.Dir, filepath.FromSlash(key))
}

// Exists reports whether key has been written.
func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
}

// Put writes data to key, creating parent directories.
func (s *FileStore) Put(_ context.Context, key string, data []byte) error {
	p := s.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", key, err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil { //nolint:gosec // charts are public documents
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
