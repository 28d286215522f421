package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileStore keeps each document as a JSON file under a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a file-backed store rooted at dir.
// If dir is empty, defaults to "./data"
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		dir = "./data"
	}

	// Ensure directory exists
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: mkdir: %w", err)
	}

	return &FileStore{dir: dir}, nil
}

// Name returns the backend name.
func (s *FileStore) Name() string { return "file" }

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

// Ping checks the data directory is still reachable.
func (s *FileStore) Ping(ctx context.Context) error {
	info, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("store: %s is not a directory", s.dir)
	}
	return nil
}

// Path returns the file path backing the named document.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.dir, name+".json")
}

// Load reads the named document from disk.
func (s *FileStore) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(s.Path(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: read %s: %w", name, err)
	}
	return data, nil
}

// Save writes each document to a temp file and renames it into place, in order.
func (s *FileStore) Save(ctx context.Context, docs ...Document) error {
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.writeFile(doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *FileStore) writeFile(doc Document) error {
	tmp, err := os.CreateTemp(s.dir, doc.Name+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: create temp: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(doc.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("store: write %s: %w", doc.Name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("store: sync %s: %w", doc.Name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: close %s: %w", doc.Name, err)
	}
	if err := os.Rename(tmp.Name(), s.Path(doc.Name)); err != nil {
		return fmt.Errorf("store: rename %s: %w", doc.Name, err)
	}
	return nil
}
