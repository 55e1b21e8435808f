package capture

import (
	"fmt"
	"os"
	"path/filepath"
)

// Storage holds the transient PNG handed to the OCR backend
type Storage interface {
	// Save writes data under name and returns the full path
	Save(name string, data []byte) (string, error)

	// Get reads the file stored under name
	Get(name string) ([]byte, error)

	// Delete removes the file stored under name
	Delete(name string) error
}

// LocalStorage is a Storage backed by one directory
type LocalStorage struct {
	dir string
}

// NewLocalStorage creates dir if needed and stores files directly inside it
func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}

	return &LocalStorage{dir: dir}, nil
}

// Save writes a file, overwriting any previous content
func (l *LocalStorage) Save(name string, data []byte) (string, error) {
	path := filepath.Join(l.dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}
	return path, nil
}

// Get reads a file back
func (l *LocalStorage) Get(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}
	return data, nil
}

func (l *LocalStorage) Delete(name string) error {
	if err := os.Remove(filepath.Join(l.dir, name)); err != nil {
		return fmt.Errorf("deleting file: %w", err)
	}
	return nil
}
