// Package memory is the in-process document store. With a file path it also
// acts as a single-file JSON store.
package memory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"spesa/internal/core"
	"spesa/internal/storage"
)

type Store struct {
	mu   sync.Mutex
	data []byte
	path string
}

// New returns an empty store that lives only in memory.
func New() *Store {
	return &Store{}
}

// NewFromFile returns a store seeded from path, if it exists, and written
// back to it on every save.
func NewFromFile(path string) (*Store, error) {
	s := &Store{path: path}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", path, err)
	default:
		if _, err := storage.DecodeDocument(data); err != nil {
			return nil, fmt.Errorf("seed %s: %w", path, err)
		}
		s.data = data
	}
	return s, nil
}

// Load returns a fresh copy of the stored ledger, or nil when empty.
func (s *Store) Load(_ context.Context) (*core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, nil
	}
	return storage.DecodeDocument(s.data)
}

// Save replaces the stored document.
func (s *Store) Save(_ context.Context, l *core.Ledger) error {
	data, err := storage.EncodeDocument(l)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.path != "" {
		if err := writeFileAtomic(s.path, data); err != nil {
			return err
		}
	}
	s.data = data
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
