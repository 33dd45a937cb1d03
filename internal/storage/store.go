// Package storage persists generated PDF artifacts.
package storage

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Store is the persistence sink for fetched PDFs. Writes are best-effort
// and idempotent at the file level: callers skip paths that already exist.
type Store interface {
	Exists(path string) bool
	Write(path string, data []byte) error
}

// DiskStore writes files under a base directory.
type DiskStore struct {
	base string
}

// NewDiskStore builds a store rooted at base.
func NewDiskStore(base string) *DiskStore {
	return &DiskStore{base: base}
}

func (s *DiskStore) abs(path string) string {
	return filepath.Join(s.base, path)
}

// Exists reports whether path is already present.
func (s *DiskStore) Exists(path string) bool {
	_, err := os.Stat(s.abs(path))
	return err == nil
}

// Write persists data at path, creating parent directories as needed.
func (s *DiskStore) Write(path string, data []byte) error {
	target := s.abs(path)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WritePDF validates data as a PDF and persists it, skipping paths that
// already exist. Corrupt bytes are an error rather than a silent write.
func WritePDF(s Store, path string, data []byte) error {
	if s.Exists(path) {
		return nil
	}
	if err := api.Validate(bytes.NewReader(data), nil); err != nil {
		return fmt.Errorf("fetched PDF failed validation: %w", err)
	}
	return s.Write(path, data)
}
