package store

import (
	"errors"
	"fmt"
	"os"
	"path"

	"github.com/pastalink/pastalink/internal/boot"
)

// ContentStore keeps paste bodies out of the record store, one blob per
// paste under the data directory.
type ContentStore struct {
	dir string
}

func NewContentStore(config *boot.Config) (*ContentStore, error) {
	dir := config.PasteDataDirectory()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating paste data directory: %w", err)
	}
	return &ContentStore{dir}, nil
}

func (s *ContentStore) path(pasteID string) string {
	return path.Join(s.dir, pasteID+".txt")
}

func (s *ContentStore) Write(pasteID string, content string) error {
	if err := os.WriteFile(s.path(pasteID), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing paste content: %w", err)
	}
	return nil
}

func (s *ContentStore) Read(pasteID string) (string, error) {
	data, err := os.ReadFile(s.path(pasteID))
	if err != nil {
		return "", fmt.Errorf("reading paste content: %w", err)
	}
	return string(data), nil
}

// Remove deletes the blob; a missing blob is not an error.
func (s *ContentStore) Remove(pasteID string) error {
	err := os.Remove(s.path(pasteID))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing paste content: %w", err)
	}
	return nil
}
