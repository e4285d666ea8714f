package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"

	"telaviva/models"
)

// Store reads and writes per-category item blobs. The catalog service only
// reads at startup to warm its in-memory state; the write path is owned by
// the persistence collaborator that snapshots loaded categories.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a blob store rooted at dir on the given filesystem.
func NewStore(fsys afero.Fs, dir string) *Store {
	return &Store{fs: fsys, dir: dir}
}

// Get loads the persisted items for a category. The second return is false
// when no blob exists; a corrupt blob is treated the same way.
func (s *Store) Get(categoryID string) ([]models.MediaItem, bool, error) {
	if categoryID == "" {
		return nil, false, errors.New("empty category id")
	}
	path := filepath.Join(s.dir, categoryID+".json")
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, false, nil
	}
	var items []models.MediaItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, nil
	}
	return items, true, nil
}

// Set persists the items for a category atomically.
func (s *Store) Set(categoryID string, items []models.MediaItem) error {
	if categoryID == "" {
		return errors.New("empty category id")
	}
	if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal category %s: %w", categoryID, err)
	}
	path := filepath.Join(s.dir, categoryID+".json")
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		s.fs.Remove(tmp)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
