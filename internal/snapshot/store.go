// Package snapshot keeps printed star charts on disk, one rendered file plus a
// JSON metadata sidecar per print.
package snapshot

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned for an unknown print ID.
var ErrNotFound = errors.New("print not found")

// Meta describes one stored print.
type Meta struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Style     string    `json:"style"`
	Source    string    `json:"source,omitempty"`
	ImageURL  string    `json:"image_url"`
	Format    string    `json:"format"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages print files under one directory.
type Store struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("snapshot store: dir is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("snapshot store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir returns the backing directory.
func (s *Store) Dir() string { return s.dir }

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil || strings.ToLower(id) != id || len(id) != 36 {
		return fmt.Errorf("invalid print id: %q", id)
	}
	return nil
}

// Save assigns an ID and creation time to meta, then writes the rendered data
// and its sidecar.
func (s *Store) Save(meta Meta, data []byte) (Meta, error) {
	meta.Format = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(meta.Format)), ".")
	if meta.Format == "" {
		return Meta{}, errors.New("snapshot store: format is required")
	}
	meta.ID = uuid.NewString()
	meta.SizeBytes = len(data)
	meta.CreatedAt = s.now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.filePath(meta.ID, meta.Format)
	jsonPath := s.metaPath(meta.ID)

	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return Meta{}, fmt.Errorf("snapshot store: write file: %w", err)
	}

	encoded, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = os.Remove(filePath)
		return Meta{}, fmt.Errorf("snapshot store: marshal meta: %w", err)
	}
	if err := os.WriteFile(jsonPath, encoded, 0o644); err != nil {
		_ = os.Remove(filePath)
		return Meta{}, fmt.Errorf("snapshot store: write meta: %w", err)
	}

	slog.Debug("print saved", "id", meta.ID, "date", meta.Date, "style", meta.Style, "size_bytes", meta.SizeBytes)
	return meta, nil
}

// Get reads print metadata by ID.
func (s *Store) Get(id string) (Meta, error) {
	if err := validateID(id); err != nil {
		return Meta{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMetaLocked(id)
}

func (s *Store) readMetaLocked(id string) (Meta, error) {
	data, err := os.ReadFile(s.metaPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Meta{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return Meta{}, fmt.Errorf("snapshot store: read meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("snapshot store: unmarshal meta: %w", err)
	}
	return meta, nil
}

// List returns all prints, newest first. Unreadable sidecars are skipped.
func (s *Store) List() ([]Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("snapshot store: glob: %w", err)
	}

	metas := make([]Meta, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("skipping unreadable print meta", "path", path, "error", err)
			continue
		}
		var meta Meta
		if err := json.Unmarshal(data, &meta); err != nil {
			slog.Debug("skipping corrupt print meta", "path", path, "error", err)
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})
	return metas, nil
}

// ReadFile returns the rendered bytes and their format.
func (s *Store) ReadFile(id string) ([]byte, string, error) {
	if err := validateID(id); err != nil {
		return nil, "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, err := s.readMetaLocked(id)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(s.filePath(id, meta.Format))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("%w: %s file missing", ErrNotFound, id)
		}
		return nil, "", fmt.Errorf("snapshot store: read file: %w", err)
	}
	return data, meta.Format, nil
}

// Path returns where the rendered file for meta lives.
func (s *Store) Path(meta Meta) string {
	return s.filePath(meta.ID, meta.Format)
}

// Delete removes the rendered file and its sidecar. A missing rendered file is
// logged and tolerated.
func (s *Store) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.readMetaLocked(id)
	if err != nil {
		return err
	}
	if err := os.Remove(s.filePath(id, meta.Format)); err != nil {
		slog.Debug("print file cleanup failed", "id", id, "error", err)
	}
	if err := os.Remove(s.metaPath(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("snapshot store: remove meta: %w", err)
	}
	return nil
}

func (s *Store) filePath(id, format string) string {
	return filepath.Join(s.dir, id+"."+format)
}

func (s *Store) metaPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}
