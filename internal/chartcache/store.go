// Package chartcache persists generated chart image URLs keyed by chart
// parameters. Entries never expire and are never evicted.
package chartcache

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Entry is one cached chart.
type Entry struct {
	Key      string
	ImageURL string
}

type fileFormat struct {
	Entries map[string]string `toml:"entries"`
}

// Store is a write-through TOML-backed key/value cache. The zero path keeps
// entries in memory only.
type Store struct {
	path    string
	mu      sync.RWMutex
	entries map[string]string
}

// Open loads the cache at path. A missing or unreadable file yields an empty
// store; the next Set rewrites it.
func Open(path string) *Store {
	s := &Store{path: strings.TrimSpace(path), entries: make(map[string]string)}
	if s.path == "" {
		return s
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("chart cache unreadable, starting empty", "path", s.path, "error", err)
		}
		return s
	}
	var doc fileFormat
	if err := toml.Unmarshal(data, &doc); err != nil {
		slog.Warn("chart cache corrupt, starting empty", "path", s.path, "error", err)
		return s
	}
	for k, v := range doc.Entries {
		if strings.TrimSpace(v) != "" {
			s.entries[k] = v
		}
	}
	return s
}

// Path returns the backing file, or "" for a memory-only store.
func (s *Store) Path() string { return s.path }

// Get returns the image URL cached under key.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	return v, ok
}

// Set stores imageURL under key and persists the whole cache. The in-memory
// entry is kept even if the write fails.
func (s *Store) Set(key, imageURL string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = imageURL
	return s.flushLocked()
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Entries returns a snapshot sorted by key.
func (s *Store) Entries() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.entries))
	for k, v := range s.entries {
		out = append(out, Entry{Key: k, ImageURL: v})
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func (s *Store) flushLocked() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	data, err := toml.Marshal(fileFormat{Entries: s.entries})
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
