package chartcache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	s := Open(filepath.Join(t.TempDir(), "nope", "cache.toml"))
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.Get("anything"); ok {
		t.Fatalf("Get on empty store reported a hit")
	}
}

func TestSet_PersistsAndReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.toml")
	key := "starchart:v1:1990-04-20:36.6002:-121.8947:default"

	s := Open(path)
	if err := s.Set(key, "https://x/img.png"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := s.Set("starchart:v1:1990-04-20:36.6002:-121.8947:no-labels", "https://x/nl.png"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	reopened := Open(path)
	got, ok := reopened.Get(key)
	if !ok || got != "https://x/img.png" {
		t.Fatalf("Get(%q) = %q, %v after reopen", key, got, ok)
	}
	entries := reopened.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(Entries()) = %d, want 2", len(entries))
	}
	if entries[0].Key != key {
		t.Fatalf("Entries() not sorted: %+v", entries)
	}
}

func TestSet_OverwritesExistingKey(t *testing.T) {
	s := Open("")
	_ = s.Set("k", "a")
	_ = s.Set("k", "b")
	if got, _ := s.Get("k"); got != "b" {
		t.Fatalf("Get(k) = %q, want b", got)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", s.Len())
	}
}

func TestOpen_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.toml")
	if err := os.WriteFile(path, []byte("entries = [[["), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s := Open(path)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if got, ok := Open(path).Get("k"); !ok || got != "v" {
		t.Fatalf("corrupt file was not rewritten: %q %v", got, ok)
	}
}

func TestSet_WriteFailureKeepsMemoryEntry(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	s := Open(filepath.Join(blocker, "cache.toml"))
	if err := s.Set("k", "v"); err == nil {
		t.Fatalf("Set under a regular file = nil error")
	}
	if got, ok := s.Get("k"); !ok || got != "v" {
		t.Fatalf("Get(k) = %q, %v; want in-memory entry", got, ok)
	}
}
