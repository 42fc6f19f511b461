package store

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonwraymond/ktcache/schema"
)

func TestPersist_RoundTrip(t *testing.T) {
	s, err := New(testHeader())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Upsert("512", measuredRecord(3.3)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert("128", failedRecord(schema.InvalidConfig)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Upsert("256", measuredRecord(2.1)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cache.json")
	if err := s.Persist(context.Background(), path); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}
	if s.Path() != path {
		t.Errorf("Path() = %q, want %q after Persist", s.Path(), path)
	}

	loaded, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if issues := loaded.Issues(); issues != nil {
		t.Fatalf("persisted cache does not validate: %v", issues)
	}
	if !loaded.Document().Equal(s.Document()) {
		t.Error("loaded document differs from the persisted one")
	}

	// Insertion order survives the round trip.
	keys := loaded.Keys()
	want := []string{"512", "128", "256"}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Keys()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestPersist_Overwrites(t *testing.T) {
	s, err := New(testHeader())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Upsert("128", measuredRecord(1.5)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "cache.json")
	if err := s.Persist(context.Background(), path); err != nil {
		t.Fatalf("first Persist failed: %v", err)
	}

	if err := s.Upsert("256", measuredRecord(2.0)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if err := s.Persist(context.Background(), path); err != nil {
		t.Fatalf("second Persist failed: %v", err)
	}

	loaded, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Len() != 2 {
		t.Errorf("Len() = %d, want 2 after checkpoint", loaded.Len())
	}
}

func TestPersist_LeavesNoTempFiles(t *testing.T) {
	s, err := New(testHeader())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	dir := t.TempDir()
	if err := s.Persist(context.Background(), filepath.Join(dir, "cache.json")); err != nil {
		t.Fatalf("Persist failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "cache.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("directory contents = %v, want only cache.json", names)
	}
}

func TestPersist_RenameFailureKeepsState(t *testing.T) {
	s, err := New(testHeader())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Upsert("128", measuredRecord(1.5)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	// Renaming over an existing directory fails after the temp file was
	// written, exercising the cleanup path.
	dir := t.TempDir()
	target := filepath.Join(dir, "taken")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	if err := s.Persist(context.Background(), target); err == nil {
		t.Fatal("expected Persist over a directory to fail")
	}
	if s.Path() != "" {
		t.Errorf("failed Persist rebound the store to %q", s.Path())
	}
	if s.Len() != 1 {
		t.Errorf("failed Persist changed the in-memory document")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("temp file not cleaned up: %v", names)
	}
}

func TestPersistTo_Stream(t *testing.T) {
	s, err := New(testHeader())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := s.Upsert("128", measuredRecord(1.5)); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	var buf bytes.Buffer
	if err := s.PersistTo(context.Background(), &buf); err != nil {
		t.Fatalf("PersistTo failed: %v", err)
	}

	var doc schema.Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("stream is not valid JSON: %v", err)
	}
	if !doc.Equal(s.Document()) {
		t.Error("streamed document differs from the store's")
	}
	// Streaming does not bind the store to a path.
	if s.Path() != "" {
		t.Errorf("Path() = %q, want empty after PersistTo", s.Path())
	}
}

func TestPersist_ReadOnlyStoreAllowed(t *testing.T) {
	path := writeCacheFile(t, sampleCache)
	s, err := Load(context.Background(), path, WithReadOnly())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Read-only guards the lines, not persistence: re-homing a cache
	// file is a read-side operation.
	out := filepath.Join(t.TempDir(), "copy.json")
	if err := s.Persist(context.Background(), out); err != nil {
		t.Fatalf("Persist of read-only store failed: %v", err)
	}

	copied, err := Load(context.Background(), out)
	if err != nil {
		t.Fatalf("Load of copy failed: %v", err)
	}
	if !copied.Document().Equal(s.Document()) {
		t.Error("copy differs from the source")
	}
}
