package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Persist writes the document to path atomically: the bytes land in a
// temporary file in the destination directory, are synced, and replace
// the destination in one rename. A failure at any point leaves the prior
// file readable and the in-memory document unchanged. On success the
// store is bound to path.
func (s *Store) Persist(ctx context.Context, path string) error {
	meta := s.storeMeta()
	meta.Path = path
	err := s.ins.Observe(ctx, meta, "persist", func(ctx context.Context) error {
		s.mu.RLock()
		defer s.mu.RUnlock()
		data, err := json.Marshal(s.doc)
		if err != nil {
			return fmt.Errorf("store: encode cache: %w", err)
		}
		return writeFileAtomic(path, data)
	})
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.path = path
	s.meta.Path = path
	s.mu.Unlock()
	return nil
}

// PersistTo writes the document to a stream. The stream offers no
// atomicity; Persist is the checkpointing path.
func (s *Store) PersistTo(ctx context.Context, w io.Writer) error {
	return s.ins.Observe(ctx, s.storeMeta(), "persist", func(ctx context.Context) error {
		s.mu.RLock()
		defer s.mu.RUnlock()
		data, err := json.Marshal(s.doc)
		if err != nil {
			return fmt.Errorf("store: encode cache: %w", err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("store: write cache: %w", err)
		}
		return nil
	})
}

// writeFileAtomic commits data to path through a temp file and a rename.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("store: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return fmt.Errorf("store: write temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("store: sync temp file: %w", err)
	}
	// CreateTemp uses 0600; cache files are plain data.
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("store: chmod temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("store: close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("store: rename temp file: %w", err)
	}
	return nil
}
