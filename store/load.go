package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jonwraymond/ktcache/observe"
	"github.com/jonwraymond/ktcache/schema"
)

// Load reads a cache file into a store. Malformed JSON and missing
// required top-level fields fail with a CorruptCacheError; an unsupported
// schema version fails with a VersionMismatchError so the caller can
// start fresh instead of aborting. Field-level violations do not fail
// the load; they are collected on the store, see Issues.
//
// A file left unterminated by an appending writer (truncated cache
// object, optional trailing comma) is repaired before parsing.
func Load(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := newStore(opts...)
	err := s.ins.Observe(ctx, observe.StoreMeta{Path: path}, "load", func(ctx context.Context) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("store: read cache: %w", err)
		}
		return s.bind(data, path)
	})
	if err != nil {
		return nil, err
	}
	s.ins.RecordLines(ctx, s.storeMeta(), s.Len())
	return s, nil
}

// Read parses a cache document from a stream, with the same semantics as
// Load. The store is not bound to a file; Persist binds it later.
func Read(ctx context.Context, r io.Reader, opts ...Option) (*Store, error) {
	s := newStore(opts...)
	err := s.ins.Observe(ctx, observe.StoreMeta{}, "load", func(ctx context.Context) error {
		data, err := io.ReadAll(r)
		if err != nil {
			return fmt.Errorf("store: read cache: %w", err)
		}
		return s.bind(data, "")
	})
	if err != nil {
		return nil, err
	}
	s.ins.RecordLines(ctx, s.storeMeta(), s.Len())
	return s, nil
}

// bind parses data into the store's document. path is recorded on errors
// and on the store; it is empty when reading a stream.
func (s *Store) bind(data []byte, path string) error {
	doc := new(schema.Document)
	if err := json.Unmarshal(data, doc); err != nil {
		repaired := schema.CloseCacheJSON(data)
		if repaired == nil || json.Unmarshal(repaired, doc) != nil {
			return &CorruptCacheError{Path: path, Err: err}
		}
	}

	missing := doc.MissingFields()
	versionMissing := false
	for _, f := range missing {
		if f == "schema_version" {
			versionMissing = true
			break
		}
	}
	if !versionMissing && doc.SchemaVersion != schema.Version {
		return &VersionMismatchError{Got: doc.SchemaVersion, Want: schema.Version}
	}
	if len(missing) > 0 {
		return &CorruptCacheError{
			Path: path,
			Err:  fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")),
		}
	}

	if !s.skipValidate {
		issues := schema.ValidateDocument(doc)
		issues = append(issues, validateKeys(doc)...)
		if len(issues) > 0 {
			s.issues = issues
		}
	}

	s.doc = doc
	s.path = path
	s.meta = observe.StoreMeta{Device: doc.DeviceName, Kernel: doc.KernelName, Path: path}
	return nil
}
