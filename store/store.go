package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonwraymond/ktcache/keycodec"
	"github.com/jonwraymond/ktcache/observe"
	"github.com/jonwraymond/ktcache/schema"
)

// Store owns one cache document: it inserts lines under upsert semantics,
// answers membership queries for resumption, and persists the document
// atomically. Create one with New, Load, or Read; the zero value is not
// usable.
//
// Contract:
//   - Concurrency: safe for concurrent use within one process. Mutations
//     and Persist exclude each other; reads run concurrently.
//   - Ownership: one Store per on-disk destination. Concurrent writers to
//     the same file from different processes are outside the contract and
//     must be serialized externally.
//   - Errors: mutation and persist failures leave the in-memory document
//     and any prior on-disk file unmodified.
type Store struct {
	mu           sync.RWMutex
	doc          *schema.Document
	path         string
	issues       schema.ValidationErrors
	readOnly     bool
	skipValidate bool
	ins          *observe.Instruments
	meta         observe.StoreMeta
}

// New creates a store holding an empty cache document for the given
// header. The header's parameter space must validate.
func New(h Header, opts ...Option) (*Store, error) {
	if err := h.Validate(); err != nil {
		return nil, err
	}
	s := newStore(opts...)
	s.doc = h.document().Clone()
	s.meta = observe.StoreMeta{Device: h.DeviceName, Kernel: h.KernelName}
	return s, nil
}

// newStore builds a bare store with options applied.
func newStore(opts ...Option) *Store {
	s := &Store{ins: observe.NoopInstruments()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Document returns a deep copy of the current document. The copy is
// detached: later mutations of the store do not show through.
func (s *Store) Document() *schema.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Header returns a deep copy of the document's header metadata.
func (s *Store) Header() Header {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return headerOf(s.doc)
}

// Path returns the file the store last loaded from or persisted to.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}

// Len returns the number of cache lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Lines.Len()
}

// Has reports whether a configuration key has been evaluated. Failed
// lines count: a resumed session must not re-run a configuration that is
// known to fail.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Lines.Has(key)
}

// Get returns a copy of the record stored under a configuration key.
func (s *Store) Get(key string) (*schema.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.doc.Lines.Get(key)
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Keys returns the configuration keys in insertion order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Lines.Keys()
}

// Issues returns the field-level violations collected while loading the
// document. Loading aborts only on structural failures; everything else
// is reported here so no violation is dropped.
func (s *Store) Issues() schema.ValidationErrors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.issues == nil {
		return nil
	}
	out := make(schema.ValidationErrors, len(s.issues))
	copy(out, s.issues)
	return out
}

// Upsert stores a record under a configuration key. An absent key
// inserts. A key holding a failed record is replaced, so a successful
// retry overwrites the failure. A key holding a measured record is
// rejected with a DuplicateEntryError unless WithOverwrite is given.
//
// The record is copied; tune-parameter values decoded from the key are
// inlined into the copy when the caller did not inline them, and a zero
// timestamp is stamped with the current time.
func (s *Store) Upsert(key string, rec *schema.Record, opts ...UpsertOption) error {
	start := time.Now()
	s.mu.Lock()
	err := s.upsertLocked(key, rec, opts...)
	n := s.doc.Lines.Len()
	meta := s.meta
	s.mu.Unlock()

	ctx := context.Background()
	s.ins.RecordOp(ctx, meta, "upsert", time.Since(start), err)
	if err == nil {
		s.ins.RecordLines(ctx, meta, n)
	}
	return err
}

// UpsertConfig encodes the configuration values into a canonical key and
// upserts the record under it.
func (s *Store) UpsertConfig(values []schema.Value, rec *schema.Record, opts ...UpsertOption) error {
	return s.Upsert(keycodec.Encode(values), rec, opts...)
}

// upsertLocked holds the write lock for the whole check-then-insert
// sequence, so concurrent upserts of the same key cannot interleave.
func (s *Store) upsertLocked(key string, rec *schema.Record, opts ...UpsertOption) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if rec == nil {
		return ErrNilRecord
	}
	var o upsertOptions
	for _, opt := range opts {
		opt(&o)
	}

	if !s.skipValidate {
		if errs := ValidateEntry(s.doc, key, rec); len(errs) > 0 {
			return errs
		}
	}
	values, err := keycodec.Decode(key, len(s.doc.TuneParamsKeys))
	if err != nil {
		return err
	}

	line := rec.Clone()
	if line.Timestamp.IsZero() {
		line.Timestamp = schema.Now()
	}
	for i, name := range s.doc.TuneParamsKeys {
		if _, ok := line.Extra[name]; !ok {
			line.SetExtra(name, values[i].JSON())
		}
	}
	line.OrderExtras(s.doc.TuneParamsKeys...)

	if existing, ok := s.doc.Lines.Get(key); ok {
		if !existing.Time.IsFailed() && !o.overwrite {
			return &DuplicateEntryError{Key: key}
		}
	}
	s.doc.Lines.Set(key, line)
	return nil
}

// Delete removes a cache line, reporting whether it was present. It is a
// maintenance verb; a tuning session never removes lines.
func (s *Store) Delete(key string) (bool, error) {
	start := time.Now()
	s.mu.Lock()
	var removed bool
	var err error
	if s.readOnly {
		err = ErrReadOnly
	} else {
		removed = s.doc.Lines.Delete(key)
	}
	n := s.doc.Lines.Len()
	meta := s.meta
	s.mu.Unlock()

	ctx := context.Background()
	s.ins.RecordOp(ctx, meta, "delete", time.Since(start), err)
	if err == nil && removed {
		s.ins.RecordLines(ctx, meta, n)
	}
	return removed, err
}

// storeMeta returns the telemetry identity of the store.
func (s *Store) storeMeta() observe.StoreMeta {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meta
}

// ValidateEntry checks one line against a document before it is stored:
// the key must decode to the document's arity, the record's result
// fields must be valid, every decoded value must be among its
// parameter's candidates, and a parameter the record already inlines
// must agree with the key. Violations are collected; nil means valid.
func ValidateEntry(doc *schema.Document, key string, rec *schema.Record) schema.ValidationErrors {
	path := linePath(key)
	values, err := keycodec.Decode(key, len(doc.TuneParamsKeys))
	if err != nil {
		return schema.ValidationErrors{keyIssue(path, len(doc.TuneParamsKeys), err)}
	}
	errs := schema.ValidateRecord(path, rec)
	for i, name := range doc.TuneParamsKeys {
		v := values[i]
		if candidates, ok := doc.TuneParams[name]; ok && !inCandidates(candidates, v) {
			errs = append(errs, schema.ValidationError{
				Path: path + "." + name,
				Kind: schema.InvalidEnumValue,
				Msg:  fmt.Sprintf("value %s is not among the candidate values", v.Canonical()),
			})
		}
		raw, ok := rec.Extra[name]
		if !ok {
			continue
		}
		inline, err := schema.ValueOf(raw)
		if err != nil || !inline.Equal(v) {
			errs = append(errs, schema.ValidationError{
				Path: path + "." + name,
				Kind: schema.TypeMismatch,
				Msg:  "inlined value disagrees with the configuration key",
			})
		}
	}
	return errs
}

// validateKeys runs the key-layer checks over every line of a loaded
// document: each key must decode to the document's arity and agree with
// the parameter values inlined in its line. Candidate membership and
// inline presence are covered by schema.ValidateDocument.
func validateKeys(doc *schema.Document) schema.ValidationErrors {
	var errs schema.ValidationErrors
	arity := len(doc.TuneParamsKeys)
	for key, rec := range doc.Lines.All() {
		path := linePath(key)
		values, err := keycodec.Decode(key, arity)
		if err != nil {
			errs = append(errs, keyIssue(path, arity, err))
			continue
		}
		for i, name := range doc.TuneParamsKeys {
			raw, ok := rec.Extra[name]
			if !ok {
				continue
			}
			inline, err := schema.ValueOf(raw)
			if err != nil {
				continue
			}
			if !inline.Equal(values[i]) {
				errs = append(errs, schema.ValidationError{
					Path: path + "." + name,
					Kind: schema.TypeMismatch,
					Msg:  "inlined value disagrees with the configuration key",
				})
			}
		}
	}
	return errs
}

// keyIssue maps a key decode failure onto a validation error.
func keyIssue(path string, arity int, err error) schema.ValidationError {
	if errors.Is(err, keycodec.ErrArity) {
		return schema.ValidationError{
			Path: path,
			Kind: schema.KeyArityMismatch,
			Msg:  fmt.Sprintf("key must encode %d values", arity),
		}
	}
	return schema.ValidationError{
		Path: path,
		Kind: schema.TypeMismatch,
		Msg:  "configuration key is malformed",
	}
}

func inCandidates(candidates []schema.Value, v schema.Value) bool {
	for _, c := range candidates {
		if c.Equal(v) {
			return true
		}
	}
	return false
}

// linePath renders the path of one cache line for validation errors.
func linePath(key string) string {
	return fmt.Sprintf("cache[%q]", key)
}
