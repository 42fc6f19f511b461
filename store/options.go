package store

import (
	"github.com/jonwraymond/ktcache/observe"
)

// Option configures a Store at construction time.
type Option func(*Store)

// WithInstruments wires telemetry into the store. Operations are traced,
// metered, and logged through the given instruments. A nil value keeps
// the no-op default.
func WithInstruments(ins *observe.Instruments) Option {
	return func(s *Store) {
		if ins != nil {
			s.ins = ins
		}
	}
}

// WithReadOnly rejects every mutation with ErrReadOnly. Loads and reads
// work as usual.
func WithReadOnly() Option {
	return func(s *Store) {
		s.readOnly = true
	}
}

// WithoutSchemaCheck skips semantic validation on load and upsert.
// Structural failures (malformed JSON, missing required top-level fields,
// version mismatch) are still rejected.
func WithoutSchemaCheck() Option {
	return func(s *Store) {
		s.skipValidate = true
	}
}

// UpsertOption configures a single Upsert call.
type UpsertOption func(*upsertOptions)

type upsertOptions struct {
	overwrite bool
}

// WithOverwrite lets the upsert replace an existing measured record.
// Without it, such a replacement fails with a DuplicateEntryError.
func WithOverwrite() UpsertOption {
	return func(o *upsertOptions) {
		o.overwrite = true
	}
}
