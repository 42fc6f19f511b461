package store

import (
	"errors"
	"fmt"
)

// Sentinel errors for store operations. The struct errors below match
// these through errors.Is, so callers can branch on the failure kind
// without unpacking the details.
var (
	ErrReadOnly        = errors.New("store: store is read-only")
	ErrNilRecord       = errors.New("store: record is nil")
	ErrNoTuneParams    = errors.New("store: header declares no tune parameters")
	ErrVersionMismatch = errors.New("store: schema version mismatch")
	ErrCorruptCache    = errors.New("store: corrupt cache file")
	ErrDuplicateEntry  = errors.New("store: duplicate cache line")
)

// VersionMismatchError reports a cache file declaring a schema version
// this engine does not support. It is recoverable: a caller may discard
// the file and start a fresh cache.
type VersionMismatchError struct {
	// Got is the version the file declares.
	Got string

	// Want is the version this engine supports.
	Want string
}

// Error returns the error message.
func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("store: schema version mismatch: got %q, want %q", e.Got, e.Want)
}

// Is reports whether this error matches the target.
func (e *VersionMismatchError) Is(target error) bool {
	return target == ErrVersionMismatch
}

// CorruptCacheError reports a cache file that cannot be loaded at all:
// malformed JSON, or a required top-level field missing. It is fatal for
// that file.
type CorruptCacheError struct {
	// Path is the file that failed to load; empty when reading a stream.
	Path string

	// Err is the underlying cause.
	Err error
}

// Error returns the error message.
func (e *CorruptCacheError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("store: corrupt cache: %v", e.Err)
	}
	return fmt.Sprintf("store: corrupt cache %s: %v", e.Path, e.Err)
}

// Unwrap returns the cause for errors.Is/As support.
func (e *CorruptCacheError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target.
func (e *CorruptCacheError) Is(target error) bool {
	return target == ErrCorruptCache
}

// DuplicateEntryError reports an upsert that would replace a measured
// record without an explicit overwrite. It is recoverable: the caller
// may retry with WithOverwrite or keep the existing line.
type DuplicateEntryError struct {
	// Key is the configuration key that collided.
	Key string
}

// Error returns the error message.
func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("store: key %q already holds a measured record", e.Key)
}

// Is reports whether this error matches the target.
func (e *DuplicateEntryError) Is(target error) bool {
	return target == ErrDuplicateEntry
}
