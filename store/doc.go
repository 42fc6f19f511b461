// Package store owns the lifecycle of one kernel-tuning cache document:
// create, load, upsert, and atomic persist.
//
// A Store is the single writer for its document. A tuning harness creates
// one per session (or loads one to resume), submits a record per
// evaluated configuration through Upsert, checkpoints with Persist, and
// uses Has to skip configurations already evaluated. Failed
// configurations stay in the cache: a resumed session must not re-run a
// configuration that is known to fail, and an upsert may replace a failed
// line with a measured one after a successful retry.
//
// Loading is deliberately more tolerant than creating. Structural
// failures (malformed JSON beyond repair, missing required top-level
// fields, an unsupported schema version) abort the load with a typed
// error; every field-level violation is collected and exposed through
// Issues instead, so a long tuning run is never discarded over one bad
// line.
package store
