// Package merge combines cache files from the same tuning session.
//
// Caches merge when their headers are equivalent: same schema version,
// device, kernel, problem size, parameter space, and objective. The
// result carries the union of the lines. A failed line in an earlier
// input is overtaken by a later line for the same key; two measured
// lines for one key are a conflict the caller must resolve, in the same
// way a duplicate upsert is.
package merge
