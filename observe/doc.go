// Package observe provides observability primitives for cache operations.
//
// It is a pure instrumentation library: no cache semantics, no transport,
// no I/O beyond exporter setup. Stores wire Instruments in to report
// spans, metrics, and structured logs for their operations.
package observe
