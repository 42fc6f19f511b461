package observe

import (
	"context"
	"time"
)

// OpFunc is the signature of an instrumented cache operation.
type OpFunc func(ctx context.Context) error

// Instruments bundles the tracer, metrics, and logger a store uses to
// report its operations.
//
// Contract:
//   - Concurrency: all methods are safe for concurrent use.
//   - Context: Observe propagates the span context into the operation.
//   - Errors: errors from the operation are recorded and propagated unchanged.
type Instruments struct {
	tracer  Tracer
	metrics Metrics
	logger  Logger
}

// NewInstruments creates Instruments from the given components.
func NewInstruments(tracer Tracer, metrics Metrics, logger Logger) *Instruments {
	return &Instruments{
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// NoopInstruments returns Instruments that record nothing. Stores use it
// as the default until an observer is wired in.
func NoopInstruments() *Instruments {
	return NewInstruments(newNoopTracer(), &noopMetrics{}, &noopLogger{})
}

// Observe runs one cache operation under a span, recording duration
// metrics and a structured log line.
func (i *Instruments) Observe(ctx context.Context, meta StoreMeta, op string, fn OpFunc) error {
	ctx, span := i.tracer.StartOp(ctx, meta, op)

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	// End span (records error status if err != nil)
	i.tracer.EndOp(span, err)

	i.metrics.RecordOp(ctx, meta, op, duration, err)
	i.logOp(ctx, meta, op, duration, err)

	return err
}

// RecordOp records a completed operation without opening a span. Stores
// use it for in-memory mutations, where a span would only add noise.
func (i *Instruments) RecordOp(ctx context.Context, meta StoreMeta, op string, duration time.Duration, err error) {
	i.metrics.RecordOp(ctx, meta, op, duration, err)
	i.logOp(ctx, meta, op, duration, err)
}

// RecordLines records the current line count of a store.
func (i *Instruments) RecordLines(ctx context.Context, meta StoreMeta, n int) {
	i.metrics.RecordLines(ctx, meta, n)
}

func (i *Instruments) logOp(ctx context.Context, meta StoreMeta, op string, duration time.Duration, err error) {
	logger := i.logger.WithStore(meta)
	fields := []Field{
		{Key: "cache.op", Value: op},
		{Key: "duration_ms", Value: float64(duration.Microseconds()) / 1000.0},
	}

	if err != nil {
		fields = append(fields, Field{Key: "error", Value: err.Error()})
		logger.Error(ctx, "cache operation failed", fields...)
	} else {
		logger.Debug(ctx, "cache operation completed", fields...)
	}
}

// InstrumentsFromObserver creates Instruments from an Observer.
// This is a convenience function for common use cases.
func InstrumentsFromObserver(obs Observer) (*Instruments, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	tracer := newTracer(obs.Tracer())

	metrics, err := newMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	return NewInstruments(tracer, metrics, obs.Logger()), nil
}
