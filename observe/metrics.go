package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records cache-operation metrics.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must honor cancellation/deadlines and return quickly.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordOp records one cache operation with duration and error status.
	RecordOp(ctx context.Context, meta StoreMeta, op string, duration time.Duration, err error)

	// RecordLines records the current number of cache lines in a store.
	RecordLines(ctx context.Context, meta StoreMeta, n int)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	linesGauge   metric.Int64Gauge
}

// newMetrics creates a new Metrics instance with the given meter.
func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	totalCount, err := meter.Int64Counter(
		"cache.ops.total",
		metric.WithDescription("Total number of cache operations"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"cache.ops.errors",
		metric.WithDescription("Total number of failed cache operations"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"cache.op.duration_ms",
		metric.WithDescription("Cache operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	linesGauge, err := meter.Int64Gauge(
		"cache.lines",
		metric.WithDescription("Number of cache lines in the store"),
		metric.WithUnit("{line}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		linesGauge:   linesGauge,
	}, nil
}

// RecordOp records metrics for one cache operation.
func (m *metricsImpl) RecordOp(ctx context.Context, meta StoreMeta, op string, duration time.Duration, err error) {
	opt := metric.WithAttributes(append(m.attrs(meta), attribute.String("cache.op", op))...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	m.durationHist.Record(ctx, float64(duration.Microseconds())/1000.0, opt)
}

// RecordLines records the current line count of a store.
func (m *metricsImpl) RecordLines(ctx context.Context, meta StoreMeta, n int) {
	m.linesGauge.Record(ctx, int64(n), metric.WithAttributes(m.attrs(meta)...))
}

func (m *metricsImpl) attrs(meta StoreMeta) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("cache.id", meta.CacheID()),
		attribute.String("cache.device", meta.Device),
		attribute.String("cache.kernel", meta.Kernel),
	}
	if meta.Path != "" {
		attrs = append(attrs, attribute.String("cache.path", meta.Path))
	}
	return attrs
}

// noopMetrics is a metrics implementation that does nothing.
type noopMetrics struct{}

func (m *noopMetrics) RecordOp(ctx context.Context, meta StoreMeta, op string, duration time.Duration, err error) {
}

func (m *noopMetrics) RecordLines(ctx context.Context, meta StoreMeta, n int) {
}
