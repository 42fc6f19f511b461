package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

// StoreMeta identifies the cache a telemetry event belongs to.
type StoreMeta struct {
	Device string // device_name of the cache (required)
	Kernel string // kernel_name of the cache (required)
	Path   string // file path, when the store is bound to one (optional)
}

// CacheID returns the fully qualified cache identifier.
// Format: <device>/<kernel>
func (m StoreMeta) CacheID() string {
	return m.Device + "/" + m.Kernel
}

// Validate checks that the required metadata fields are set.
func (m StoreMeta) Validate() error {
	if m.Device == "" {
		return ErrMissingDevice
	}
	if m.Kernel == "" {
		return ErrMissingKernel
	}
	return nil
}

// SpanName returns the deterministic span name for a cache operation.
// Format: cache.op.<op>
func SpanName(op string) string {
	return "cache.op." + op
}

// Tracer wraps OpenTelemetry tracing with cache-operation span management.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: StartOp must honor cancellation/deadlines and return ctx.Err() when canceled.
// - Errors: EndOp must be best-effort and must not panic.
type Tracer interface {
	// StartOp starts a new span for a cache operation.
	StartOp(ctx context.Context, meta StoreMeta, op string) (context.Context, trace.Span)

	// EndOp ends the span, recording any error.
	EndOp(span trace.Span, err error)
}

// tracerImpl is the concrete implementation of Tracer.
type tracerImpl struct {
	tracer trace.Tracer
}

// newTracer creates a new Tracer wrapping the given OpenTelemetry tracer.
func newTracer(t trace.Tracer) Tracer {
	return &tracerImpl{tracer: t}
}

// StartOp starts a new span with cache metadata as attributes.
func (t *tracerImpl) StartOp(ctx context.Context, meta StoreMeta, op string) (context.Context, trace.Span) {
	attrs := []attribute.KeyValue{
		attribute.String("cache.id", meta.CacheID()),
		attribute.String("cache.device", meta.Device),
		attribute.String("cache.kernel", meta.Kernel),
		attribute.String("cache.op", op),
		attribute.Bool("cache.error", false), // Updated in EndOp if error
	}
	if meta.Path != "" {
		attrs = append(attrs, attribute.String("cache.path", meta.Path))
	}

	ctx, span := t.tracer.Start(ctx, SpanName(op),
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindInternal),
	)

	return ctx, span
}

// EndOp ends the span and records the error status if present.
func (t *tracerImpl) EndOp(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("cache.error", true))
		span.RecordError(err)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// noopTracer is a tracer that does nothing.
type noopTracer struct {
	noop trace.Tracer
}

// newNoopTracer creates a no-op tracer.
func newNoopTracer() Tracer {
	return &noopTracer{
		noop: tracenoop.NewTracerProvider().Tracer("noop"),
	}
}

func (t *noopTracer) StartOp(ctx context.Context, meta StoreMeta, op string) (context.Context, trace.Span) {
	return t.noop.Start(ctx, SpanName(op))
}

func (t *noopTracer) EndOp(span trace.Span, err error) {
	span.End()
}
