package observe

import "errors"

// Configuration errors returned by Config.Validate.
var (
	// ErrMissingServiceName indicates Config.ServiceName is empty.
	ErrMissingServiceName = errors.New("observe: service name is required")

	// ErrInvalidSamplePct indicates Tracing.SamplePct is outside [MinSamplePct, MaxSamplePct].
	ErrInvalidSamplePct = errors.New("observe: sample percentage must be between 0.0 and 1.0")

	// ErrInvalidTracingExporter indicates a tracing exporter name outside ValidTracingExporters.
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")

	// ErrInvalidMetricsExporter indicates a metrics exporter name outside ValidMetricsExporters.
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")

	// ErrInvalidLogLevel indicates a log level name outside ValidLogLevels.
	ErrInvalidLogLevel = errors.New("observe: invalid log level")
)

// Store metadata errors returned by StoreMeta.Validate.
var (
	// ErrMissingDevice indicates StoreMeta.Device is empty.
	ErrMissingDevice = errors.New("observe: device name is required")

	// ErrMissingKernel indicates StoreMeta.Kernel is empty.
	ErrMissingKernel = errors.New("observe: kernel name is required")
)

// ErrNilObserver indicates a nil Observer was handed to InstrumentsFromObserver.
var ErrNilObserver = errors.New("observe: observer is nil")
