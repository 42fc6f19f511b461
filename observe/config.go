package observe

import "fmt"

// Config assembles the telemetry configuration for one process. The
// zero value disables every subsystem; NewObserver then hands out
// no-op primitives that are still safe to call.
type Config struct {
	ServiceName string // reported as service.name on every signal (required)
	Version     string // reported as service.version
	Tracing     TracingConfig
	Metrics     MetricsConfig
	Logging     LoggingConfig
}

// TracingConfig selects the span exporter and the sampling rate.
type TracingConfig struct {
	Enabled   bool
	Exporter  string  // one of ValidTracingExporters
	SamplePct float64 // fraction of operations to sample, in [MinSamplePct, MaxSamplePct]
}

// MetricsConfig selects the metrics exporter.
type MetricsConfig struct {
	Enabled  bool
	Exporter string // one of ValidMetricsExporters
}

// LoggingConfig selects the level of the structured logger.
type LoggingConfig struct {
	Enabled bool
	Level   string // one of ValidLogLevels
}

// Bounds for TracingConfig.SamplePct.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)

// ValidTracingExporters lists the accepted tracing exporter names.
// The empty string is accepted and means no exporter.
var ValidTracingExporters = []string{"otlp", "jaeger", "stdout", "none", ""}

// ValidMetricsExporters lists the accepted metrics exporter names.
var ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}

// ValidLogLevels lists the accepted log level names.
var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// Validate reports the first configuration problem found. Disabled
// subsystems are not checked.
func (c *Config) Validate() error {
	if c.ServiceName == "" {
		return ErrMissingServiceName
	}

	if c.Tracing.Enabled {
		if !oneOf(c.Tracing.Exporter, ValidTracingExporters) {
			return fmt.Errorf("%w: %q", ErrInvalidTracingExporter, c.Tracing.Exporter)
		}
		if c.Tracing.SamplePct < MinSamplePct || c.Tracing.SamplePct > MaxSamplePct {
			return fmt.Errorf("%w, got: %f", ErrInvalidSamplePct, c.Tracing.SamplePct)
		}
	}

	if c.Metrics.Enabled && !oneOf(c.Metrics.Exporter, ValidMetricsExporters) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricsExporter, c.Metrics.Exporter)
	}

	if c.Logging.Enabled && !oneOf(c.Logging.Level, ValidLogLevels) {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

func oneOf(s string, valid []string) bool {
	for _, v := range valid {
		if s == v {
			return true
		}
	}
	return false
}
