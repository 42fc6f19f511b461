package observe_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonwraymond/ktcache/observe"
)

func ExampleNewObserver() {
	ctx := context.Background()
	obs, err := observe.NewObserver(ctx, observe.Config{
		ServiceName: "ktcache",
		Version:     "1.0.0",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	defer func() { _ = obs.Shutdown(ctx) }()

	fmt.Println("telemetry ready")
	// Output:
	// telemetry ready
}

func ExampleNewObserver_validation() {
	_, err := observe.NewObserver(context.Background(), observe.Config{})
	if errors.Is(err, observe.ErrMissingServiceName) {
		fmt.Println("rejected: no service name")
	}
	// Output:
	// rejected: no service name
}

func ExampleConfig_Validate() {
	cfg := observe.Config{
		ServiceName: "ktcache",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "jaeger", SamplePct: 0.25},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
		Logging:     observe.LoggingConfig{Enabled: true, Level: "debug"},
	}
	fmt.Println(cfg.Validate())

	cfg.Tracing.SamplePct = 2.0
	err := cfg.Validate()
	fmt.Println(errors.Is(err, observe.ErrInvalidSamplePct))
	// Output:
	// <nil>
	// true
}

func ExampleSpanName() {
	fmt.Println(observe.SpanName("upsert"))
	fmt.Println(observe.SpanName("load"))
	// Output:
	// cache.op.upsert
	// cache.op.load
}

func ExampleStoreMeta_CacheID() {
	meta := observe.StoreMeta{Device: "NVIDIA RTX A4000", Kernel: "matmul"}
	fmt.Println(meta.CacheID())
	// Output:
	// NVIDIA RTX A4000/matmul
}

func ExampleStoreMeta_Validate() {
	fmt.Println(observe.StoreMeta{Device: "NVIDIA RTX A4000", Kernel: "matmul"}.Validate())

	err := observe.StoreMeta{Kernel: "matmul"}.Validate()
	fmt.Println(errors.Is(err, observe.ErrMissingDevice))
	// Output:
	// <nil>
	// true
}

func ExampleNewLoggerWithWriter() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	logger.Info(context.Background(), "cache loaded", observe.Field{Key: "lines", Value: 128})

	var entry map[string]any
	_ = json.Unmarshal(buf.Bytes(), &entry)
	fmt.Println(entry["msg"], entry["lines"])
	// Output:
	// cache loaded 128
}

func ExampleLogger_WithStore() {
	var buf bytes.Buffer
	logger := observe.NewLoggerWithWriter("info", &buf)

	meta := observe.StoreMeta{
		Device: "NVIDIA RTX A4000",
		Kernel: "convolution",
		Path:   "convolution_cache.json",
	}
	logger.WithStore(meta).Info(context.Background(), "cache opened")

	var entry map[string]any
	_ = json.Unmarshal(buf.Bytes(), &entry)
	fmt.Println(entry["cache.id"])
	fmt.Println(entry["cache.path"])
	// Output:
	// NVIDIA RTX A4000/convolution
	// convolution_cache.json
}

func ExampleInstruments_Observe() {
	ctx := context.Background()
	obs, _ := observe.NewObserver(ctx, observe.Config{
		ServiceName: "ktcache",
		Tracing:     observe.TracingConfig{Enabled: true, Exporter: "none"},
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "none"},
	})
	defer func() { _ = obs.Shutdown(ctx) }()

	ins, _ := observe.InstrumentsFromObserver(obs)

	meta := observe.StoreMeta{
		Device: "NVIDIA RTX A4000",
		Kernel: "convolution",
		Path:   "convolution_cache.json",
	}

	// The persist runs under a span and is metered and logged.
	err := ins.Observe(ctx, meta, "persist", func(ctx context.Context) error {
		return nil
	})
	if err == nil {
		fmt.Println("persisted", meta.CacheID())
	}
	// Output:
	// persisted NVIDIA RTX A4000/convolution
}

func ExampleParseLogLevel() {
	fmt.Println(observe.ParseLogLevel("warn"))
	fmt.Println(observe.ParseLogLevel("verbose"))
	// Output:
	// warn
	// info
}
