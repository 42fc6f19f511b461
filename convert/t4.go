package convert

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/jonwraymond/ktcache/keycodec"
	"github.com/jonwraymond/ktcache/schema"
)

// t4Version is the version of the T4 results format this package emits.
const t4Version = "1.0.0"

// ToT4 exports a cache document to the T4 auto-tuning interchange
// format: a metadata array describing the tuning setup and one results
// entry per cache line, in line order. The output is validated against
// the embedded T4 results schema before it is returned.
//
// Every line's key must decode against the document's parameters; clean
// up a cache that loaded with issues before exporting it.
func ToT4(d *schema.Document) (map[string]any, error) {
	results := make([]any, 0, d.Lines.Len())
	for key, rec := range d.Lines.All() {
		result, err := t4Result(d, key, rec)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}

	t4 := map[string]any{
		"schema_version": t4Version,
		"metadata": []any{
			map[string]any{
				"device_name":  d.DeviceName,
				"kernel_name":  d.KernelName,
				"problem_size": d.ProblemSize,
				"objective":    d.Objective,
			},
		},
		"results": results,
	}

	// Round through JSON so validation sees canonical values for every
	// field, ProblemSize included.
	out, err := rawT4(t4)
	if err != nil {
		return nil, err
	}
	sch, err := t4Schema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(out); err != nil {
		return nil, fmt.Errorf("convert: T4 output does not satisfy its schema: %w", err)
	}
	return out, nil
}

// t4Result maps one cache line onto a T4 results entry.
func t4Result(d *schema.Document, key string, rec *schema.Record) (map[string]any, error) {
	values, err := keycodec.Decode(key, len(d.TuneParamsKeys))
	if err != nil {
		return nil, fmt.Errorf("convert: line %q: %w", key, err)
	}
	configuration := make(map[string]any, len(values))
	for i, name := range d.TuneParamsKeys {
		configuration[name] = values[i].JSON()
	}

	times := map[string]any{
		"compilation_time":      rec.CompileTime,
		"framework_time":        rec.FrameworkTime,
		"search_algorithm_time": rec.StrategyTime,
		"validation_time":       rec.VerificationTime,
		"benchmark_time":        rec.BenchmarkTime,
	}
	if rec.Times != nil {
		times["runtimes"] = rec.Times
	}

	result := map[string]any{
		"timestamp":     rec.Timestamp.String(),
		"configuration": configuration,
		"times":         times,
		"objectives":    []any{d.Objective},
	}

	if runtime, ok := rec.Time.Value(); ok {
		times["runtime"] = runtime
		result["invalidity"] = "correct"
		result["correctness"] = 1
		measurements := []any{
			map[string]any{"name": "time", "value": runtime, "unit": "ms"},
		}
		if rec.GFLOPs != nil {
			measurements = append(measurements, map[string]any{
				"name":  "GFLOP/s",
				"value": *rec.GFLOPs,
				"unit":  "GFLOP/s",
			})
		}
		result["measurements"] = measurements
	} else {
		reason, _ := rec.Time.Reason()
		result["invalidity"] = invalidityOf(reason)
		result["correctness"] = 0
		result["measurements"] = []any{}
	}
	return result, nil
}

// invalidityOf maps a failure sentinel onto the T4 invalidity category.
func invalidityOf(reason schema.FailureReason) string {
	switch reason {
	case schema.InvalidConfig:
		return "constraints"
	case schema.CompilationFailedConfig:
		return "compile"
	default:
		return "runtime"
	}
}

// rawT4 re-decodes the built structure so every value is in the shape
// the schema validator understands.
func rawT4(t4 map[string]any) (map[string]any, error) {
	data, err := json.Marshal(t4)
	if err != nil {
		return nil, fmt.Errorf("convert: encode T4 document: %w", err)
	}
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("convert: decode T4 document: %w", err)
	}
	out, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("convert: T4 document is %T, want an object", v)
	}
	return out, nil
}
