package schema

import (
	"fmt"
	"math"
	"sort"
)

// ReservedFields are the result-field names of a cache line. A tune
// parameter may not use any of them, since parameter values are inlined
// into the same object.
var ReservedFields = []string{
	"time",
	"times",
	"compile_time",
	"verification_time",
	"benchmark_time",
	"strategy_time",
	"framework_time",
	"timestamp",
	"GFLOP/s",
}

// IsReservedField reports whether name is a result field of a cache line.
func IsReservedField(name string) bool {
	for _, f := range ReservedFields {
		if name == f {
			return true
		}
	}
	return false
}

// ValidateDocument checks a document against the schema semantics:
// supported version, well-formed parameter space, and every line holding
// a valid record with its declared parameters inlined and drawn from the
// candidate sets. All violations are collected; nil means valid.
//
// Checks that require decoding configuration keys (arity, key/inline
// agreement) are layered above this package, next to the key codec.
func ValidateDocument(d *Document) ValidationErrors {
	var errs ValidationErrors
	for _, f := range d.MissingFields() {
		errs = append(errs, ValidationError{
			Path: f,
			Kind: MissingField,
			Msg:  "required field is missing",
		})
	}
	errs = append(errs, d.issues...)
	if d.SchemaVersion != Version {
		errs = append(errs, ValidationError{
			Path: "schema_version",
			Kind: VersionMismatch,
			Msg:  fmt.Sprintf("got %q, supported version is %q", d.SchemaVersion, Version),
		})
	}
	errs = append(errs, validateParamSpace(d)...)
	for key, rec := range d.Lines.All() {
		path := linePath(key)
		errs = append(errs, ValidateRecord(path, rec)...)
		errs = append(errs, validateLineParams(path, rec, d)...)
	}
	return errs
}

// validateParamSpace checks tune_params_keys and tune_params against each
// other.
func validateParamSpace(d *Document) ValidationErrors {
	var errs ValidationErrors
	declared := make(map[string]bool, len(d.TuneParamsKeys))
	for _, name := range d.TuneParamsKeys {
		if IsReservedField(name) {
			errs = append(errs, ValidationError{
				Path: "tune_params_keys",
				Kind: InvalidEnumValue,
				Msg:  fmt.Sprintf("%q is a reserved result field", name),
			})
		}
		if declared[name] {
			errs = append(errs, ValidationError{
				Path: "tune_params_keys",
				Kind: TypeMismatch,
				Msg:  fmt.Sprintf("duplicate parameter name %q", name),
			})
		}
		declared[name] = true
		if d.TuneParams != nil {
			if _, ok := d.TuneParams[name]; ok {
				continue
			}
		}
		errs = append(errs, ValidationError{
			Path: "tune_params." + name,
			Kind: MissingField,
			Msg:  "declared in tune_params_keys but has no candidate values",
		})
	}
	var undeclared []string
	for name := range d.TuneParams {
		if !declared[name] {
			undeclared = append(undeclared, name)
		}
	}
	sort.Strings(undeclared)
	for _, name := range undeclared {
		errs = append(errs, ValidationError{
			Path: "tune_params." + name,
			Kind: TypeMismatch,
			Msg:  "not declared in tune_params_keys",
		})
	}
	return errs
}

// validateLineParams checks that a line inlines every declared parameter
// and that each inlined value is among the candidates.
func validateLineParams(path string, rec *Record, d *Document) ValidationErrors {
	var errs ValidationErrors
	for _, name := range d.TuneParamsKeys {
		raw, ok := rec.Extra[name]
		if !ok {
			errs = append(errs, ValidationError{
				Path: path + "." + name,
				Kind: MissingField,
				Msg:  "tune parameter is not inlined in the line",
			})
			continue
		}
		v, err := ValueOf(raw)
		if err != nil {
			errs = append(errs, ValidationError{
				Path: path + "." + name,
				Kind: TypeMismatch,
				Msg:  "tune parameter must be a scalar",
			})
			continue
		}
		candidates, ok := d.TuneParams[name]
		if !ok {
			continue
		}
		if !containsValue(candidates, v) {
			errs = append(errs, ValidationError{
				Path: path + "." + name,
				Kind: InvalidEnumValue,
				Msg:  fmt.Sprintf("value %s is not among the candidate values", v.Canonical()),
			})
		}
	}
	return errs
}

// ValidateRecord checks one record's result fields: required fields must
// be present (checkable only on unmarshaled records), the failure reason
// must be a known sentinel, and every timing must be finite and
// non-negative. path prefixes each violation, e.g. `cache["0,0"]`.
func ValidateRecord(path string, r *Record) ValidationErrors {
	var errs ValidationErrors
	for _, e := range r.issues {
		errs = append(errs, ValidationError{
			Path: joinPath(path, e.Path),
			Kind: e.Kind,
			Msg:  e.Msg,
		})
	}
	if r.seen != nil {
		for _, f := range requiredRecordFields {
			if !r.seen[f] {
				errs = append(errs, ValidationError{
					Path: joinPath(path, f),
					Kind: MissingField,
					Msg:  "required field is missing",
				})
			}
		}
	}
	if reason, ok := r.Time.Reason(); ok && !reason.Valid() {
		errs = append(errs, ValidationError{
			Path: joinPath(path, "time"),
			Kind: InvalidEnumValue,
			Msg:  fmt.Sprintf("unknown failure reason %q", string(reason)),
		})
	}
	if v, ok := r.Time.Value(); ok && badTiming(v) {
		errs = append(errs, timingError(path, "time"))
	}
	for i, t := range r.Times {
		if badTiming(t) {
			errs = append(errs, timingError(path, fmt.Sprintf("times[%d]", i)))
		}
	}
	timings := []struct {
		name string
		v    float64
	}{
		{"compile_time", r.CompileTime},
		{"verification_time", r.VerificationTime},
		{"benchmark_time", r.BenchmarkTime},
		{"strategy_time", r.StrategyTime},
		{"framework_time", r.FrameworkTime},
	}
	for _, t := range timings {
		if badTiming(t.v) {
			errs = append(errs, timingError(path, t.name))
		}
	}
	if r.GFLOPs != nil && (math.IsNaN(*r.GFLOPs) || math.IsInf(*r.GFLOPs, 0)) {
		errs = append(errs, ValidationError{
			Path: joinPath(path, "GFLOP/s"),
			Kind: TypeMismatch,
			Msg:  "must be finite",
		})
	}
	return errs
}

func containsValue(candidates []Value, v Value) bool {
	for _, c := range candidates {
		if c.Equal(v) {
			return true
		}
	}
	return false
}

func badTiming(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}

func timingError(path, field string) ValidationError {
	return ValidationError{
		Path: joinPath(path, field),
		Kind: TypeMismatch,
		Msg:  "must be finite and non-negative",
	}
}

func joinPath(prefix, field string) string {
	if prefix == "" {
		return field
	}
	return prefix + "." + field
}

// linePath renders the path of one cache line.
func linePath(key string) string {
	return fmt.Sprintf("cache[%q]", key)
}
