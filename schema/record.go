package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// requiredRecordFields are the fields every cache line must carry.
var requiredRecordFields = []string{
	"time",
	"compile_time",
	"verification_time",
	"benchmark_time",
	"strategy_time",
	"framework_time",
	"timestamp",
}

// Record is one cache line: the outcome of benchmarking a single
// parameter configuration. Tune-parameter values are inlined into the
// same JSON object as the result fields; they live in Extra, keyed by
// parameter name, alongside any other open fields a tuner attached.
//
// Times and GFLOPs are optional; the remaining fields are required in
// persisted documents.
type Record struct {
	// Time is the aggregate runtime in milliseconds, or a failure
	// classification.
	Time TimeValue

	// Times holds the individual benchmark repetitions, when recorded.
	Times []float64

	// CompileTime is the kernel compilation time in milliseconds.
	CompileTime float64

	// VerificationTime is the output verification time in milliseconds.
	VerificationTime float64

	// BenchmarkTime is the total benchmarking time in milliseconds.
	BenchmarkTime float64

	// StrategyTime is the time spent inside the search strategy in
	// milliseconds.
	StrategyTime float64

	// FrameworkTime is the tuner overhead in milliseconds.
	FrameworkTime float64

	// Timestamp is when the line was recorded. Upserting a record with a
	// zero Timestamp stamps the current time.
	Timestamp Timestamp

	// GFLOPs is the achieved throughput in GFLOP/s, when recorded.
	GFLOPs *float64

	// Extra holds the inlined tune-parameter values and any open fields.
	// Prefer SetExtra over direct assignment so serialization order is
	// tracked.
	Extra map[string]any

	// extraOrder is the serialization order of Extra keys.
	extraOrder []string

	// seen marks fields witnessed during unmarshal; nil for records built
	// in process.
	seen map[string]bool

	// issues collects coercion problems found during unmarshal, surfaced
	// by ValidateRecord.
	issues ValidationErrors
}

// SetExtra sets an open field, appending it to the serialization order if
// new.
func (r *Record) SetExtra(name string, v any) {
	if r.Extra == nil {
		r.Extra = make(map[string]any)
	}
	if _, ok := r.Extra[name]; !ok {
		r.extraOrder = append(r.extraOrder, name)
	}
	r.Extra[name] = v
}

// OrderExtras moves the given keys to the front of the serialization
// order, in the given order. Remaining keys keep their relative order.
// Keys not present in Extra are ignored.
func (r *Record) OrderExtras(keys ...string) {
	if len(r.Extra) == 0 {
		r.extraOrder = nil
		return
	}
	next := make([]string, 0, len(r.Extra))
	placed := make(map[string]bool, len(r.Extra))
	for _, k := range keys {
		if _, ok := r.Extra[k]; ok && !placed[k] {
			next = append(next, k)
			placed[k] = true
		}
	}
	for _, k := range r.extraKeys() {
		if !placed[k] {
			next = append(next, k)
			placed[k] = true
		}
	}
	r.extraOrder = next
}

// extraKeys returns the serialization order of Extra: tracked keys first,
// then any untracked keys sorted by name.
func (r *Record) extraKeys() []string {
	if len(r.Extra) == 0 {
		return nil
	}
	out := make([]string, 0, len(r.Extra))
	listed := make(map[string]bool, len(r.Extra))
	for _, k := range r.extraOrder {
		if _, ok := r.Extra[k]; ok && !listed[k] {
			out = append(out, k)
			listed[k] = true
		}
	}
	var rest []string
	for k := range r.Extra {
		if !listed[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	out := *r
	if r.Times != nil {
		out.Times = make([]float64, len(r.Times))
		copy(out.Times, r.Times)
	}
	if r.GFLOPs != nil {
		g := *r.GFLOPs
		out.GFLOPs = &g
	}
	if r.Extra != nil {
		out.Extra = make(map[string]any, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = cloneJSONValue(v)
		}
	}
	if r.extraOrder != nil {
		out.extraOrder = make([]string, len(r.extraOrder))
		copy(out.extraOrder, r.extraOrder)
	}
	if r.seen != nil {
		out.seen = make(map[string]bool, len(r.seen))
		for k, v := range r.seen {
			out.seen[k] = v
		}
	}
	if r.issues != nil {
		out.issues = make(ValidationErrors, len(r.issues))
		copy(out.issues, r.issues)
	}
	return &out
}

// Equal reports whether two records carry the same result data. Unmarshal
// bookkeeping is ignored; Extra values compare by their JSON encoding.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	if !r.Time.Equal(o.Time) ||
		r.CompileTime != o.CompileTime ||
		r.VerificationTime != o.VerificationTime ||
		r.BenchmarkTime != o.BenchmarkTime ||
		r.StrategyTime != o.StrategyTime ||
		r.FrameworkTime != o.FrameworkTime ||
		r.Timestamp.String() != o.Timestamp.String() {
		return false
	}
	if len(r.Times) != len(o.Times) {
		return false
	}
	for i := range r.Times {
		if r.Times[i] != o.Times[i] {
			return false
		}
	}
	if (r.GFLOPs == nil) != (o.GFLOPs == nil) {
		return false
	}
	if r.GFLOPs != nil && *r.GFLOPs != *o.GFLOPs {
		return false
	}
	if len(r.Extra) != len(o.Extra) {
		return false
	}
	for k, v := range r.Extra {
		ov, ok := o.Extra[k]
		if !ok || !jsonEqual(v, ov) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the line with inlined parameters first (in
// serialization order), then the result fields in their canonical order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	field := func(name string, v any) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("schema: field %q: %w", name, err)
		}
		buf.Write(val)
		return nil
	}
	for _, k := range r.extraKeys() {
		if err := field(k, r.Extra[k]); err != nil {
			return nil, err
		}
	}
	if err := field("time", r.Time); err != nil {
		return nil, err
	}
	if r.Times != nil {
		if err := field("times", r.Times); err != nil {
			return nil, err
		}
	}
	if err := field("compile_time", r.CompileTime); err != nil {
		return nil, err
	}
	if err := field("verification_time", r.VerificationTime); err != nil {
		return nil, err
	}
	if err := field("benchmark_time", r.BenchmarkTime); err != nil {
		return nil, err
	}
	if err := field("strategy_time", r.StrategyTime); err != nil {
		return nil, err
	}
	if err := field("framework_time", r.FrameworkTime); err != nil {
		return nil, err
	}
	if err := field("timestamp", r.Timestamp); err != nil {
		return nil, err
	}
	if r.GFLOPs != nil {
		if err := field("GFLOP/s", *r.GFLOPs); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a line object, keeping unknown fields in Extra in
// file order and recording coercion problems for ValidateRecord instead
// of failing on them. Only malformed JSON is an error.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("schema: cache line must be an object, got %v", tok)
	}
	*r = Record{
		seen: make(map[string]bool),
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("schema: cache line key must be a string, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		r.seen[name] = true
		r.applyField(name, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// applyField coerces one raw field into the record, recording an issue
// when the shape is wrong.
func (r *Record) applyField(name string, raw json.RawMessage) {
	issue := func(kind ErrorKind, msg string) {
		r.issues = append(r.issues, ValidationError{Path: name, Kind: kind, Msg: msg})
	}
	switch name {
	case "time":
		var tv TimeValue
		if err := tv.UnmarshalJSON(raw); err != nil {
			if errors.Is(err, ErrBadFailureReason) {
				issue(InvalidEnumValue, "time must be a number or a failure sentinel")
			} else {
				issue(TypeMismatch, "time must be a number or a failure sentinel")
			}
			return
		}
		r.Time = tv
	case "times":
		var ts []float64
		if err := json.Unmarshal(raw, &ts); err != nil {
			issue(TypeMismatch, "times must be an array of numbers")
			return
		}
		r.Times = ts
	case "compile_time":
		r.setFloat(&r.CompileTime, name, raw)
	case "verification_time":
		r.setFloat(&r.VerificationTime, name, raw)
	case "benchmark_time":
		r.setFloat(&r.BenchmarkTime, name, raw)
	case "strategy_time":
		r.setFloat(&r.StrategyTime, name, raw)
	case "framework_time":
		r.setFloat(&r.FrameworkTime, name, raw)
	case "timestamp":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			issue(TypeMismatch, "timestamp must be a string")
			return
		}
		ts, err := ParseTimestamp(s)
		if err != nil {
			issue(TypeMismatch, "timestamp has an unrecognized layout")
			// The raw string is kept so a tolerant load round-trips it.
			r.Timestamp = Timestamp{raw: s}
			return
		}
		r.Timestamp = ts
	case "GFLOP/s":
		var f float64
		if err := json.Unmarshal(raw, &f); err != nil {
			issue(TypeMismatch, "GFLOP/s must be a number")
			return
		}
		r.GFLOPs = &f
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			issue(TypeMismatch, "unreadable value")
			return
		}
		r.SetExtra(name, v)
	}
}

// setFloat coerces one required timing field.
func (r *Record) setFloat(dst *float64, name string, raw json.RawMessage) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		r.issues = append(r.issues, ValidationError{
			Path: name,
			Kind: TypeMismatch,
			Msg:  "must be a number",
		})
		return
	}
	*dst = f
}

// cloneJSONValue deep-copies a decoded JSON value.
func cloneJSONValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneJSONValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneJSONValue(e)
		}
		return out
	default:
		return v
	}
}

// jsonEqual compares two decoded JSON values by their encoding.
func jsonEqual(a, b any) bool {
	ab, err := json.Marshal(a)
	if err != nil {
		return false
	}
	bb, err := json.Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}
