package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Version is the cache schema version this engine reads and writes.
const Version = "1.0.0"

// requiredDocumentFields are the top-level fields every cache document
// must carry, in canonical serialization order.
var requiredDocumentFields = []string{
	"schema_version",
	"device_name",
	"kernel_name",
	"problem_size",
	"tune_params_keys",
	"tune_params",
	"objective",
	"cache",
}

// Document is a complete cache file: the immutable header plus the cache
// lines. Unknown top-level fields are ignored on read and not written
// back.
type Document struct {
	// SchemaVersion is the declared schema version of the file.
	SchemaVersion string

	// DeviceName names the device the kernel was tuned on.
	DeviceName string

	// KernelName names the tuned kernel.
	KernelName string

	// ProblemSize is the problem size the kernel was tuned for.
	ProblemSize ProblemSize

	// TuneParamsKeys lists the tune-parameter names in key-encoding order.
	TuneParamsKeys []string

	// TuneParams maps each parameter name to its candidate values.
	TuneParams map[string][]Value

	// Objective names the metric being optimized, e.g. "time".
	Objective string

	// Lines holds the cache lines in file order.
	Lines *Lines

	// seen marks top-level fields witnessed during unmarshal; nil for
	// documents built in process.
	seen map[string]bool

	// issues collects coercion problems found during unmarshal, surfaced
	// by ValidateDocument.
	issues ValidationErrors
}

// MissingFields returns the required top-level fields absent from an
// unmarshaled document, in canonical order. It returns nil for documents
// built in process.
func (d *Document) MissingFields() []string {
	if d.seen == nil {
		return nil
	}
	var missing []string
	for _, f := range requiredDocumentFields {
		if !d.seen[f] {
			missing = append(missing, f)
		}
	}
	return missing
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := *d
	if d.TuneParamsKeys != nil {
		out.TuneParamsKeys = make([]string, len(d.TuneParamsKeys))
		copy(out.TuneParamsKeys, d.TuneParamsKeys)
	}
	if d.TuneParams != nil {
		out.TuneParams = make(map[string][]Value, len(d.TuneParams))
		for k, vs := range d.TuneParams {
			copied := make([]Value, len(vs))
			copy(copied, vs)
			out.TuneParams[k] = copied
		}
	}
	out.Lines = d.Lines.Clone()
	if d.seen != nil {
		out.seen = make(map[string]bool, len(d.seen))
		for k, v := range d.seen {
			out.seen[k] = v
		}
	}
	if d.issues != nil {
		out.issues = make(ValidationErrors, len(d.issues))
		copy(out.issues, d.issues)
	}
	return &out
}

// Equal reports whether two documents carry the same header and the same
// lines in the same order. Unmarshal bookkeeping is ignored.
func (d *Document) Equal(o *Document) bool {
	if d == nil || o == nil {
		return d == o
	}
	if d.SchemaVersion != o.SchemaVersion ||
		d.DeviceName != o.DeviceName ||
		d.KernelName != o.KernelName ||
		!d.ProblemSize.Equal(o.ProblemSize) ||
		d.Objective != o.Objective {
		return false
	}
	if len(d.TuneParamsKeys) != len(o.TuneParamsKeys) {
		return false
	}
	for i := range d.TuneParamsKeys {
		if d.TuneParamsKeys[i] != o.TuneParamsKeys[i] {
			return false
		}
	}
	if len(d.TuneParams) != len(o.TuneParams) {
		return false
	}
	for k, vs := range d.TuneParams {
		ovs, ok := o.TuneParams[k]
		if !ok || len(vs) != len(ovs) {
			return false
		}
		for i := range vs {
			if !vs[i].Equal(ovs[i]) {
				return false
			}
		}
	}
	dkeys, okeys := d.Lines.Keys(), o.Lines.Keys()
	if len(dkeys) != len(okeys) {
		return false
	}
	for i := range dkeys {
		if dkeys[i] != okeys[i] {
			return false
		}
		a, _ := d.Lines.Get(dkeys[i])
		b, _ := o.Lines.Get(okeys[i])
		if !a.Equal(b) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the document with its fields in canonical order and
// tune_params keyed in tune_params_keys order.
func (d *Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	field := func(name string, v any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
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
	if err := field("schema_version", d.SchemaVersion); err != nil {
		return nil, err
	}
	if err := field("device_name", d.DeviceName); err != nil {
		return nil, err
	}
	if err := field("kernel_name", d.KernelName); err != nil {
		return nil, err
	}
	if err := field("problem_size", d.ProblemSize); err != nil {
		return nil, err
	}
	keys := d.TuneParamsKeys
	if keys == nil {
		keys = []string{}
	}
	if err := field("tune_params_keys", keys); err != nil {
		return nil, err
	}
	params, err := d.marshalTuneParams()
	if err != nil {
		return nil, err
	}
	if err := field("tune_params", params); err != nil {
		return nil, err
	}
	if err := field("objective", d.Objective); err != nil {
		return nil, err
	}
	lines := d.Lines
	if lines == nil {
		lines = NewLines()
	}
	if err := field("cache", lines); err != nil {
		return nil, err
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalTuneParams renders tune_params in tune_params_keys order, then
// any undeclared parameters sorted by name.
func (d *Document) marshalTuneParams() (json.RawMessage, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	written := make(map[string]bool, len(d.TuneParams))
	write := func(name string) error {
		vs, ok := d.TuneParams[name]
		if !ok || written[name] {
			return nil
		}
		written[name] = true
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(vs)
		if err != nil {
			return fmt.Errorf("schema: tune_params[%q]: %w", name, err)
		}
		buf.Write(val)
		return nil
	}
	for _, name := range d.TuneParamsKeys {
		if err := write(name); err != nil {
			return nil, err
		}
	}
	var rest []string
	for name := range d.TuneParams {
		if !written[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	for _, name := range rest {
		if err := write(name); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a cache document, tracking which top-level fields
// were present and recording coercion problems for ValidateDocument
// instead of failing on them. Only malformed JSON is an error.
func (d *Document) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("schema: cache document must be an object, got %v", tok)
	}
	*d = Document{
		Lines: NewLines(),
		seen:  make(map[string]bool),
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("schema: document key must be a string, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		d.seen[name] = true
		d.applyField(name, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// applyField coerces one raw top-level field, recording an issue when the
// shape is wrong. Unknown fields are ignored.
func (d *Document) applyField(name string, raw json.RawMessage) {
	issue := func(msg string) {
		d.issues = append(d.issues, ValidationError{Path: name, Kind: TypeMismatch, Msg: msg})
	}
	switch name {
	case "schema_version":
		if err := json.Unmarshal(raw, &d.SchemaVersion); err != nil {
			issue("must be a string")
		}
	case "device_name":
		if err := json.Unmarshal(raw, &d.DeviceName); err != nil {
			issue("must be a string")
		}
	case "kernel_name":
		if err := json.Unmarshal(raw, &d.KernelName); err != nil {
			issue("must be a string")
		}
	case "problem_size":
		if err := d.ProblemSize.UnmarshalJSON(raw); err != nil {
			issue("must be an integer, string, or integer array")
		}
	case "tune_params_keys":
		if err := json.Unmarshal(raw, &d.TuneParamsKeys); err != nil {
			issue("must be an array of strings")
		}
	case "tune_params":
		var rawParams map[string]json.RawMessage
		if err := json.Unmarshal(raw, &rawParams); err != nil {
			issue("must be an object of candidate arrays")
			return
		}
		d.TuneParams = make(map[string][]Value, len(rawParams))
		for param, rv := range rawParams {
			var vs []Value
			if err := json.Unmarshal(rv, &vs); err != nil {
				d.issues = append(d.issues, ValidationError{
					Path: "tune_params." + param,
					Kind: TypeMismatch,
					Msg:  "candidate values must be scalars",
				})
				continue
			}
			d.TuneParams[param] = vs
		}
	case "objective":
		if err := json.Unmarshal(raw, &d.Objective); err != nil {
			issue("must be a string")
		}
	case "cache":
		if err := d.Lines.UnmarshalJSON(raw); err != nil {
			d.Lines = NewLines()
			issue("must be an object of cache lines")
		}
	}
}
