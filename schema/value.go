package schema

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the scalar type held by a Value.
type ValueKind int

const (
	// KindInt is a signed integer value.
	KindInt ValueKind = iota

	// KindFloat is a floating-point value.
	KindFloat

	// KindBool is a boolean value.
	KindBool

	// KindString is a string value.
	KindString
)

// String returns the kind name.
func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a single tune-parameter value. Exactly four scalar types are
// supported: integers, floats, booleans, and strings. The zero value is
// the integer 0.
//
// Integers and floats are distinct kinds: 1 and 1.0 encode differently
// and compare unequal.
type Value struct {
	kind ValueKind
	i    int64
	f    float64
	b    bool
	s    string
}

// IntValue returns an integer Value.
func IntValue(i int64) Value { return Value{kind: KindInt, i: i} }

// FloatValue returns a float Value. The float must be finite.
func FloatValue(f float64) Value { return Value{kind: KindFloat, f: f} }

// BoolValue returns a boolean Value.
func BoolValue(b bool) Value { return Value{kind: KindBool, b: b} }

// StringValue returns a string Value.
func StringValue(s string) Value { return Value{kind: KindString, s: s} }

// Kind returns the scalar type of the value.
func (v Value) Kind() ValueKind { return v.kind }

// Int returns the integer payload, if the value is an integer.
func (v Value) Int() (int64, bool) { return v.i, v.kind == KindInt }

// Float returns the float payload, if the value is a float.
func (v Value) Float() (float64, bool) { return v.f, v.kind == KindFloat }

// Bool returns the boolean payload, if the value is a boolean.
func (v Value) Bool() (bool, bool) { return v.b, v.kind == KindBool }

// Str returns the string payload, if the value is a string.
func (v Value) Str() (string, bool) { return v.s, v.kind == KindString }

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBool:
		return v.b == o.b
	default:
		return v.s == o.s
	}
}

// Canonical returns the text form used inside configuration keys.
// Integers render in decimal, floats always carry a decimal point or
// exponent (1.0 rather than 1), booleans render lowercase, and strings
// render verbatim.
func (v Value) Canonical() string {
	switch v.kind {
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return formatFloat(v.f)
	case KindBool:
		return strconv.FormatBool(v.b)
	default:
		return v.s
	}
}

// String returns the canonical text form.
func (v Value) String() string { return v.Canonical() }

// Numeric returns the value as a float64 when it is an integer or float.
func (v Value) Numeric() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// JSON returns the value in a form encoding/json renders losslessly:
// json.Number for numerics, bool for booleans, string for strings.
func (v Value) JSON() any {
	switch v.kind {
	case KindInt, KindFloat:
		return json.Number(v.Canonical())
	case KindBool:
		return v.b
	default:
		return v.s
	}
}

// MarshalJSON encodes the value as a bare JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInt, KindFloat:
		return []byte(v.Canonical()), nil
	case KindBool:
		return []byte(strconv.FormatBool(v.b)), nil
	default:
		return json.Marshal(v.s)
	}
}

// UnmarshalJSON decodes a JSON scalar into a value. Numbers without a
// decimal point or exponent become integers, numbers with one become
// floats.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ValueOf(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ValueOf converts a decoded JSON scalar or native Go scalar into a Value.
// Supported inputs are json.Number, bool, string, and the common Go
// numeric types. Floats must be finite.
func ValueOf(x any) (Value, error) {
	switch t := x.(type) {
	case Value:
		return t, nil
	case json.Number:
		if i, err := t.Int64(); err == nil && !numberLooksFloat(t.String()) {
			return IntValue(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q", ErrBadValue, t.String())
		}
		return floatOrError(f)
	case bool:
		return BoolValue(t), nil
	case string:
		return StringValue(t), nil
	case int:
		return IntValue(int64(t)), nil
	case int32:
		return IntValue(int64(t)), nil
	case int64:
		return IntValue(t), nil
	case uint:
		return IntValue(int64(t)), nil
	case uint32:
		return IntValue(int64(t)), nil
	case uint64:
		return IntValue(int64(t)), nil
	case float32:
		return floatOrError(float64(t))
	case float64:
		// Integral float64s map to integers. Callers that need 1.0 to stay
		// a float must pass json.Number or FloatValue.
		if t == math.Trunc(t) && !math.IsInf(t, 0) && math.Abs(t) < 1e15 {
			return IntValue(int64(t)), nil
		}
		return floatOrError(t)
	default:
		return Value{}, fmt.Errorf("%w: %T", ErrBadValue, x)
	}
}

// Values converts a list of Go scalars, failing on the first unsupported one.
func Values(xs ...any) ([]Value, error) {
	out := make([]Value, 0, len(xs))
	for i, x := range xs {
		v, err := ValueOf(x)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// MustValues is Values that panics on error, for tests and literals.
func MustValues(xs ...any) []Value {
	vs, err := Values(xs...)
	if err != nil {
		panic(err)
	}
	return vs
}

// floatOrError rejects non-finite floats.
func floatOrError(f float64) (Value, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}, fmt.Errorf("%w: non-finite float", ErrBadValue)
	}
	return FloatValue(f), nil
}

// numberLooksFloat reports whether a numeric literal carries a decimal
// point or exponent, the property that distinguishes 1.0 from 1.
func numberLooksFloat(s string) bool {
	return strings.ContainsAny(s, ".eE")
}

// formatFloat renders a float with a guaranteed decimal point or exponent
// so it round-trips as a float rather than collapsing to an integer.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
