package keycodec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jonwraymond/ktcache/schema"
)

// Encode renders parameter values as a canonical configuration key.
// Decode(Encode(values), len(values)) returns the same values.
func Encode(values []schema.Value) string {
	if len(values) == 0 {
		return ""
	}
	var b strings.Builder
	for i, v := range values {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeJoin(renderSegment(v)))
	}
	return b.String()
}

// Decode splits a configuration key into its typed values. arity is the
// number of tune parameters; a mismatch returns ErrArity.
func Decode(key string, arity int) ([]schema.Value, error) {
	if key == "" && arity == 0 {
		return nil, nil
	}
	segments, err := splitKey(key)
	if err != nil {
		return nil, err
	}
	if len(segments) != arity {
		return nil, fmt.Errorf("%w: key %q has %d values, want %d",
			ErrArity, key, len(segments), arity)
	}
	values := make([]schema.Value, len(segments))
	for i, seg := range segments {
		v, err := parseSegment(key, seg)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ParseValue interprets a bare key segment as the most specific scalar it
// reads as: integer, then float, then boolean, falling back to string.
// Capitalized booleans written by older tuners are accepted; the
// canonical form is lowercase.
func ParseValue(token string) schema.Value {
	if i, err := strconv.ParseInt(token, 10, 64); err == nil {
		return schema.IntValue(i)
	}
	if f, err := strconv.ParseFloat(token, 64); err == nil &&
		!math.IsInf(f, 0) && !math.IsNaN(f) && looksNumeric(token) {
		return schema.FloatValue(f)
	}
	switch token {
	case "true", "True":
		return schema.BoolValue(true)
	case "false", "False":
		return schema.BoolValue(false)
	}
	return schema.StringValue(token)
}

// renderSegment produces the unescaped text of one value. String values
// that would decode as a different scalar, are empty, or start with a
// double quote are wrapped in quotes.
func renderSegment(v schema.Value) string {
	s, ok := v.Str()
	if !ok {
		return v.Canonical()
	}
	if needsQuoting(s) {
		return quoteString(s)
	}
	return s
}

func needsQuoting(s string) bool {
	if s == "" || s[0] == '"' {
		return true
	}
	return ParseValue(s).Kind() != schema.KindString
}

// quoteString wraps s in double quotes, escaping backslashes and quotes.
func quoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' || s[i] == '"' {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	b.WriteByte('"')
	return b.String()
}

// escapeJoin escapes backslashes and commas so segments can be joined
// with commas unambiguously.
func escapeJoin(seg string) string {
	if !strings.ContainsAny(seg, `\,`) {
		return seg
	}
	var b strings.Builder
	b.Grow(len(seg) + 2)
	for i := 0; i < len(seg); i++ {
		if seg[i] == '\\' || seg[i] == ',' {
			b.WriteByte('\\')
		}
		b.WriteByte(seg[i])
	}
	return b.String()
}

// splitKey splits a key on unescaped commas, resolving join-level
// escapes.
func splitKey(key string) ([]string, error) {
	var segments []string
	var b strings.Builder
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case '\\':
			if i+1 >= len(key) {
				return nil, fmt.Errorf("%w: key %q ends with an escape", ErrMalformedKey, key)
			}
			i++
			b.WriteByte(key[i])
		case ',':
			segments = append(segments, b.String())
			b.Reset()
		default:
			b.WriteByte(key[i])
		}
	}
	return append(segments, b.String()), nil
}

// parseSegment reads one unescaped segment back into a value.
func parseSegment(key, seg string) (schema.Value, error) {
	if !strings.HasPrefix(seg, `"`) {
		return ParseValue(seg), nil
	}
	s, err := unquoteString(seg)
	if err != nil {
		return schema.Value{}, fmt.Errorf("%w: key %q: %v", ErrMalformedKey, key, err)
	}
	return schema.StringValue(s), nil
}

// unquoteString reverses quoteString.
func unquoteString(seg string) (string, error) {
	if len(seg) < 2 {
		return "", fmt.Errorf("unterminated quoted value")
	}
	var b strings.Builder
	i := 1
	for i < len(seg) {
		switch seg[i] {
		case '\\':
			if i+1 >= len(seg) {
				return "", fmt.Errorf("unterminated escape in quoted value")
			}
			i++
			b.WriteByte(seg[i])
			i++
		case '"':
			if i != len(seg)-1 {
				return "", fmt.Errorf("content after closing quote")
			}
			return b.String(), nil
		default:
			b.WriteByte(seg[i])
			i++
		}
	}
	return "", fmt.Errorf("unterminated quoted value")
}

// looksNumeric reports whether a float-parseable token is a plain numeric
// literal rather than a word like NaN or Inf.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i = 1
	}
	if i >= len(s) || (s[i] < '0' || s[i] > '9') && s[i] != '.' {
		return false
	}
	return strings.ContainsAny(s, ".eE")
}
