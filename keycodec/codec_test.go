package keycodec

import (
	"errors"
	"strings"
	"testing"

	"github.com/jonwraymond/ktcache/schema"
)

func valuesEqual(a, b []schema.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func TestEncode(t *testing.T) {
	tests := []struct {
		name   string
		values []schema.Value
		want   string
	}{
		{"nothing", nil, ""},
		{"ints", schema.MustValues(128, 1), "128,1"},
		{"mixed scalars", schema.MustValues(256, 0.25, true, "texture"), "256,0.25,true,texture"},
		{"integral float keeps the point", []schema.Value{schema.FloatValue(1.0)}, "1.0"},
		{"negative int", schema.MustValues(-42), "-42"},
		{"bools render lowercase", schema.MustValues(true, false), "true,false"},
		{"numeric-looking string is quoted", schema.MustValues("128"), `"128"`},
		{"float-looking string is quoted", schema.MustValues("1e3"), `"1e3"`},
		{"bool-looking string is quoted", schema.MustValues("true"), `"true"`},
		{"empty string is quoted", schema.MustValues(""), `""`},
		{"leading quote is quoted and escaped", schema.MustValues(`"hi`), `"\\"hi"`},
		{"comma is join-escaped", schema.MustValues("a,b"), `a\,b`},
		{"backslash is join-escaped", schema.MustValues(`a\b`), `a\\b`},
		{"NaN stays a bare string", schema.MustValues("NaN"), "NaN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Encode(tt.values); got != tt.want {
				t.Errorf("Encode(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		key   string
		arity int
		want  []schema.Value
	}{
		{"128,1", 2, schema.MustValues(128, 1)},
		{"256,0.25,true,texture", 4, schema.MustValues(256, 0.25, true, "texture")},
		{"1.0", 1, []schema.Value{schema.FloatValue(1.0)}},
		{"1e3", 1, []schema.Value{schema.FloatValue(1000)}},
		{`"128",2`, 2, schema.MustValues("128", 2)},
		{`""`, 1, schema.MustValues("")},
		{`a\,b`, 1, schema.MustValues("a,b")},
		{`a\\b`, 1, schema.MustValues(`a\b`)},
		{"NaN", 1, schema.MustValues("NaN")},
		{"-inf", 1, schema.MustValues("-inf")},
		{"", 1, schema.MustValues("")},
	}
	for _, tt := range tests {
		got, err := Decode(tt.key, tt.arity)
		if err != nil {
			t.Errorf("Decode(%q, %d) failed: %v", tt.key, tt.arity, err)
			continue
		}
		if !valuesEqual(got, tt.want) {
			t.Errorf("Decode(%q, %d) = %v, want %v", tt.key, tt.arity, got, tt.want)
		}
	}
}

func TestDecode_EmptyKeyZeroArity(t *testing.T) {
	got, err := Decode("", 0)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got != nil {
		t.Errorf("Decode(\"\", 0) = %v, want nil", got)
	}
}

// Older tuners wrote Python-style capitalized booleans; they decode but
// re-encode lowercase.
func TestDecode_LegacyBooleans(t *testing.T) {
	got, err := Decode("True,False", 2)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !valuesEqual(got, schema.MustValues(true, false)) {
		t.Fatalf("Decode = %v, want [true false]", got)
	}
	if key := Encode(got); key != "true,false" {
		t.Errorf("re-encoded key = %q, want %q", key, "true,false")
	}
}

func TestDecode_Arity(t *testing.T) {
	tests := []struct {
		key   string
		arity int
		frag  string
	}{
		{"128", 2, "has 1 values, want 2"},
		{"128,1,4", 2, "has 3 values, want 2"},
		{"128", 0, "has 1 values, want 0"},
		{"", 2, "has 1 values, want 2"},
	}
	for _, tt := range tests {
		_, err := Decode(tt.key, tt.arity)
		if !errors.Is(err, ErrArity) {
			t.Errorf("Decode(%q, %d) error = %v, want ErrArity", tt.key, tt.arity, err)
			continue
		}
		if !strings.Contains(err.Error(), tt.frag) {
			t.Errorf("Decode(%q, %d) error = %q, want substring %q", tt.key, tt.arity, err, tt.frag)
		}
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		key  string
		frag string
	}{
		{"trailing escape", `a\`, "ends with an escape"},
		{"unterminated quote", `"abc`, "unterminated quoted value"},
		{"bare quote", `"`, "unterminated quoted value"},
		{"content after closing quote", `"a"x`, "content after closing quote"},
		{"unterminated escape in quote", `"a\\`, "unterminated escape"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.key, 1)
			if !errors.Is(err, ErrMalformedKey) {
				t.Fatalf("Decode(%q) error = %v, want ErrMalformedKey", tt.key, err)
			}
			if !strings.Contains(err.Error(), tt.frag) {
				t.Errorf("error = %q, want substring %q", err, tt.frag)
			}
		})
	}
}

// Decode(Encode(values), len(values)) must return the input unchanged,
// whatever the strings contain.
func TestRoundTrip(t *testing.T) {
	cases := [][]schema.Value{
		schema.MustValues(128, 1),
		schema.MustValues(256, 0.25, true, "texture"),
		{schema.FloatValue(1.0)},
		schema.MustValues("128"),
		schema.MustValues("1.5", 1.5),
		schema.MustValues("true", true),
		schema.MustValues(""),
		schema.MustValues("a,b", `back\slash`),
		schema.MustValues(`"already quoted"`),
		schema.MustValues(`quote"inside`),
		schema.MustValues("NaN", "Inf"),
		schema.MustValues(`mixed, "and\ hard`, -3, 2.5e-4, false),
	}
	for _, values := range cases {
		key := Encode(values)
		got, err := Decode(key, len(values))
		if err != nil {
			t.Errorf("Decode(%q, %d) failed: %v", key, len(values), err)
			continue
		}
		if !valuesEqual(got, values) {
			t.Errorf("round trip of %v via %q = %v", values, key, got)
		}
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		token string
		want  schema.Value
	}{
		{"128", schema.IntValue(128)},
		{"-42", schema.IntValue(-42)},
		{"0.25", schema.FloatValue(0.25)},
		{".5", schema.FloatValue(0.5)},
		{"1e3", schema.FloatValue(1000)},
		{"-1.5", schema.FloatValue(-1.5)},
		{"true", schema.BoolValue(true)},
		{"True", schema.BoolValue(true)},
		{"false", schema.BoolValue(false)},
		{"False", schema.BoolValue(false)},
		{"TRUE", schema.StringValue("TRUE")},
		{"NaN", schema.StringValue("NaN")},
		{"nan", schema.StringValue("nan")},
		{"Inf", schema.StringValue("Inf")},
		{"-inf", schema.StringValue("-inf")},
		{"texture", schema.StringValue("texture")},
		{"", schema.StringValue("")},
	}
	for _, tt := range tests {
		if got := ParseValue(tt.token); !got.Equal(tt.want) {
			t.Errorf("ParseValue(%q) = %s %v, want %s %v",
				tt.token, got.Kind(), got, tt.want.Kind(), tt.want)
		}
	}
}
