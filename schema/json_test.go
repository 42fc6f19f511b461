package schema

import (
	"encoding/json"
	"testing"
)

func TestCloseCacheJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing comma", `{"cache":{"128":{},`, `{"cache":{"128":{}}}`},
		{"comma then whitespace", "{\"cache\":{\"128\":{},\n  ", `{"cache":{"128":{}}}`},
		{"no trailing comma", `{"cache":{"128":{}`, `{"cache":{"128":{}}}`},
		{"open cache object", `{"cache":{`, `{"cache":{}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CloseCacheJSON([]byte(tt.in)); string(got) != tt.want {
				t.Errorf("CloseCacheJSON(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCloseCacheJSON_Empty(t *testing.T) {
	for _, in := range []string{"", " \t\r\n"} {
		if got := CloseCacheJSON([]byte(in)); got != nil {
			t.Errorf("CloseCacheJSON(%q) = %q, want nil", in, got)
		}
	}
}

func TestCloseCacheJSON_InputUntouched(t *testing.T) {
	in := []byte(`{"a":1,`)
	CloseCacheJSON(in)
	if string(in) != `{"a":1,` {
		t.Errorf("input was modified: %q", in)
	}
}

// A cache file truncated after an appended line parses once repaired.
func TestCloseCacheJSON_RepairedParses(t *testing.T) {
	open := `{"schema_version":"1.0.0","device_name":"d","kernel_name":"k",` +
		`"problem_size":1,"tune_params_keys":["x"],"tune_params":{"x":[1]},` +
		`"objective":"time","cache":{"1":` + lineJSON("1.5") + `,`
	var d Document
	if err := json.Unmarshal(CloseCacheJSON([]byte(open)), &d); err != nil {
		t.Fatalf("repaired document does not parse: %v", err)
	}
	if d.Lines.Len() != 1 || !d.Lines.Has("1") {
		t.Errorf("cache keys = %v, want [1]", d.Lines.Keys())
	}
}
