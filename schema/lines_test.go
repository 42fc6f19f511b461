package schema

import (
	"encoding/json"
	"strings"
	"testing"
)

// lineJSON renders a minimal cache line with the given time field.
func lineJSON(time string) string {
	return `{"time":` + time + `,"compile_time":0,"verification_time":0,` +
		`"benchmark_time":0,"strategy_time":0,"framework_time":0,` +
		`"timestamp":"2023-03-15 14:22:05"}`
}

func TestLines_SetGetDelete(t *testing.T) {
	l := NewLines()
	if l.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", l.Len())
	}
	l.Set("a", &Record{Time: Measured(1)})
	l.Set("b", &Record{Time: Measured(2)})
	l.Set("c", &Record{Time: Measured(3)})
	if got := l.Keys(); len(got) != 3 || got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("Keys() = %v, want [a b c]", got)
	}

	// Overwriting keeps the original position.
	l.Set("b", &Record{Time: Measured(9)})
	if got := l.Keys(); len(got) != 3 || got[1] != "b" {
		t.Errorf("Keys() after overwrite = %v, want [a b c]", got)
	}
	rec, ok := l.Get("b")
	if v, _ := rec.Time.Value(); !ok || v != 9 {
		t.Errorf("Get(b) = %v, %v, want the overwriting record", rec, ok)
	}

	if l.Has("d") {
		t.Error("Has of an absent key returned true")
	}
	if !l.Delete("b") {
		t.Error("Delete of a present key returned false")
	}
	if got := l.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "c" {
		t.Errorf("Keys() after delete = %v, want [a c]", got)
	}
	if l.Delete("b") {
		t.Error("Delete of an absent key returned true")
	}
}

func TestLines_NilReceiver(t *testing.T) {
	var l *Lines
	if l.Len() != 0 {
		t.Errorf("Len() = %d", l.Len())
	}
	if _, ok := l.Get("a"); ok {
		t.Error("Get on nil returned ok=true")
	}
	if l.Has("a") {
		t.Error("Has on nil returned true")
	}
	if l.Keys() != nil {
		t.Error("Keys on nil returned a slice")
	}
	if l.Delete("a") {
		t.Error("Delete on nil returned true")
	}
	for range l.All() {
		t.Fatal("All on nil yielded a line")
	}
}

func TestLines_All(t *testing.T) {
	l := NewLines()
	l.Set("a", &Record{Time: Measured(1)})
	l.Set("b", &Record{Time: Measured(2)})
	l.Set("c", &Record{Time: Measured(3)})

	var keys []string
	for k := range l.All() {
		keys = append(keys, k)
	}
	if len(keys) != 3 || keys[0] != "a" || keys[1] != "b" || keys[2] != "c" {
		t.Errorf("All yielded %v, want [a b c]", keys)
	}

	n := 0
	for range l.All() {
		n++
		break
	}
	if n != 1 {
		t.Errorf("broken-off iteration yielded %d lines", n)
	}
	// A fresh iteration starts over.
	n = 0
	for range l.All() {
		n++
	}
	if n != 3 {
		t.Errorf("second iteration yielded %d lines, want 3", n)
	}
}

func TestLines_Clone(t *testing.T) {
	l := NewLines()
	rec := &Record{Time: Measured(1.5), Times: []float64{1.4}}
	rec.SetExtra("x", 1)
	l.Set("a", rec)
	l.Set("b", &Record{Time: Measured(2.5)})

	c := l.Clone()
	l.Set("z", &Record{})
	rec.Times[0] = 9
	rec.Extra["x"] = 9

	if c.Len() != 2 {
		t.Errorf("clone Len() = %d, want 2", c.Len())
	}
	got, _ := c.Get("a")
	if got.Times[0] != 1.4 {
		t.Error("mutating the original record changed the clone")
	}
	if got.Extra["x"] != 1 {
		t.Error("mutating the original Extra changed the clone")
	}
}

func TestLines_UnmarshalKeepsFileOrder(t *testing.T) {
	text := `{"b":` + lineJSON("2.5") + `,"a":` + lineJSON("1.5") + `}`
	var l Lines
	if err := json.Unmarshal([]byte(text), &l); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got := l.Keys(); len(got) != 2 || got[0] != "b" || got[1] != "a" {
		t.Fatalf("Keys() = %v, want [b a]", got)
	}

	data, err := json.Marshal(&l)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Index(string(data), `"b":`) > strings.Index(string(data), `"a":`) {
		t.Errorf("Marshal reordered the lines: %s", data)
	}
}

// A key appearing twice keeps its first position with the last value,
// like encoding/json object decoding.
func TestLines_UnmarshalDuplicateKey(t *testing.T) {
	text := `{"a":` + lineJSON("1.5") + `,"b":` + lineJSON("2.5") + `,"a":` + lineJSON("3.5") + `}`
	var l Lines
	if err := json.Unmarshal([]byte(text), &l); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got := l.Keys(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Keys() = %v, want [a b]", got)
	}
	rec, _ := l.Get("a")
	if v, _ := rec.Time.Value(); v != 3.5 {
		t.Errorf("Get(a) time = %v, want the last value 3.5", v)
	}
}

func TestLines_UnmarshalNotObject(t *testing.T) {
	var l Lines
	if err := json.Unmarshal([]byte("[]"), &l); err == nil || !strings.Contains(err.Error(), "must be an object") {
		t.Errorf("Unmarshal of an array error = %v", err)
	}
}

func TestLines_MarshalEmpty(t *testing.T) {
	data, err := json.Marshal(NewLines())
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Marshal of empty lines = %s, want {}", data)
	}
}
