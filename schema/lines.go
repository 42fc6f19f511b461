package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// Lines is the cache object of a document: configuration keys mapped to
// records, preserving insertion order across marshal and unmarshal.
// The zero value is not usable; call NewLines.
//
// Lines is not safe for concurrent use; stores serialize access to it.
type Lines struct {
	order   []string
	records map[string]*Record
}

// NewLines returns an empty cache object.
func NewLines() *Lines {
	return &Lines{records: make(map[string]*Record)}
}

// Len returns the number of lines.
func (l *Lines) Len() int {
	if l == nil {
		return 0
	}
	return len(l.order)
}

// Get returns the record for a configuration key.
func (l *Lines) Get(key string) (*Record, bool) {
	if l == nil {
		return nil, false
	}
	rec, ok := l.records[key]
	return rec, ok
}

// Has reports whether a configuration key is present.
func (l *Lines) Has(key string) bool {
	_, ok := l.Get(key)
	return ok
}

// Set stores a record under a configuration key. A key keeps its original
// position when overwritten.
func (l *Lines) Set(key string, rec *Record) {
	if l.records == nil {
		l.records = make(map[string]*Record)
	}
	if _, ok := l.records[key]; !ok {
		l.order = append(l.order, key)
	}
	l.records[key] = rec
}

// Delete removes a configuration key, reporting whether it was present.
func (l *Lines) Delete(key string) bool {
	if l == nil {
		return false
	}
	if _, ok := l.records[key]; !ok {
		return false
	}
	delete(l.records, key)
	for i, k := range l.order {
		if k == key {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the configuration keys in insertion order.
func (l *Lines) Keys() []string {
	if l == nil {
		return nil
	}
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// All iterates the lines in insertion order.
func (l *Lines) All() iter.Seq2[string, *Record] {
	return func(yield func(string, *Record) bool) {
		if l == nil {
			return
		}
		for _, key := range l.order {
			if !yield(key, l.records[key]) {
				return
			}
		}
	}
}

// Clone returns a deep copy.
func (l *Lines) Clone() *Lines {
	out := NewLines()
	if l == nil {
		return out
	}
	out.order = make([]string, len(l.order))
	copy(out.order, l.order)
	for k, rec := range l.records {
		out.records[k] = rec.Clone()
	}
	return out
}

// MarshalJSON writes the lines as a JSON object in insertion order.
func (l *Lines) MarshalJSON() ([]byte, error) {
	if l == nil || len(l.order) == 0 {
		return []byte("{}"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range l.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(l.records[key])
		if err != nil {
			return nil, fmt.Errorf("schema: line %q: %w", key, err)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object of lines, keeping file order. A key
// appearing twice keeps its first position with the last value, matching
// encoding/json object semantics.
func (l *Lines) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("schema: cache must be an object, got %v", tok)
	}
	*l = Lines{records: make(map[string]*Record)}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("schema: cache key must be a string, got %v", tok)
		}
		rec := new(Record)
		if err := dec.Decode(rec); err != nil {
			return fmt.Errorf("schema: line %q: %w", key, err)
		}
		l.Set(key, rec)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}
