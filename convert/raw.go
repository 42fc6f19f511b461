package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jonwraymond/ktcache/schema"
)

// LoadRaw reads a cache file into a raw document for version upgrades.
// Raw documents keep numbers as json.Number and carry whatever fields
// the file has; nothing is validated yet. An interrupted write is
// repaired the same way a tolerant load repairs it.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("convert: read cache: %w", err)
	}
	return decodeRaw(data)
}

// ReadRaw reads a raw document from a stream.
func ReadRaw(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("convert: read cache: %w", err)
	}
	return decodeRaw(data)
}

// Raw converts a typed document into the raw form Apply and ToT4
// operate on.
func Raw(d *schema.Document) (map[string]any, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("convert: encode document: %w", err)
	}
	return decodeRaw(data)
}

func decodeRaw(data []byte) (map[string]any, error) {
	doc, err := unmarshalRaw(data)
	if err == nil {
		return doc, nil
	}
	repaired := schema.CloseCacheJSON(data)
	if repaired == nil {
		return nil, fmt.Errorf("convert: malformed cache JSON: %w", err)
	}
	doc, rerr := unmarshalRaw(repaired)
	if rerr != nil {
		// Report the original failure; the repair was a guess.
		return nil, fmt.Errorf("convert: malformed cache JSON: %w", err)
	}
	return doc, nil
}

func unmarshalRaw(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after document")
	}
	return doc, nil
}
