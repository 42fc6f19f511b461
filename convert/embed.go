package convert

import (
	"bytes"
	"embed"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schemas
var schemaFS embed.FS

var (
	schemaMu       sync.Mutex
	compiledByPath = map[string]*jsonschema.Schema{}
)

// compiledSchema compiles the embedded schema at the given path, once.
func compiledSchema(path string) (*jsonschema.Schema, error) {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if sch, ok := compiledByPath[path]; ok {
		return sch, nil
	}
	data, err := schemaFS.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("convert: no embedded schema at %s: %w", path, err)
	}
	res, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("convert: reading schema %s: %w", path, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(path, res); err != nil {
		return nil, fmt.Errorf("convert: adding schema %s: %w", path, err)
	}
	sch, err := c.Compile(path)
	if err != nil {
		return nil, fmt.Errorf("convert: compiling schema %s: %w", path, err)
	}
	compiledByPath[path] = sch
	return sch, nil
}

// cacheSchema returns the cache-document schema for a registered version.
func cacheSchema(version string) (*jsonschema.Schema, error) {
	return compiledSchema(fmt.Sprintf("schemas/cache/%s/schema.json", version))
}

// t4Schema returns the T4 results schema.
func t4Schema() (*jsonschema.Schema, error) {
	return compiledSchema(fmt.Sprintf("schemas/t4/%s/results-schema.json", t4Version))
}
