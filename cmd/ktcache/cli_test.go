package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/ktcache/convert"
	"github.com/jonwraymond/ktcache/schema"
	"github.com/jonwraymond/ktcache/store"
)

// execute runs the CLI against a fresh command tree, capturing output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

type line struct {
	key string
	rec *schema.Record
}

func measuredRec(ms float64) *schema.Record {
	return &schema.Record{Time: schema.Measured(ms), CompileTime: 0.8}
}

func failedRec(reason schema.FailureReason) *schema.Record {
	return &schema.Record{Time: schema.Failed(reason)}
}

func writeCacheFile(t *testing.T, path string, lines ...line) {
	t.Helper()
	s, err := store.New(store.Header{
		DeviceName:     "NVIDIA RTX A4000",
		KernelName:     "vector_add",
		ProblemSize:    schema.IntProblemSize(10000000),
		TuneParamsKeys: []string{"block_size_x"},
		TuneParams: map[string][]schema.Value{
			"block_size_x": schema.MustValues(128, 256, 512),
		},
		Objective: "time",
	})
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	for _, ln := range lines {
		if err := s.Upsert(ln.key, ln.rec); err != nil {
			t.Fatalf("inserting %q: %v", ln.key, err)
		}
	}
	if err := s.Persist(context.Background(), path); err != nil {
		t.Fatalf("persisting fixture: %v", err)
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.json")
	out := filepath.Join(dir, "b.json")
	writeCacheFile(t, in, line{"128", measuredRec(1.5)}, line{"256", measuredRec(2.5)})

	if _, err := execute(t, "convert", "-i", in, "-o", out); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	s, err := store.Load(context.Background(), out)
	if err != nil {
		t.Fatalf("loading the converted file: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}
}

func TestConvertCommand_InPlace(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.json")
	writeCacheFile(t, in, line{"128", measuredRec(1.5)})

	if _, err := execute(t, "convert", "-i", in); err != nil {
		t.Fatalf("convert failed: %v", err)
	}

	s, err := store.Load(context.Background(), in)
	if err != nil {
		t.Fatalf("loading the rewritten file: %v", err)
	}
	if !s.Has("128") {
		t.Error("rewritten file lost its line")
	}
}

// stripVersion rewrites a cache file without its schema_version, the way
// files from before schema versioning look.
func stripVersion(t *testing.T, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading fixture: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	delete(m, "schema_version")
	data, err = json.Marshal(m)
	if err != nil {
		t.Fatalf("encoding fixture: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
}

func TestConvertCommand_Unversioned(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.json")
	out := filepath.Join(dir, "b.json")
	writeCacheFile(t, in, line{"128", measuredRec(1.5)})
	stripVersion(t, in)

	// Unversioned files are rejected unless explicitly allowed.
	_, err := execute(t, "convert", "-i", in, "-o", out)
	if !errors.Is(err, convert.ErrMissingVersion) {
		t.Fatalf("expected ErrMissingVersion, got: %v", err)
	}

	if _, err := execute(t, "convert", "-i", in, "-o", out, "--allow-version-absence"); err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	s, err := store.Load(context.Background(), out)
	if err != nil {
		t.Fatalf("loading the converted file: %v", err)
	}
	if s.Header().KernelName != "vector_add" {
		t.Errorf("KernelName = %q", s.Header().KernelName)
	}
}

func TestConvertCommand_RequiresInput(t *testing.T) {
	if _, err := execute(t, "convert"); err == nil {
		t.Error("expected an error for the missing --in flag")
	}
}

func TestT4Command(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.json")
	out := filepath.Join(dir, "results.json")
	writeCacheFile(t, in,
		line{"128", measuredRec(1.5)},
		line{"256", failedRec(schema.CompilationFailedConfig)},
	)

	if _, err := execute(t, "t4", "-i", in, "-o", out); err != nil {
		t.Fatalf("t4 failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("reading the T4 file: %v", err)
	}
	var t4 map[string]any
	if err := json.Unmarshal(data, &t4); err != nil {
		t.Fatalf("decoding the T4 file: %v", err)
	}
	if t4["schema_version"] != "1.0.0" {
		t.Errorf("schema_version = %v", t4["schema_version"])
	}
	results, ok := t4["results"].([]any)
	if !ok || len(results) != 2 {
		t.Errorf("results = %v, want two entries", t4["results"])
	}
}

func TestGetLineCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.json")
	writeCacheFile(t, in, line{"128", measuredRec(1.5)})

	out, err := execute(t, "get-line", in, "--key", "128")
	if err != nil {
		t.Fatalf("get-line failed: %v", err)
	}
	if !strings.Contains(out, `"time": 1.5`) {
		t.Errorf("output does not show the line:\n%s", out)
	}

	_, err = execute(t, "get-line", in, "--key", "1024")
	if err == nil || !strings.Contains(err.Error(), `"1024"`) {
		t.Errorf("expected an error naming the absent key, got: %v", err)
	}
}

func TestDeleteLineCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.json")
	out := filepath.Join(dir, "b.json")
	writeCacheFile(t, in, line{"128", measuredRec(1.5)}, line{"256", measuredRec(2.5)})

	if _, err := execute(t, "delete-line", in, "--key", "128", "-o", out); err != nil {
		t.Fatalf("delete-line failed: %v", err)
	}

	s, err := store.Load(context.Background(), out)
	if err != nil {
		t.Fatalf("loading the updated file: %v", err)
	}
	if s.Has("128") {
		t.Error("deleted line survived")
	}
	if !s.Has("256") {
		t.Error("unrelated line was lost")
	}

	// The input is untouched when an output file is given.
	orig, err := store.Load(context.Background(), in)
	if err != nil {
		t.Fatalf("reloading the input: %v", err)
	}
	if !orig.Has("128") {
		t.Error("delete-line with --out modified the input")
	}

	if _, err := execute(t, "delete-line", in, "--key", "1024", "-o", out); err == nil {
		t.Error("expected an error for an absent key")
	}
}

func TestMergeCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.json")
	b := filepath.Join(dir, "b.json")
	out := filepath.Join(dir, "merged.json")
	writeCacheFile(t, a, line{"128", measuredRec(1.5)})
	writeCacheFile(t, b, line{"256", measuredRec(2.5)})

	if _, err := execute(t, "merge", a, b, "-o", out); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	s, err := store.Load(context.Background(), out)
	if err != nil {
		t.Fatalf("loading the merged file: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d, want 2", s.Len())
	}

	if _, err := execute(t, "merge", a, "-o", out); err == nil {
		t.Error("expected an error for a single input")
	}
}

func TestBestCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.json")
	writeCacheFile(t, in,
		line{"128", measuredRec(1.5)},
		line{"256", measuredRec(2.5)},
		line{"512", failedRec(schema.InvalidConfig)},
	)

	out, err := execute(t, "best", in)
	if err != nil {
		t.Fatalf("best failed: %v", err)
	}
	if want := "128\ttime=1.5\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	out, err = execute(t, "best", in, "--descending")
	if err != nil {
		t.Fatalf("best --descending failed: %v", err)
	}
	if want := "256\ttime=2.5\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}

	if _, err := execute(t, "best", in, "--metric", "GFLOP/s"); err == nil {
		t.Error("expected an error when no line carries the metric")
	}
}

func TestVerboseFlagAccepted(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "a.json")
	writeCacheFile(t, in, line{"128", measuredRec(1.5)})

	if _, err := execute(t, "--verbose", "get-line", in, "--key", "128"); err != nil {
		t.Fatalf("verbose get-line failed: %v", err)
	}
}
