package merge

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonwraymond/ktcache/schema"
	"github.com/jonwraymond/ktcache/store"
)

// defaultConcurrency bounds how many input files load at once.
const defaultConcurrency = 4

// Option configures a merge.
type Option func(*config)

type config struct {
	concurrency int
	storeOpts   []store.Option
}

// WithConcurrency bounds the number of files loaded at once. Values
// below one lift the bound.
func WithConcurrency(n int) Option {
	return func(c *config) {
		if n < 1 {
			n = -1
		}
		c.concurrency = n
	}
}

// WithStoreOptions forwards options to the stores behind the merge, so
// instrumented callers see the input loads and the output persist.
func WithStoreOptions(opts ...store.Option) Option {
	return func(c *config) {
		c.storeOpts = opts
	}
}

// Documents merges two or more cache documents into a new document
// carrying the shared header and the union of the lines.
//
// Every input must describe the same tuning session; the first
// disagreeing header field fails the merge with a HeaderMismatchError.
// Line collisions follow upsert semantics: a failed line is overtaken by
// a later line for the same key, while a measured line collides with a
// DuplicateEntryError naming the key. The inputs are not modified.
func Documents(docs []*schema.Document) (*schema.Document, error) {
	labels := make([]string, len(docs))
	for i := range docs {
		labels[i] = fmt.Sprintf("input %d", i+1)
	}
	s, err := merged(docs, labels)
	if err != nil {
		return nil, err
	}
	return s.Document(), nil
}

// Files loads the given cache files, merges them, and persists the
// result to out atomically. The inputs load concurrently; errors name
// the offending file.
func Files(ctx context.Context, paths []string, out string, opts ...Option) error {
	cfg := config{concurrency: defaultConcurrency}
	for _, opt := range opts {
		opt(&cfg)
	}
	if len(paths) < 2 {
		return ErrTooFewInputs
	}

	docs := make([]*schema.Document, len(paths))
	eg, loadCtx := errgroup.WithContext(ctx)
	eg.SetLimit(cfg.concurrency)
	for i, path := range paths {
		eg.Go(func() error {
			s, err := store.Load(loadCtx, path, cfg.storeOpts...)
			if err != nil {
				return fmt.Errorf("merge: %s: %w", path, err)
			}
			docs[i] = s.Document()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	s, err := merged(docs, paths, cfg.storeOpts...)
	if err != nil {
		return err
	}
	return s.Persist(ctx, out)
}

// merged replays every input's lines into a fresh store, so collisions
// follow upsert semantics and the result is validated line by line.
func merged(docs []*schema.Document, labels []string, opts ...store.Option) (*store.Store, error) {
	if len(docs) < 2 {
		return nil, ErrTooFewInputs
	}
	for i, d := range docs[1:] {
		if field := headerDiff(docs[0], d); field != "" {
			return nil, &HeaderMismatchError{Input: labels[i+1], Field: field}
		}
	}

	s, err := store.New(headerOf(docs[0]), opts...)
	if err != nil {
		return nil, err
	}
	for i, d := range docs {
		for key, rec := range d.Lines.All() {
			if err := s.Upsert(key, rec); err != nil {
				return nil, fmt.Errorf("merge: %s: %w", labels[i], err)
			}
		}
	}
	return s, nil
}

// headerOf lifts a document's header fields into a store header.
func headerOf(d *schema.Document) store.Header {
	return store.Header{
		DeviceName:     d.DeviceName,
		KernelName:     d.KernelName,
		ProblemSize:    d.ProblemSize,
		TuneParamsKeys: d.TuneParamsKeys,
		TuneParams:     d.TuneParams,
		Objective:      d.Objective,
	}
}

// headerDiff returns the first header field on which b disagrees with a,
// in canonical field order, or "" when the headers are equivalent.
func headerDiff(a, b *schema.Document) string {
	switch {
	case a.SchemaVersion != b.SchemaVersion:
		return "schema_version"
	case a.DeviceName != b.DeviceName:
		return "device_name"
	case a.KernelName != b.KernelName:
		return "kernel_name"
	case !a.ProblemSize.Equal(b.ProblemSize):
		return "problem_size"
	case !equalNames(a.TuneParamsKeys, b.TuneParamsKeys):
		return "tune_params_keys"
	case !equalParams(a.TuneParams, b.TuneParams):
		return "tune_params"
	case a.Objective != b.Objective:
		return "objective"
	}
	return ""
}

func equalNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equalParams(a, b map[string][]schema.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for name, av := range a {
		bv, ok := b[name]
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
	}
	return true
}
