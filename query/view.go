package query

import (
	"fmt"
	"iter"
	"math"
	"sort"

	"github.com/jonwraymond/ktcache/keycodec"
	"github.com/jonwraymond/ktcache/schema"
)

// Source yields the document a view reads. *store.Store implements it.
type Source interface {
	Document() *schema.Document
}

// Config is one decoded configuration: values in tune_params_keys order.
type Config []schema.Value

// Entry pairs a configuration with its cache line in ranking results.
type Entry struct {
	// Key is the canonical configuration key.
	Key string

	// Config holds the decoded values, in tune_params_keys order. It is
	// nil when the key does not decode against the document's parameters.
	Config Config

	// Record is the cache line.
	Record *schema.Record
}

// View answers read-only lookups and ranking queries over a snapshot of
// one cache document.
//
// Contract:
//   - Concurrency: safe for concurrent use; the snapshot never changes.
//   - Ownership: the snapshot is taken once, in NewView. Lines upserted
//     afterwards are not visible; take a new view to see them.
//   - Errors: records returned by queries alias the snapshot and must be
//     treated as read-only.
type View struct {
	doc *schema.Document
}

// NewView snapshots the source's current document.
func NewView(src Source) *View {
	return &View{doc: src.Document()}
}

// Len returns the number of lines in the snapshot, failed lines included.
func (v *View) Len() int {
	return v.doc.Lines.Len()
}

// Objective returns the document's ranking objective, for use with
// ObjectiveSelector.
func (v *View) Objective() string {
	return v.doc.Objective
}

// Lookup returns the line stored under a configuration key.
func (v *View) Lookup(key string) (*schema.Record, bool) {
	return v.doc.Lines.Get(key)
}

// LookupConfig returns the line for a configuration given as values in
// tune_params_keys order.
func (v *View) LookupConfig(values []schema.Value) (*schema.Record, bool) {
	return v.Lookup(keycodec.Encode(values))
}

// FilterByKeys returns the lines whose configuration carries every value
// of the partial assignment; an empty partial matches every line. Filter
// names must be declared tune parameters.
//
// The sequence is lazy and restartable: each range walks the snapshot
// anew, in insertion order. Failed lines match like any other.
func (v *View) FilterByKeys(partial map[string]schema.Value) (iter.Seq2[Config, *schema.Record], error) {
	want := make(map[int]schema.Value, len(partial))
	for name, value := range partial {
		pos := v.paramIndex(name)
		if pos < 0 {
			return nil, fmt.Errorf("%w: %q", ErrUnknownParam, name)
		}
		want[pos] = value
	}
	arity := len(v.doc.TuneParamsKeys)
	return func(yield func(Config, *schema.Record) bool) {
		for key, rec := range v.doc.Lines.All() {
			values, err := keycodec.Decode(key, arity)
			if err != nil {
				continue
			}
			matched := true
			for pos, value := range want {
				if !values[pos].Equal(value) {
					matched = false
					break
				}
			}
			if !matched {
				continue
			}
			if !yield(Config(values), rec) {
				return
			}
		}
	}, nil
}

// Best returns the measured line whose metric is best in the given
// direction. ok is false when the snapshot holds no measured line with
// the metric. Ties keep the earliest inserted line.
func (v *View) Best(sel Selector, dir Direction) (Entry, bool) {
	var best Entry
	var bestMetric float64
	found := false
	for key, rec := range v.doc.Lines.All() {
		metric, ok := usableMetric(rec, sel)
		if !ok {
			continue
		}
		if !found || dir.better(metric, bestMetric) {
			found = true
			bestMetric = metric
			best = v.entry(key, rec)
		}
	}
	return best, found
}

// TopK returns up to k measured lines, best first in the given
// direction. Ties keep insertion order, so rankings are deterministic
// across runs over the same file.
func (v *View) TopK(k int, sel Selector, dir Direction) []Entry {
	if k <= 0 {
		return nil
	}
	type scored struct {
		entry  Entry
		metric float64
	}
	var ranked []scored
	for key, rec := range v.doc.Lines.All() {
		metric, ok := usableMetric(rec, sel)
		if !ok {
			continue
		}
		ranked = append(ranked, scored{entry: v.entry(key, rec), metric: metric})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return dir.better(ranked[i].metric, ranked[j].metric)
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	out := make([]Entry, len(ranked))
	for i, r := range ranked {
		out[i] = r.entry
	}
	return out
}

// usableMetric extracts a ranking metric. Failed lines, lines without
// the metric, and NaN values are excluded; NaN has no place in an
// ordering.
func usableMetric(rec *schema.Record, sel Selector) (float64, bool) {
	if rec.Time.IsFailed() {
		return 0, false
	}
	metric, ok := sel(rec)
	if !ok || math.IsNaN(metric) {
		return 0, false
	}
	return metric, true
}

func (v *View) entry(key string, rec *schema.Record) Entry {
	e := Entry{Key: key, Record: rec}
	if values, err := keycodec.Decode(key, len(v.doc.TuneParamsKeys)); err == nil {
		e.Config = Config(values)
	}
	return e
}

func (v *View) paramIndex(name string) int {
	for i, k := range v.doc.TuneParamsKeys {
		if k == name {
			return i
		}
	}
	return -1
}
