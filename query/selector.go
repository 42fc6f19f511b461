package query

import "github.com/jonwraymond/ktcache/schema"

// Selector extracts the ranking metric from one cache line. ok reports
// whether the line carries the metric; lines without it are excluded
// from rankings.
type Selector func(rec *schema.Record) (float64, bool)

// MetricTime ranks by the aggregate runtime in milliseconds.
func MetricTime() Selector {
	return func(rec *schema.Record) (float64, bool) {
		return rec.Time.Value()
	}
}

// MetricGFLOPs ranks by achieved throughput. Lines that did not record
// GFLOP/s are excluded.
func MetricGFLOPs() Selector {
	return func(rec *schema.Record) (float64, bool) {
		if rec.GFLOPs == nil {
			return 0, false
		}
		return *rec.GFLOPs, true
	}
}

// MetricField ranks by a numeric open field, such as a user-defined
// metric attached to each line. Lines without the field, or whose value
// is not numeric, are excluded.
func MetricField(name string) Selector {
	return func(rec *schema.Record) (float64, bool) {
		raw, ok := rec.Extra[name]
		if !ok {
			return 0, false
		}
		v, err := schema.ValueOf(raw)
		if err != nil {
			return 0, false
		}
		return v.Numeric()
	}
}

// ObjectiveSelector maps a document's objective onto a selector and the
// direction in which it improves. Runtime is minimized; throughput and
// user-defined metrics are maximized.
func ObjectiveSelector(objective string) (Selector, Direction) {
	switch objective {
	case "", "time":
		return MetricTime(), Ascending
	case "GFLOP/s":
		return MetricGFLOPs(), Descending
	default:
		return MetricField(objective), Descending
	}
}

// Direction orders a metric.
type Direction int

const (
	// Ascending ranks smaller metric values as better.
	Ascending Direction = iota

	// Descending ranks larger metric values as better.
	Descending
)

// String returns the direction name.
func (d Direction) String() string {
	if d == Descending {
		return "descending"
	}
	return "ascending"
}

// better reports whether a strictly improves on b.
func (d Direction) better(a, b float64) bool {
	if d == Descending {
		return a > b
	}
	return a < b
}
