package schema

import (
	"encoding/json"
	"fmt"
	"time"
)

// TimestampLayout is the layout written for new records: a space-separated
// local time with microsecond precision, matching the historical format of
// existing cache files.
const TimestampLayout = "2006-01-02 15:04:05.000000"

// timestampLayouts are the accepted input layouts, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// Timestamp is the wall-clock time a cache line was recorded. The raw
// string read from a file is kept verbatim so that loading and persisting
// a document never rewrites timestamps.
type Timestamp struct {
	raw string
	t   time.Time
}

// NewTimestamp returns a Timestamp for the given time in the layout
// written for new records.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{raw: t.Format(TimestampLayout), t: t}
}

// Now returns a Timestamp for the current time.
func Now() Timestamp { return NewTimestamp(time.Now()) }

// ParseTimestamp reads a timestamp in any accepted layout, keeping the
// raw string for re-serialization.
func ParseTimestamp(raw string) (Timestamp, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return Timestamp{raw: raw, t: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("%w: %q", ErrBadTimestamp, raw)
}

// Time returns the parsed time.
func (ts Timestamp) Time() time.Time { return ts.t }

// IsZero reports whether the timestamp is unset.
func (ts Timestamp) IsZero() bool { return ts.raw == "" }

// String returns the raw timestamp string.
func (ts Timestamp) String() string { return ts.raw }

// MarshalJSON writes the raw string unchanged.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.raw)
}

// UnmarshalJSON reads a timestamp string in any accepted layout.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}
