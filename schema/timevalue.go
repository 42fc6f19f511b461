package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FailureReason classifies why a configuration produced no measurement.
type FailureReason string

const (
	// InvalidConfig marks a configuration rejected by a restriction before
	// compilation.
	InvalidConfig FailureReason = "InvalidConfig"

	// CompilationFailedConfig marks a configuration whose kernel failed to
	// compile.
	CompilationFailedConfig FailureReason = "CompilationFailedConfig"

	// RuntimeFailedConfig marks a configuration that compiled but crashed
	// or failed verification at runtime.
	RuntimeFailedConfig FailureReason = "RuntimeFailedConfig"
)

// Valid reports whether the reason is one of the three sentinels.
func (r FailureReason) Valid() bool {
	switch r {
	case InvalidConfig, CompilationFailedConfig, RuntimeFailedConfig:
		return true
	}
	return false
}

// TimeValue is the time field of a cache line: either a measured runtime
// in milliseconds or a failure classification. The zero value is a
// measurement of 0.
type TimeValue struct {
	reason FailureReason
	value  float64
}

// Measured returns a TimeValue holding a runtime measurement.
func Measured(ms float64) TimeValue { return TimeValue{value: ms} }

// Failed returns a TimeValue holding a failure classification.
func Failed(reason FailureReason) TimeValue { return TimeValue{reason: reason} }

// Value returns the measured runtime, if the configuration succeeded.
func (t TimeValue) Value() (float64, bool) { return t.value, t.reason == "" }

// Reason returns the failure classification, if the configuration failed.
func (t TimeValue) Reason() (FailureReason, bool) {
	return t.reason, t.reason != ""
}

// IsFailed reports whether the value is a failure classification.
func (t TimeValue) IsFailed() bool { return t.reason != "" }

// Equal reports whether two time values agree in both tag and payload.
func (t TimeValue) Equal(o TimeValue) bool {
	return t.reason == o.reason && t.value == o.value
}

// String renders the measurement or the failure sentinel.
func (t TimeValue) String() string {
	if t.reason != "" {
		return string(t.reason)
	}
	return strconv.FormatFloat(t.value, 'g', -1, 64)
}

// MarshalJSON encodes a measurement as a number and a failure as its
// sentinel string.
func (t TimeValue) MarshalJSON() ([]byte, error) {
	if t.reason != "" {
		return json.Marshal(string(t.reason))
	}
	return json.Marshal(t.value)
}

// UnmarshalJSON decodes a number or one of the failure sentinel strings.
func (t *TimeValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		reason := FailureReason(s)
		if !reason.Valid() {
			return fmt.Errorf("%w: %q", ErrBadFailureReason, s)
		}
		*t = Failed(reason)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*t = Measured(f)
	return nil
}
