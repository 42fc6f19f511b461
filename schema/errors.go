package schema

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for document parsing.
var (
	// ErrBadTimestamp indicates a timestamp string in an unrecognized layout.
	ErrBadTimestamp = errors.New("schema: unrecognized timestamp format")

	// ErrBadValue indicates a tune-parameter value outside the supported
	// scalar types (integer, float, boolean, string).
	ErrBadValue = errors.New("schema: unsupported tune-parameter value type")

	// ErrBadFailureReason indicates a time field holding a string that is
	// not one of the failure sentinels.
	ErrBadFailureReason = errors.New("schema: unknown failure reason")
)

// ErrorKind classifies a validation violation.
type ErrorKind int

const (
	// MissingField reports a required field that is absent.
	MissingField ErrorKind = iota

	// TypeMismatch reports a field whose value has the wrong shape or range.
	TypeMismatch

	// InvalidEnumValue reports a value outside its declared candidate set,
	// a reserved name used as a tune parameter, or an unknown failure reason.
	InvalidEnumValue

	// VersionMismatch reports a schema_version other than the supported one.
	VersionMismatch

	// KeyArityMismatch reports a configuration key whose value count differs
	// from tune_params_keys.
	KeyArityMismatch
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case MissingField:
		return "missing_field"
	case TypeMismatch:
		return "type_mismatch"
	case InvalidEnumValue:
		return "invalid_enum_value"
	case VersionMismatch:
		return "version_mismatch"
	case KeyArityMismatch:
		return "key_arity_mismatch"
	default:
		return "unknown"
	}
}

// ValidationError is a single violation found in a cache document.
type ValidationError struct {
	// Path locates the offending field, e.g. `cache["0,0"].compile_time`.
	Path string

	// Kind classifies the violation.
	Kind ErrorKind

	// Msg describes the violation.
	Msg string
}

// Error returns the error message.
func (e ValidationError) Error() string {
	return fmt.Sprintf("schema: %s: %s (%s)", e.Path, e.Msg, e.Kind)
}

// ValidationErrors is the full set of violations found in one pass.
// Validation collects every violation rather than stopping at the first.
type ValidationErrors []ValidationError

// Error joins all violations, one per line.
func (es ValidationErrors) Error() string {
	if len(es) == 0 {
		return "schema: no validation errors"
	}
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Filter returns the subset of violations with the given kind.
func (es ValidationErrors) Filter(kind ErrorKind) ValidationErrors {
	var out ValidationErrors
	for _, e := range es {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
