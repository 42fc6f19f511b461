package merge

import (
	"errors"
	"fmt"
)

// Sentinel errors for merge operations.
var (
	// ErrTooFewInputs is returned when fewer than two caches are given.
	ErrTooFewInputs = errors.New("merge: need at least two cache files")

	// ErrHeaderMismatch is returned when the inputs do not describe the
	// same tuning session. The concrete error is a HeaderMismatchError
	// naming the disagreeing field.
	ErrHeaderMismatch = errors.New("merge: cache headers do not match")
)

// HeaderMismatchError reports the first header field on which an input
// disagrees with the first input.
type HeaderMismatchError struct {
	// Input names the disagreeing input: the file path in Files, the
	// 1-based position in Documents.
	Input string

	// Field is the disagreeing header field, in its JSON spelling.
	Field string
}

// Error returns the error message.
func (e *HeaderMismatchError) Error() string {
	return fmt.Sprintf("merge: %s disagrees on %s", e.Input, e.Field)
}

// Is reports whether this error matches the target.
func (e *HeaderMismatchError) Is(target error) bool {
	return target == ErrHeaderMismatch
}
