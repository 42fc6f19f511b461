package keycodec

import "errors"

// Sentinel errors for key decoding.
var (
	// ErrArity is returned when a key's value count differs from the
	// expected number of tune parameters.
	ErrArity = errors.New("keycodec: wrong number of values in key")

	// ErrMalformedKey is returned when a key cannot be decoded, such as an
	// unterminated quoted string or a trailing escape.
	ErrMalformedKey = errors.New("keycodec: malformed key")
)
