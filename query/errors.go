package query

import "errors"

// ErrUnknownParam indicates a filter naming a parameter the document
// does not declare.
var ErrUnknownParam = errors.New("query: unknown tune parameter")
