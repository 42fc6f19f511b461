package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ProblemSizeKind identifies the shape of a problem_size field.
type ProblemSizeKind int

const (
	// ProblemSizeInt is a single integer extent.
	ProblemSizeInt ProblemSizeKind = iota

	// ProblemSizeString is a free-form textual description.
	ProblemSizeString

	// ProblemSizeDims is a list of integer extents, one per dimension.
	ProblemSizeDims
)

// ProblemSize is the problem_size header field: an integer, a string, or
// an array of integers. The zero value is the integer 0.
type ProblemSize struct {
	kind ProblemSizeKind
	n    int64
	s    string
	dims []int64
}

// IntProblemSize returns a single-extent problem size.
func IntProblemSize(n int64) ProblemSize {
	return ProblemSize{kind: ProblemSizeInt, n: n}
}

// StringProblemSize returns a textual problem size.
func StringProblemSize(s string) ProblemSize {
	return ProblemSize{kind: ProblemSizeString, s: s}
}

// DimsProblemSize returns a multi-dimensional problem size.
func DimsProblemSize(dims ...int64) ProblemSize {
	copied := make([]int64, len(dims))
	copy(copied, dims)
	return ProblemSize{kind: ProblemSizeDims, dims: copied}
}

// Kind returns the shape of the problem size.
func (p ProblemSize) Kind() ProblemSizeKind { return p.kind }

// Int returns the integer extent, if the problem size is an integer.
func (p ProblemSize) Int() (int64, bool) { return p.n, p.kind == ProblemSizeInt }

// Str returns the text, if the problem size is a string.
func (p ProblemSize) Str() (string, bool) { return p.s, p.kind == ProblemSizeString }

// Dims returns a copy of the extents, if the problem size is a list.
func (p ProblemSize) Dims() ([]int64, bool) {
	if p.kind != ProblemSizeDims {
		return nil, false
	}
	out := make([]int64, len(p.dims))
	copy(out, p.dims)
	return out, true
}

// Equal reports whether two problem sizes have the same shape and content.
func (p ProblemSize) Equal(o ProblemSize) bool {
	if p.kind != o.kind {
		return false
	}
	switch p.kind {
	case ProblemSizeInt:
		return p.n == o.n
	case ProblemSizeString:
		return p.s == o.s
	default:
		if len(p.dims) != len(o.dims) {
			return false
		}
		for i := range p.dims {
			if p.dims[i] != o.dims[i] {
				return false
			}
		}
		return true
	}
}

// String renders the problem size for display: integers in decimal,
// strings verbatim, dimension lists as WxHx... extents.
func (p ProblemSize) String() string {
	switch p.kind {
	case ProblemSizeInt:
		return strconv.FormatInt(p.n, 10)
	case ProblemSizeString:
		return p.s
	default:
		parts := make([]string, len(p.dims))
		for i, d := range p.dims {
			parts[i] = strconv.FormatInt(d, 10)
		}
		return strings.Join(parts, "x")
	}
}

// MarshalJSON encodes the problem size in its declared shape.
func (p ProblemSize) MarshalJSON() ([]byte, error) {
	switch p.kind {
	case ProblemSizeInt:
		return []byte(strconv.FormatInt(p.n, 10)), nil
	case ProblemSizeString:
		return json.Marshal(p.s)
	default:
		return json.Marshal(p.dims)
	}
}

// UnmarshalJSON decodes an integer, string, or integer array.
func (p *ProblemSize) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return fmt.Errorf("schema: empty problem_size")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = StringProblemSize(s)
		return nil
	case '[':
		var dims []int64
		if err := json.Unmarshal(data, &dims); err != nil {
			return fmt.Errorf("schema: problem_size array must hold integers: %w", err)
		}
		*p = DimsProblemSize(dims...)
		return nil
	default:
		var n int64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("schema: problem_size must be an integer, string, or integer array: %w", err)
		}
		*p = IntProblemSize(n)
		return nil
	}
}
