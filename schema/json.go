package schema

import "bytes"

// CloseCacheJSON repairs a cache file that was left open by an appending
// writer: trailing whitespace and at most one trailing comma are stripped
// and the two closing braces (cache object, then document) are appended.
// The input is not modified. Callers retry parsing with the result after
// a parse failure; the repair is purely textual and may still not parse.
func CloseCacheJSON(data []byte) []byte {
	trimmed := bytes.TrimRight(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil
	}
	if trimmed[len(trimmed)-1] == ',' {
		trimmed = trimmed[:len(trimmed)-1]
	}
	out := make([]byte, 0, len(trimmed)+2)
	out = append(out, trimmed...)
	return append(out, '}', '}')
}
