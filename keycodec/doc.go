// Package keycodec encodes tune-parameter values into the canonical
// configuration keys of a cache document and decodes them back.
//
// A key is the comma-joined canonical text of the parameter values in
// tune_params_keys order: "256,0.25,true,off". Decoding is typed: each
// segment is read back as the most specific scalar it parses as
// (integer, then float, then boolean, then string).
//
// Two escape layers keep the mapping bijective. String values that would
// be misread as another scalar (or that are empty or start with a double
// quote) are wrapped in double quotes with backslash escaping, and commas
// and backslashes inside any rendered segment are escaped before joining.
// Keys written by older tuners never contain escapes and decode
// unchanged.
package keycodec
