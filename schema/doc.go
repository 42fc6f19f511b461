// Package schema defines the persisted model of a kernel-tuning cache
// document and the semantic validation rules over it.
//
// A cache document records every parameter configuration attempted while
// searching for the fastest kernel variant on a given device and problem
// size. The on-disk form is a single UTF-8 JSON object with a fixed header
// (schema_version, device_name, kernel_name, problem_size, tune_params_keys,
// tune_params, objective) and a "cache" object mapping canonical
// configuration keys to result lines.
//
// # Tagged variants
//
// Fields whose JSON shape is a union are modeled as tagged variants rather
// than loosely typed values:
//
//   - TimeValue: a measured runtime (JSON number) or a failure
//     classification (one of the three sentinel strings).
//   - ProblemSize: an integer, a string, or an array of integers.
//   - Value: a scalar tune-parameter value (integer, float, boolean, or
//     string) with a canonical text form used for key encoding.
//
// # Ordering
//
// Lines preserves cache-line insertion order across marshal/unmarshal so
// that ranking tie-breaks stay deterministic after a persist/load cycle.
//
// # Validation
//
// ValidateDocument and ValidateRecord collect every violation they find
// instead of stopping at the first. Each violation carries a field path
// (for example `cache["0,0"].compile_time`) and an ErrorKind. Checks
// that require decoding configuration keys live next to the key codec,
// in the store package.
package schema
