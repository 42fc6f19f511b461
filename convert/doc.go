// Package convert upgrades cache documents between schema versions and
// exports them to the T4 auto-tuning interchange format.
//
// Upgrades operate on raw documents (map[string]any from LoadRaw,
// ReadRaw, or Raw) because a file at an old version cannot be parsed
// into the current typed model yet. Apply walks the registered version
// chain one hop at a time and validates the document against each
// version's embedded JSON Schema along the way; files that predate
// schema versioning are first stamped with UpgradeUnversioned.
//
// The registry currently holds a single version. The chain machinery is
// what makes the next version a data change rather than a code change:
// register the semver, the upgrade step, and the embedded schema.
package convert
