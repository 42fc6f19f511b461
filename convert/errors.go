package convert

import "errors"

// Sentinel errors for upgrade-path resolution.
var (
	// ErrMissingVersion indicates a document with no schema_version field.
	// Legacy files predating the field can be stamped with
	// UpgradeUnversioned.
	ErrMissingVersion = errors.New("convert: document carries no schema_version")

	// ErrUnknownVersion indicates a version that is not in the registry,
	// whether malformed, unreleased, or newer than this build knows.
	ErrUnknownVersion = errors.New("convert: unrecognized schema version")

	// ErrDowngrade indicates a target version older than the document's.
	// Downgrade steps are not maintained.
	ErrDowngrade = errors.New("convert: target version precedes the document's version")
)
