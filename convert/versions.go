package convert

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// step upgrades a raw document in place from one registered version to
// the next. Steps change content only; the chain stamps schema_version
// after each hop.
type step func(doc map[string]any) error

// chain is an ordered upgrade path: versions ascending, steps keyed by
// the version they upgrade from.
type chain struct {
	versions []*semver.Version
	steps    map[string]step
	schema   func(version string) (*jsonschema.Schema, error)
}

// newChain sorts the versions so registration order never matters.
func newChain(versions []*semver.Version, steps map[string]step, schema func(string) (*jsonschema.Schema, error)) *chain {
	sorted := make([]*semver.Version, len(versions))
	copy(sorted, versions)
	sort.Sort(semver.Collection(sorted))
	return &chain{versions: sorted, steps: steps, schema: schema}
}

// std is the registered upgrade path for cache documents. A new schema
// version appends its semver here and its upgrade step under the
// version it upgrades from.
var std = newChain(
	[]*semver.Version{
		semver.MustParse("1.0.0"),
	},
	map[string]step{},
	cacheSchema,
)

// Versions returns the registered schema versions, oldest first.
func Versions() []string {
	out := make([]string, len(std.versions))
	for i, v := range std.versions {
		out[i] = v.String()
	}
	return out
}

// Latest returns the newest registered schema version.
func Latest() string {
	return std.versions[len(std.versions)-1].String()
}

// Oldest returns the first registered schema version, the one stamped
// onto files that predate schema versioning.
func Oldest() string {
	return std.versions[0].String()
}
