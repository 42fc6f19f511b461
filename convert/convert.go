package convert

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Apply upgrades a raw cache document in place to the target version,
// stepping through every registered version in between. An empty target
// means the latest. The document is validated against its own version's
// schema before the first hop and against each hop's schema after it.
//
// Raw documents come from LoadRaw, ReadRaw, or Raw.
func Apply(doc map[string]any, target string) error {
	return std.apply(doc, target)
}

// UpgradeUnversioned stamps a document that predates schema versioning
// with the oldest registered version, then validates it. The stamp is
// removed again if validation fails.
func UpgradeUnversioned(doc map[string]any) error {
	if v, ok := doc["schema_version"]; ok {
		return fmt.Errorf("convert: document already carries schema_version %v", v)
	}
	oldest := Oldest()
	doc["schema_version"] = oldest
	if err := std.validate(doc, oldest); err != nil {
		delete(doc, "schema_version")
		return err
	}
	return nil
}

// ValidateAgainstSchema checks a raw document against the embedded JSON
// Schema of a registered version.
func ValidateAgainstSchema(doc map[string]any, version string) error {
	if _, err := std.index(version); err != nil {
		return err
	}
	return std.validate(doc, version)
}

// apply runs the upgrade loop over the chain.
func (c *chain) apply(doc map[string]any, target string) error {
	cur, err := docVersion(doc)
	if err != nil {
		return err
	}
	from, err := c.index(cur)
	if err != nil {
		return err
	}
	if target == "" {
		target = c.versions[len(c.versions)-1].String()
	}
	to, err := c.index(target)
	if err != nil {
		return err
	}
	if to < from {
		return fmt.Errorf("%w: document is %s, target is %s", ErrDowngrade, cur, target)
	}

	if err := c.validate(doc, c.versions[from].String()); err != nil {
		return err
	}
	for i := from; i < to; i++ {
		src := c.versions[i].String()
		next := c.versions[i+1].String()
		stepFn, ok := c.steps[src]
		if !ok {
			return fmt.Errorf("convert: no upgrade step from version %s", src)
		}
		if err := stepFn(doc); err != nil {
			return fmt.Errorf("convert: upgrading %s to %s: %w", src, next, err)
		}
		doc["schema_version"] = next
		if err := c.validate(doc, next); err != nil {
			return err
		}
	}
	return nil
}

// index resolves a version string to its position in the chain.
func (c *chain) index(version string) (int, error) {
	v, err := semver.StrictNewVersion(version)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	for i, r := range c.versions {
		if r.Equal(v) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownVersion, version)
}

// validate checks the document against one version's schema.
func (c *chain) validate(doc map[string]any, version string) error {
	sch, err := c.schema(version)
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return fmt.Errorf("convert: document does not satisfy schema %s: %w", version, err)
	}
	return nil
}

// docVersion reads the schema_version field of a raw document.
func docVersion(doc map[string]any) (string, error) {
	raw, ok := doc["schema_version"]
	if !ok {
		return "", ErrMissingVersion
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: schema_version is %T, want a string", ErrUnknownVersion, raw)
	}
	return s, nil
}
