// Package version provides the semantic version value type used by the
// update engine. Ordering is by (major, minor, patch) with prerelease
// versions sorting below their release counterparts.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Version is an immutable semantic version. The zero Version means
// "no version"; use IsZero to test for it before comparing.
type Version struct {
	sv *semver.Version
}

// Parse parses a semantic version string. A leading "v" is accepted.
func Parse(s string) (Version, error) {
	sv, err := semver.NewVersion(strings.TrimSpace(s))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{sv: sv}, nil
}

// MustParse is Parse for trusted inputs; it panics on error.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v carries no parsed version.
func (v Version) IsZero() bool {
	return v.sv == nil
}

// String returns the normalized form without a "v" prefix, or "" for the
// zero Version.
func (v Version) String() string {
	if v.sv == nil {
		return ""
	}
	return v.sv.String()
}

// Compare orders two versions: -1 if v < o, 0 if equal, 1 if v > o.
func (v Version) Compare(o Version) int {
	return v.sv.Compare(o.sv)
}

// GreaterThan reports v > o.
func (v Version) GreaterThan(o Version) bool {
	return v.Compare(o) > 0
}

// LessThan reports v < o.
func (v Version) LessThan(o Version) bool {
	return v.Compare(o) < 0
}

// Equal reports v == o.
func (v Version) Equal(o Version) bool {
	return v.Compare(o) == 0
}

// Satisfies reports whether v meets the minimum bound. A nil minimum means
// no constraint and is satisfied by every version.
func (v Version) Satisfies(minimum *Version) bool {
	if minimum == nil {
		return true
	}
	return v.Compare(*minimum) >= 0
}

// MarshalText implements encoding.TextMarshaler, so Version fields encode
// as plain strings in JSON and TOML.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML encodes the version as a plain string.
func (v Version) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML decodes a version from a YAML scalar.
func (v *Version) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	return v.UnmarshalText([]byte(s))
}
