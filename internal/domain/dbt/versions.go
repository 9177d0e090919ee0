// Package dbt resolves which supported dbt version governs a CLI run.
//
// The installed dbt reports a free-form version string ("1.7.3"). That
// string is mapped onto a VersionOption from an ordered VersionSet; when
// no option matches, a fallback is negotiated with the operator once per
// Session.
package dbt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
)

// VersionOption identifies a dbt minor release line the CLI supports.
type VersionOption string

// Supported dbt release lines.
const (
	V1_4 VersionOption = "1.4"
	V1_5 VersionOption = "1.5"
	V1_6 VersionOption = "1.6"
	V1_7 VersionOption = "1.7"
	V1_8 VersionOption = "1.8"
	V1_9 VersionOption = "1.9"
)

// String returns the identifier.
func (v VersionOption) String() string {
	return string(v)
}

// DefaultSupportedVersions lists the built-in release lines in ascending order.
func DefaultSupportedVersions() []VersionOption {
	return []VersionOption{V1_4, V1_5, V1_6, V1_7, V1_8, V1_9}
}

// DefaultLegacyFallbacks maps retired release lines to the option used in
// their place. dbt 1.3 projects still compile with 1.4 semantics.
func DefaultLegacyFallbacks() map[string]VersionOption {
	return map[string]VersionOption{"1.3": V1_4}
}

var identifierPattern = regexp.MustCompile(`^[0-9]+\.[0-9]+$`)

type legacyBridge struct {
	prefix string
	target VersionOption
}

// VersionSet is a non-empty, strictly ascending list of version options
// plus the legacy bridges used when computing fallbacks.
type VersionSet struct {
	versions []VersionOption
	legacy   []legacyBridge
}

// NewVersionSet validates versions and legacy bridges. Every identifier
// must look like <major>.<minor>, versions must be strictly ascending,
// and each legacy bridge must target a member of the set.
func NewVersionSet(versions []VersionOption, legacy map[string]VersionOption) (*VersionSet, error) {
	if len(versions) == 0 {
		return nil, fmt.Errorf("supported dbt versions must not be empty")
	}

	seen := make(map[VersionOption]bool, len(versions))
	for i, v := range versions {
		if !identifierPattern.MatchString(string(v)) || !semver.IsValid(canonical(v)) {
			return nil, fmt.Errorf("invalid dbt version identifier %q: want <major>.<minor>", v)
		}
		if i > 0 && semver.Compare(canonical(versions[i-1]), canonical(v)) >= 0 {
			return nil, fmt.Errorf("supported dbt versions must be strictly ascending: %s is not after %s", v, versions[i-1])
		}
		seen[v] = true
	}

	bridges := make([]legacyBridge, 0, len(legacy))
	for prefix, target := range legacy {
		if !identifierPattern.MatchString(prefix) || !semver.IsValid("v"+prefix) {
			return nil, fmt.Errorf("invalid legacy dbt version %q: want <major>.<minor>", prefix)
		}
		if seen[VersionOption(prefix)] {
			return nil, fmt.Errorf("legacy dbt version %s is already supported", prefix)
		}
		if !seen[target] {
			return nil, fmt.Errorf("legacy dbt version %s falls back to %s, which is not supported", prefix, target)
		}
		bridges = append(bridges, legacyBridge{prefix: prefix, target: target})
	}
	sort.Slice(bridges, func(i, j int) bool {
		return semver.Compare("v"+bridges[i].prefix, "v"+bridges[j].prefix) < 0
	})

	out := make([]VersionOption, len(versions))
	copy(out, versions)
	return &VersionSet{versions: out, legacy: bridges}, nil
}

// DefaultVersionSet returns the built-in 1.4 through 1.9 set with the 1.3 bridge.
func DefaultVersionSet() *VersionSet {
	set, err := NewVersionSet(DefaultSupportedVersions(), DefaultLegacyFallbacks())
	if err != nil {
		panic(err)
	}
	return set
}

// ParseVersionSet builds a set from settings values. Empty versions select
// the defaults. A nil legacy map keeps those default bridges whose target
// is in the set; a non-nil map, even an empty one, replaces them.
func ParseVersionSet(versions []string, legacy map[string]string) (*VersionSet, error) {
	options := DefaultSupportedVersions()
	if len(versions) > 0 {
		options = make([]VersionOption, 0, len(versions))
		for _, v := range versions {
			options = append(options, VersionOption(strings.TrimSpace(v)))
		}
	}

	var bridges map[string]VersionOption
	if legacy == nil {
		members := make(map[VersionOption]bool, len(options))
		for _, v := range options {
			members[v] = true
		}
		bridges = make(map[string]VersionOption)
		for prefix, target := range DefaultLegacyFallbacks() {
			if members[target] && !members[VersionOption(prefix)] {
				bridges[prefix] = target
			}
		}
	} else {
		bridges = make(map[string]VersionOption, len(legacy))
		for prefix, target := range legacy {
			bridges[strings.TrimSpace(prefix)] = VersionOption(strings.TrimSpace(target))
		}
	}

	return NewVersionSet(options, bridges)
}

// Versions returns a copy of the ordered options.
func (s *VersionSet) Versions() []VersionOption {
	out := make([]VersionOption, len(s.versions))
	copy(out, s.versions)
	return out
}

// LegacyFallbacks returns a copy of the legacy bridges.
func (s *VersionSet) LegacyFallbacks() map[string]VersionOption {
	out := make(map[string]VersionOption, len(s.legacy))
	for _, b := range s.legacy {
		out[b.prefix] = b.target
	}
	return out
}

// Oldest returns the first option.
func (s *VersionSet) Oldest() VersionOption {
	return s.versions[0]
}

// Latest returns the newest option.
func (s *VersionSet) Latest() VersionOption {
	return s.versions[len(s.versions)-1]
}

// Contains reports whether v is a member of the set.
func (s *VersionSet) Contains(v VersionOption) bool {
	for _, o := range s.versions {
		if o == v {
			return true
		}
	}
	return false
}

// RangeMessage renders the inclusive range, e.g. "1.4.* - 1.9.*".
func (s *VersionSet) RangeMessage() string {
	return fmt.Sprintf("%s.* - %s.*", s.Oldest(), s.Latest())
}

// Match returns the first option, in ascending order, that raw starts
// with followed by a dot: "1.7.3" matches "1.7" but "1.70.0" does not.
func (s *VersionSet) Match(raw string) (VersionOption, bool) {
	for _, v := range s.versions {
		if strings.HasPrefix(raw, string(v)+".") {
			return v, true
		}
	}
	return "", false
}

// Fallback returns the option substituted for raw when it is not
// supported: the bridge target for a legacy release line, otherwise the
// newest option. It does not consult Match.
func (s *VersionSet) Fallback(raw string) VersionOption {
	for _, b := range s.legacy {
		if strings.HasPrefix(raw, b.prefix+".") {
			return b.target
		}
	}
	return s.Latest()
}

func canonical(v VersionOption) string {
	return "v" + string(v)
}
