package testutil

import (
	"fmt"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// BannerBuilder builds `dbt --version` output.
type BannerBuilder struct {
	installed  string
	latest     string
	plugins    []plugin
	preCore    bool
}

type plugin struct {
	name    string
	version string
}

// NewBanner creates a banner reporting the installed version.
func NewBanner(installed string) *BannerBuilder {
	return &BannerBuilder{installed: installed, latest: installed}
}

// WithLatest sets the latest release dbt reports.
func (b *BannerBuilder) WithLatest(version string) *BannerBuilder {
	b.latest = version
	return b
}

// WithPlugin adds an adapter plugin line.
func (b *BannerBuilder) WithPlugin(name, version string) *BannerBuilder {
	b.plugins = append(b.plugins, plugin{name: name, version: version})
	return b
}

// PreCore switches to the layout printed by dbt releases before 1.0,
// which has no "installed:" line.
func (b *BannerBuilder) PreCore() *BannerBuilder {
	b.preCore = true
	return b
}

// String renders the banner.
func (b *BannerBuilder) String() string {
	var sb strings.Builder

	if b.preCore {
		sb.WriteString(fmt.Sprintf("installed version: %s\n", b.installed))
		sb.WriteString(fmt.Sprintf("   latest version: %s\n", b.latest))
	} else {
		sb.WriteString("Core:\n")
		sb.WriteString(fmt.Sprintf("  - installed: %s\n", b.installed))
		if b.latest == b.installed {
			sb.WriteString(fmt.Sprintf("  - latest:    %s - Up to date!\n", b.latest))
		} else {
			sb.WriteString(fmt.Sprintf("  - latest:    %s - Update available!\n", b.latest))
		}
	}

	if len(b.plugins) > 0 {
		sb.WriteString("\nPlugins:\n")
		for _, p := range b.plugins {
			sb.WriteString(fmt.Sprintf("  - %s: %s - Up to date!\n", p.name, p.version))
		}
	}

	return sb.String()
}

// TestSettings mirrors the settings file layout.
type TestSettings struct {
	Dbt TestDbtSettings `yaml:"dbt" toml:"dbt"`
}

// TestDbtSettings mirrors the dbt section of the settings file.
type TestDbtSettings struct {
	Binary            string            `yaml:"binary,omitempty" toml:"binary,omitempty"`
	SupportedVersions []string          `yaml:"supported_versions,omitempty" toml:"supported_versions,omitempty"`
	LegacyFallbacks   map[string]string `yaml:"legacy_fallbacks,omitempty" toml:"legacy_fallbacks,omitempty"`
}

// SettingsBuilder builds settings files.
type SettingsBuilder struct {
	settings TestSettings
}

// NewSettingsBuilder creates an empty settings builder.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{}
}

// WithBinary sets dbt.binary.
func (b *SettingsBuilder) WithBinary(binary string) *SettingsBuilder {
	b.settings.Dbt.Binary = binary
	return b
}

// WithVersions sets dbt.supported_versions.
func (b *SettingsBuilder) WithVersions(versions ...string) *SettingsBuilder {
	b.settings.Dbt.SupportedVersions = versions
	return b
}

// WithLegacy adds a dbt.legacy_fallbacks entry.
func (b *SettingsBuilder) WithLegacy(prefix, target string) *SettingsBuilder {
	if b.settings.Dbt.LegacyFallbacks == nil {
		b.settings.Dbt.LegacyFallbacks = make(map[string]string)
	}
	b.settings.Dbt.LegacyFallbacks[prefix] = target
	return b
}

// Build returns the constructed settings.
func (b *SettingsBuilder) Build() TestSettings {
	return b.settings
}

// ToYAML encodes the settings as YAML.
func (s TestSettings) ToYAML() string {
	data, err := yaml.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(data)
}

// ToTOML encodes the settings as TOML.
func (s TestSettings) ToTOML() string {
	data, err := toml.Marshal(s)
	if err != nil {
		panic(err)
	}
	return string(data)
}
