// Package config loads the CLI settings file and defines the user-facing
// error type shared by the CLI and the dbt domain.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the settings file looked up in the working directory
// when --config is not given.
const DefaultPath = "lightdash.yaml"

// DefaultDbtBinary is the executable probed for its version.
const DefaultDbtBinary = "dbt"

// Format is a settings file encoding.
type Format string

const (
	// FormatYAML is used for .yaml, .yml and unknown extensions.
	FormatYAML Format = "yaml"
	// FormatTOML is used for .toml files.
	FormatTOML Format = "toml"
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// DbtSettings configures how dbt is located and which versions are accepted.
// Empty fields mean "use the built-in defaults".
type DbtSettings struct {
	Binary            string            `yaml:"binary,omitempty" toml:"binary,omitempty"`
	SupportedVersions []string          `yaml:"supported_versions,omitempty" toml:"supported_versions,omitempty"`
	LegacyFallbacks   map[string]string `yaml:"legacy_fallbacks,omitempty" toml:"legacy_fallbacks,omitempty"`
}

// Settings is the root of the settings file.
type Settings struct {
	Dbt DbtSettings `yaml:"dbt" toml:"dbt"`

	// Path is the file the settings were read from; empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// Default returns settings with no file behind them.
func Default() Settings {
	return Settings{Dbt: DbtSettings{Binary: DefaultDbtBinary}}
}

// HasCustomVersions reports whether the file overrides the supported set.
func (s Settings) HasCustomVersions() bool {
	return len(s.Dbt.SupportedVersions) > 0
}

// Parse decodes settings in the given format and fills defaults.
func Parse(data []byte, format Format) (Settings, error) {
	var s Settings
	var err error
	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &s)
	default:
		err = yaml.Unmarshal(data, &s)
	}
	if err != nil {
		return Settings{}, err
	}
	if strings.TrimSpace(s.Dbt.Binary) == "" {
		s.Dbt.Binary = DefaultDbtBinary
	}
	return s, nil
}

// Load reads settings from path. With an empty path it tries DefaultPath
// and falls back to Default when that file does not exist; an explicit
// path that does not exist is an error.
func Load(path string) (Settings, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if explicit {
				return Settings{}, NewConfigNotFoundError(path)
			}
			return Default(), nil
		}
		return Settings{}, NewConfigParseError(path, err)
	}

	s, err := Parse(data, FormatForPath(path))
	if err != nil {
		return Settings{}, NewConfigParseError(path, err)
	}
	s.Path = path
	return s, nil
}
