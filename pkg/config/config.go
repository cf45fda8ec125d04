// Package config loads formatter settings from shape.toml or .shape.yaml.
package config

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vito/shape/pkg/format"
)

// FileNames are the configuration files looked for in each directory, in
// order of preference.
var FileNames = []string{"shape.toml", ".shape.yaml", ".shape.yml"}

// Config represents a shape.toml project configuration file.
type Config struct {
	// LineWidth is the column limit lines are fitted to.
	LineWidth int `toml:"line_width" yaml:"line_width"`

	// IndentWidth is the number of columns per indentation level, or the
	// display width of a tab when IndentStyle is "tabs".
	IndentWidth int `toml:"indent_width" yaml:"indent_width"`

	// IndentStyle is "spaces" or "tabs".
	IndentStyle format.IndentStyle `toml:"indent_style" yaml:"indent_style"`

	// TrailingCommas adds a comma after the last item of lists that break.
	TrailingCommas bool `toml:"trailing_commas" yaml:"trailing_commas"`

	// Extensions are the file extensions formatted when walking directories.
	Extensions []string `toml:"extensions" yaml:"extensions"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	opts := format.DefaultOptions()
	return &Config{
		LineWidth:      opts.LineWidth,
		IndentWidth:    opts.IndentWidth,
		IndentStyle:    opts.IndentStyle,
		TrailingCommas: opts.TrailingCommas,
		Extensions:     []string{".js", ".mjs", ".cjs"},
	}
}

// Load reads the configuration file at path. Settings missing from the file
// keep their defaults.
func Load(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	config, err := Decode(filepath.Base(path), content)
	if err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	slog.Debug("loaded config", "path", path)
	return config, nil
}

// Decode parses content as TOML, or as YAML when name ends in .yaml or .yml.
// Unknown keys are an error.
func Decode(name string, content []byte) (*Config, error) {
	config := Default()
	switch filepath.Ext(name) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		if err := dec.Decode(config); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		md, err := toml.Decode(string(content), config)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Find searches for a configuration file starting from dir and walking up to
// parent directories, stopping at a .git boundary. It returns the path and
// the parsed config, or ("", Default(), nil) if none is found.
func Find(dir string) (string, *Config, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", nil, err
	}
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				config, err := Load(path)
				if err != nil {
					return "", nil, err
				}
				return path, config, nil
			}
		}

		// Stop at .git boundary
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return "", Default(), nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", Default(), nil
		}
		dir = parent
	}
}

// Validate checks the settings for values the formatter cannot use.
func (c *Config) Validate() error {
	if err := c.Options().Validate(); err != nil {
		return err
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return errors.Errorf("extension %q must start with a dot", ext)
		}
	}
	return nil
}

// Options converts the settings to formatter options.
func (c *Config) Options() format.Options {
	return format.Options{
		LineWidth:      c.LineWidth,
		IndentWidth:    c.IndentWidth,
		IndentStyle:    c.IndentStyle,
		TrailingCommas: c.TrailingCommas,
	}
}

// Matches reports whether path has one of the configured extensions.
func (c *Config) Matches(path string) bool {
	return slices.Contains(c.Extensions, filepath.Ext(path))
}

// Encode writes the configuration as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}
