// SPDX-License-Identifier: Apache-2.0

package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

//go:embed config.yaml
var defaultConfig []byte

// ExtensionSet is a set of lower-cased file extensions including the leading dot.
// It is read as a plain YAML sequence.
type ExtensionSet map[string]struct{}

// NewExtensionSet builds a set from the given extensions.
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		set[normalizeExt(ext)] = struct{}{}
	}
	return set
}

// Contains reports whether ext is a member of the set.
func (s ExtensionSet) Contains(ext string) bool {
	_, ok := s[normalizeExt(ext)]
	return ok
}

func (s *ExtensionSet) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var exts []string
	if err := unmarshal(&exts); err != nil {
		return fmt.Errorf("extension set must be a list of strings: %w", err)
	}
	*s = NewExtensionSet(exts...)
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ValidationConfig controls how provider verification calls are issued.
type ValidationConfig struct {
	// Workers is the maximum number of verification calls in flight.
	Workers int `yaml:"workers"`
	// TimeoutSeconds bounds each individual verification call.
	TimeoutSeconds float64 `yaml:"timeout_seconds"`
	// RatePerSecond and Burst configure one limiter per provider.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// Timeout returns the per-call timeout as a duration.
func (v ValidationConfig) Timeout() time.Duration {
	return time.Duration(v.TimeoutSeconds * float64(time.Second))
}

// FiltersConfig tunes the filters applied to keyword rule values.
type FiltersConfig struct {
	// MinValueLength is the shortest value a keyword rule reports, in runes.
	MinValueLength int `yaml:"min_value_length"`
}

// Config is the read-only collaborator consulted during extraction and validation.
type Config struct {
	SourceExtensions ExtensionSet     `yaml:"source_extensions"`
	SourceQuoteExt   ExtensionSet     `yaml:"source_quote_ext"`
	Filters          FiltersConfig    `yaml:"filters"`
	Validation       ValidationConfig `yaml:"validation"`
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := Parse(defaultConfig)
	if err != nil {
		panic("embedded config is invalid: " + err.Error())
	}
	return cfg
}

// Load reads a YAML configuration file. Fields missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes and validates a configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.Filters.MinValueLength <= 0 {
		return fmt.Errorf("filters.min_value_length must be positive (got %d)", c.Filters.MinValueLength)
	}
	v := c.Validation
	if v.Workers <= 0 {
		return fmt.Errorf("validation.workers must be positive (got %d)", v.Workers)
	}
	if v.Workers > 64 {
		return fmt.Errorf("validation.workers too large (got %d, max 64)", v.Workers)
	}
	if v.TimeoutSeconds <= 0 {
		return fmt.Errorf("validation.timeout_seconds must be positive (got %.2f)", v.TimeoutSeconds)
	}
	if v.RatePerSecond <= 0 {
		return fmt.Errorf("validation.rate_per_second must be positive (got %.2f)", v.RatePerSecond)
	}
	if v.Burst <= 0 {
		return fmt.Errorf("validation.burst must be positive (got %d)", v.Burst)
	}
	return nil
}
