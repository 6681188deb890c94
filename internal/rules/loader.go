// SPDX-License-Identifier: Apache-2.0

package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/credsweeper/credsweeper-mcp/internal/logging"
)

//go:embed config.yaml
var defaultRules []byte

// ParseRules decodes a YAML list of rule definitions. A malformed rule is
// skipped and its error collected; the rules that did load are returned
// alongside the joined error. Only an unreadable document yields no rules.
func ParseRules(data []byte, schema *Schema) ([]*Rule, error) {
	var raws []map[string]interface{}
	if err := yaml.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to unmarshal rules: %w", err)
	}

	rules := make([]*Rule, 0, len(raws))
	var errs []error
	for i, raw := range raws {
		rule, err := schema.NewRule(raw)
		if err != nil {
			name, _ := raw["name"].(string)
			logging.Logger.Warnw("skipping rule", "index", i, "name", name, "error", err)
			errs = append(errs, fmt.Errorf("rule %d (%q): %w", i, name, err))
			continue
		}
		rules = append(rules, rule)
	}
	return rules, errors.Join(errs...)
}

// LoadRules reads and parses a rule file.
func LoadRules(path string, schema *Schema) ([]*Rule, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read rules %q: %w", path, err)
	}
	return ParseRules(data, schema)
}

// DefaultRules parses the embedded rule set.
func DefaultRules(schema *Schema) ([]*Rule, error) {
	return ParseRules(defaultRules, schema)
}
