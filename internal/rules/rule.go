// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
	"github.com/credsweeper/credsweeper-mcp/internal/filters"
)

type RuleType string

const (
	TypePattern RuleType = "pattern"
	TypeKeyword RuleType = "keyword"
)

const (
	FilterGeneralPattern = filters.GeneralPattern
	FilterGeneralKeyword = filters.GeneralKeyword
)

// ruleConfig is the decoded form of one schema-validated rule definition.
type ruleConfig struct {
	Name               string   `json:"name"`
	Severity           string   `json:"severity"`
	Type               string   `json:"type"`
	Values             []string `json:"values"`
	FilterType         string   `json:"filter_type"`
	UseML              bool     `json:"use_ml"`
	Validations        []string `json:"validations"`
	RequiredSubstrings []string `json:"required_substrings"`
}

// Rule is a compiled detection rule.
type Rule struct {
	Name        string
	Severity    credentials.Severity
	Type        RuleType
	Patterns    []*regexp.Regexp
	FilterType  string
	UseML       bool
	Validations []string
	// RequiredSubstrings, when set, lets a line be skipped unless its
	// lower-cased text contains at least one of them.
	RequiredSubstrings []string
}

// NewRule validates raw against the schema and compiles its patterns.
func (s *Schema) NewRule(raw map[string]interface{}) (*Rule, error) {
	cfg, err := s.decode(raw)
	if err != nil {
		return nil, err
	}

	severity, err := credentials.ParseSeverity(cfg.Severity)
	if err != nil {
		return nil, fmt.Errorf("malformed rule config file: severity: %w", err)
	}

	rule := &Rule{
		Name:        cfg.Name,
		Severity:    severity,
		Type:        RuleType(cfg.Type),
		FilterType:  cfg.FilterType,
		UseML:       cfg.UseML,
		Validations: cfg.Validations,
	}
	for _, sub := range cfg.RequiredSubstrings {
		rule.RequiredSubstrings = append(rule.RequiredSubstrings, strings.ToLower(sub))
	}
	if rule.FilterType == "" {
		rule.FilterType = FilterGeneralPattern
		if rule.Type == TypeKeyword {
			rule.FilterType = FilterGeneralKeyword
		}
	}

	for i, value := range cfg.Values {
		var (
			pattern *regexp.Regexp
			err     error
		)
		switch rule.Type {
		case TypeKeyword:
			pattern, err = KeywordPattern(value)
		default:
			pattern, err = regexp.Compile(value)
		}
		if err != nil {
			return nil, fmt.Errorf("malformed rule config file: rule %q values[%d]: %w", cfg.Name, i, err)
		}
		rule.Patterns = append(rule.Patterns, pattern)
	}
	return rule, nil
}

// Wants reports whether line may contain a match, based on RequiredSubstrings.
func (r *Rule) Wants(line string) bool {
	if len(r.RequiredSubstrings) == 0 {
		return true
	}
	lower := strings.ToLower(line)
	for _, sub := range r.RequiredSubstrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
