// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

// ruleSchemaTemplate constrains one rule definition. The validation name
// disjunction is filled in from the validators known to the caller.
const ruleSchemaTemplate = `
#ValidationName: %s

#Rule: {
	name:     string & != ""
	severity: "critical" | "high" | "medium" | "low" | "info"
	type:     "pattern" | "keyword"
	values: [string, ...string]
	filter_type?: "GeneralPattern" | "GeneralKeyword"
	use_ml:       bool
	validations?: [...#ValidationName]
	required_substrings?: [...string]
}
`

// requiredFields are reported together when absent, before schema checks run.
var requiredFields = []string{"name", "severity", "type", "values", "use_ml"}

// Schema validates raw rule definitions with CUE and decodes them.
// It is safe for concurrent use.
type Schema struct {
	mu   sync.Mutex
	ctx  *cue.Context
	rule cue.Value
}

// NewSchema builds the rule schema. knownValidations lists the validator
// names a rule may reference; when empty any name is accepted.
func NewSchema(knownValidations ...string) (*Schema, error) {
	names := "string"
	if len(knownValidations) > 0 {
		quoted := make([]string, 0, len(knownValidations))
		for _, name := range knownValidations {
			quoted = append(quoted, strconv.Quote(name))
		}
		sort.Strings(quoted)
		names = strings.Join(quoted, " | ")
	}

	ctx := cuecontext.New()
	root := ctx.CompileString(fmt.Sprintf(ruleSchemaTemplate, names))
	if err := root.Err(); err != nil {
		return nil, fmt.Errorf("failed to compile rule schema: %w", err)
	}
	rule := root.LookupPath(cue.ParsePath("#Rule"))
	if err := rule.Err(); err != nil {
		return nil, fmt.Errorf("rule schema has no #Rule definition: %w", err)
	}
	return &Schema{ctx: ctx, rule: rule}, nil
}

// decode validates raw against #Rule and decodes it into a ruleConfig.
func (s *Schema) decode(raw map[string]interface{}) (ruleConfig, error) {
	var missing []string
	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return ruleConfig{}, fmt.Errorf("malformed rule config file: contain rule with missing fields: %v", missing)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	value := s.ctx.Encode(raw)
	if err := value.Err(); err != nil {
		return ruleConfig{}, fmt.Errorf("malformed rule config file: %w", err)
	}
	unified := s.rule.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return ruleConfig{}, fmt.Errorf("malformed rule config file: invalid fields %v: %w", errorFields(err), err)
	}

	var cfg ruleConfig
	if err := unified.Decode(&cfg); err != nil {
		return ruleConfig{}, fmt.Errorf("malformed rule config file: %w", err)
	}
	return cfg, nil
}

// errorFields collects the top-level field names named by CUE errors.
func errorFields(err error) []string {
	seen := map[string]bool{}
	var fields []string
	for _, e := range cueerrors.Errors(err) {
		path := e.Path()
		if len(path) == 0 {
			continue
		}
		field := path[0]
		if strings.HasPrefix(field, "#") && len(path) > 1 {
			field = path[1]
		}
		if !seen[field] {
			seen[field] = true
			fields = append(fields, field)
		}
	}
	return fields
}
