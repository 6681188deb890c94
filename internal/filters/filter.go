// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
)

// Filter decides whether an extracted line should be dropped before it
// becomes a candidate. Run returns true to drop.
type Filter interface {
	Run(ld *credentials.LineData) bool
	Name() string
}

// allowlistRule names a placeholder shape that is never a real credential.
type allowlistRule struct {
	pattern *regexp.Regexp
	label   string
}

// valueAllowlist is evaluated in order; the first match wins.
var valueAllowlist = []allowlistRule{
	{pattern: regexp.MustCompile(`^ENC\(.*\)$`), label: "encrypted"},
	{pattern: regexp.MustCompile(`^ENC\[.*\]$`), label: "encrypted"},
	{pattern: regexp.MustCompile(`^\$\{.*\}$`), label: "interpolation"},
	{pattern: regexp.MustCompile(`^#\{.*\}$`), label: "interpolation"},
	{pattern: regexp.MustCompile(`^\{\{.*\}\}$`), label: "template"},
	{pattern: regexp.MustCompile(`^<.*>$`), label: "placeholder"},
	{pattern: regexp.MustCompile(`^\*{3,}$`), label: "masked"},
	{pattern: regexp.MustCompile(`(?i)^x{3,}$`), label: "masked"},
}

// ValueAllowlistCheck drops lines without a value and lines whose value is a
// known placeholder.
type ValueAllowlistCheck struct{}

func NewValueAllowlistCheck() *ValueAllowlistCheck {
	return &ValueAllowlistCheck{}
}

func (f *ValueAllowlistCheck) Name() string {
	return "ValueAllowlistCheck"
}

func (f *ValueAllowlistCheck) Run(ld *credentials.LineData) bool {
	if ld == nil || ld.Value == nil {
		return true
	}
	value := strings.TrimSpace(*ld.Value)
	for _, rule := range valueAllowlist {
		if rule.pattern.MatchString(value) {
			return true
		}
	}
	return false
}

// ValueEmptyCheck drops lines whose value is missing or blank.
type ValueEmptyCheck struct{}

func NewValueEmptyCheck() *ValueEmptyCheck {
	return &ValueEmptyCheck{}
}

func (f *ValueEmptyCheck) Name() string {
	return "ValueEmptyCheck"
}

func (f *ValueEmptyCheck) Run(ld *credentials.LineData) bool {
	return ld == nil || ld.Value == nil || strings.TrimSpace(*ld.Value) == ""
}

// ValueShortCheck drops values shorter than MinLength runes.
type ValueShortCheck struct {
	MinLength int
}

// DefaultMinValueLength is the shortest value a keyword rule reports.
const DefaultMinValueLength = 4

func NewValueShortCheck(minLength int) *ValueShortCheck {
	if minLength <= 0 {
		minLength = DefaultMinValueLength
	}
	return &ValueShortCheck{MinLength: minLength}
}

func (f *ValueShortCheck) Name() string {
	return "ValueShortCheck"
}

func (f *ValueShortCheck) Run(ld *credentials.LineData) bool {
	if ld == nil || ld.Value == nil {
		return true
	}
	return len([]rune(*ld.Value)) < f.MinLength
}

// Group is an ordered set of filters applied together.
type Group struct {
	name    string
	filters []Filter
}

func NewGroup(name string, filters ...Filter) *Group {
	return &Group{name: name, filters: filters}
}

func (g *Group) Name() string {
	return g.name
}

// Run reports whether any filter in the group drops ld, together with the
// name of that filter.
func (g *Group) Run(ld *credentials.LineData) (bool, string) {
	for _, f := range g.filters {
		if f.Run(ld) {
			return true, f.Name()
		}
	}
	return false, ""
}

const (
	GeneralPattern = "GeneralPattern"
	GeneralKeyword = "GeneralKeyword"
)

// Groups resolves the filter_type named by a rule.
type Groups map[string]*Group

// DefaultGroups returns the built-in groups with the default minimum value
// length.
func DefaultGroups() Groups {
	return NewGroups(DefaultMinValueLength)
}

// NewGroups returns the built-in groups. Pattern rules match a precise shape,
// so only missing values are dropped; keyword rules also drop placeholders
// and values shorter than minLength.
func NewGroups(minLength int) Groups {
	return Groups{
		GeneralPattern: NewGroup(GeneralPattern,
			NewValueEmptyCheck(),
		),
		GeneralKeyword: NewGroup(GeneralKeyword,
			NewValueEmptyCheck(),
			NewValueAllowlistCheck(),
			NewValueShortCheck(minLength),
		),
	}
}

func (g Groups) Get(name string) (*Group, error) {
	group, ok := g[name]
	if !ok {
		return nil, fmt.Errorf("unknown filter type %q", name)
	}
	return group, nil
}
