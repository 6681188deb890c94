// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/credsweeper/credsweeper-mcp/internal/config"
)

// commentStarts lists line prefixes treated as comment openers in any language.
var commentStarts = []string{"//", "*", "#", "/*", "<!--", "%{", "%", "...", "(*", "--", "--[[", "#="}

// bashParamSplit finds the first shell boundary after a CLI argument value:
// a following flag, pipe, redirection (including fd redirections like 2>) or &.
// Word characters before > are matched in any script.
var bashParamSplit = regexp.MustCompile(`\s+(-|\||>|[\p{L}\p{N}_]+?>|&)`)

// Span is a half-open byte range in the scanned line.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// LineData is the structured data recovered from one line by one pattern.
// Optional fields are nil when the pattern has no such group, the group did
// not take part in the match, or the pattern did not match the line at all.
// A LineData is never modified after NewLineData returns.
type LineData struct {
	Line    string
	LineNum int
	Path    string

	Key             *string
	Separator       *string
	SeparatorSpan   *Span
	Value           *string
	Variable        *string
	ValueLeftQuote  *string
	ValueRightQuote *string

	config *config.Config
}

// NewLineData applies pattern to line and normalizes the captured groups.
// A nil pattern is a programming error.
func NewLineData(cfg *config.Config, line string, lineNum int, path string, pattern *regexp.Regexp) *LineData {
	if pattern == nil {
		panic("credentials: NewLineData called with nil pattern")
	}
	ld := &LineData{
		Line:    line,
		LineNum: lineNum,
		Path:    path,
		config:  cfg,
	}
	ld.setPatternMatchGroups(pattern)
	return ld
}

func (ld *LineData) setPatternMatchGroups(pattern *regexp.Regexp) {
	loc := pattern.FindStringSubmatchIndex(ld.Line)
	if loc == nil {
		return
	}
	m := match{pattern: pattern, line: ld.Line, loc: loc}

	ld.Key = m.group("keyword")
	ld.Separator = m.group("separator")
	if span, ok := m.span("separator"); ok {
		ld.SeparatorSpan = &span
	}
	ld.Value = m.group("value")
	ld.Variable = m.group("variable")
	ld.ValueLeftQuote = m.group("value_leftquote")
	ld.ValueRightQuote = m.group("value_rightquote")

	ld.cleanURLParameters()
	ld.cleanBashParameters()
	ld.sanitizeVariable()
}

// match answers "does the pattern define this group and did it participate".
type match struct {
	pattern *regexp.Regexp
	line    string
	loc     []int
}

func (m match) span(name string) (Span, bool) {
	i := m.pattern.SubexpIndex(name)
	if i < 0 || 2*i+1 >= len(m.loc) || m.loc[2*i] < 0 {
		return Span{}, false
	}
	return Span{Start: m.loc[2*i], End: m.loc[2*i+1]}, true
}

func (m match) group(name string) *string {
	span, ok := m.span(name)
	if !ok {
		return nil
	}
	s := m.line[span.Start:span.End]
	return &s
}

// cleanURLParameters keeps the rightmost key and the leftmost value of a
// capture that spans several &-joined query parameters.
func (ld *LineData) cleanURLParameters() {
	if !strings.Contains(ld.Line, "http://") && !strings.Contains(ld.Line, "https://") {
		return
	}
	if isSet(ld.Variable) {
		v := *ld.Variable
		v = v[strings.LastIndex(v, "&")+1:]
		v = v[strings.LastIndex(v, "?")+1:]
		ld.Variable = &v
	}
	if isSet(ld.Value) {
		v := *ld.Value
		if i := strings.Index(v, "&"); i >= 0 {
			v = v[:i]
		}
		ld.Value = &v
	}
}

// cleanBashParameters cuts a CLI argument value at the next shell boundary.
func (ld *LineData) cleanBashParameters() {
	if !isSet(ld.Value) || !isSet(ld.Variable) {
		return
	}
	if !strings.HasPrefix(*ld.Variable, "-") {
		return
	}
	if loc := bashParamSplit.FindStringIndex(*ld.Value); loc != nil {
		v := (*ld.Value)[:loc[0]]
		ld.Value = &v
	}
}

func (ld *LineData) sanitizeVariable() {
	if !isSet(ld.Variable) {
		return
	}
	v := SanitizeVariable(*ld.Variable)
	ld.Variable = &v
}

// SanitizeVariable removes surrounding whitespace, dashes and quotes from a
// variable name. The steps repeat until nothing changes, so the result is
// stable under repeated application.
func SanitizeVariable(variable string) string {
	for {
		v := strings.TrimSpace(variable)
		v = strings.Trim(v, "-")
		v = strings.Trim(v, `"`)
		v = strings.Trim(v, "'")
		if v == variable {
			return v
		}
		variable = v
	}
}

func isSet(s *string) bool {
	return s != nil && *s != ""
}

// IsComment reports whether the trimmed line starts with a comment marker.
func (ld *LineData) IsComment() bool {
	cleaned := strings.TrimSpace(ld.Line)
	for _, start := range commentStarts {
		if strings.HasPrefix(cleaned, start) {
			return true
		}
	}
	return false
}

// IsSourceFile reports whether the file extension is a configured source extension.
func (ld *LineData) IsSourceFile() bool {
	if ld.Path == "" || ld.config == nil {
		return false
	}
	return ld.config.SourceExtensions.Contains(Extension(ld.Path))
}

// IsSourceFileWithQuotes reports whether the file's language requires quoted string literals.
func (ld *LineData) IsSourceFileWithQuotes() bool {
	if ld.Path == "" || ld.config == nil {
		return false
	}
	return ld.config.SourceQuoteExt.Contains(Extension(ld.Path))
}

// Extension returns the lower-cased extension of path. Leading dots of the
// base name do not start an extension, so ".bashrc" has none.
func Extension(path string) string {
	base := strings.TrimLeft(filepath.Base(path), ".")
	return strings.ToLower(filepath.Ext(base))
}

// ValueOrEmpty returns the captured value or "" when absent.
func (ld *LineData) ValueOrEmpty() string {
	if ld.Value == nil {
		return ""
	}
	return *ld.Value
}

// LineDataOutput is the serialized form of a LineData.
type LineDataOutput struct {
	Line              string  `json:"line"`
	LineNum           int     `json:"line_num"`
	Path              string  `json:"path"`
	Value             *string `json:"value"`
	EntropyValidation bool    `json:"entropy_validation"`
}

// ToJSON converts the line data to its output representation.
func (ld *LineData) ToJSON() LineDataOutput {
	return LineDataOutput{
		Line:              ld.Line,
		LineNum:           ld.LineNum,
		Path:              ld.Path,
		Value:             ld.Value,
		EntropyValidation: IsEntropyValidate(ld.Value),
	}
}

func (ld *LineData) MarshalJSON() ([]byte, error) {
	return json.Marshal(ld.ToJSON())
}

func (ld *LineData) String() string {
	value := "<nil>"
	if ld.Value != nil {
		value = *ld.Value
	}
	return fmt.Sprintf("line: '%s' / line_num: %d / path: %s / value: '%s' / entropy_validation: %t",
		ld.Line, ld.LineNum, ld.Path, value, IsEntropyValidate(ld.Value))
}
