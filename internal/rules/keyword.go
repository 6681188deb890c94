// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"
	"regexp"
)

// keywordTemplate turns a keyword into a variable/separator/value pattern.
// The variable may be quoted (JSON keys with spaces) or bare (identifiers and
// CLI flags). Function calls and a named argument between the separator and
// the value are skipped, so `x = f(arg="v")` yields the value v.
const keywordTemplate = `(?i)` +
	`(?P<variable>(?:["'][^:="'<>\\/&?]*|[^:="'<>\s()\\/&?,]*)(?P<keyword>%s)[^:="'<>{?!&\s(),]*(?:[^:="'<>{?!&]*["'])?)` +
	`\s*(?P<separator>:=|=>|==|!=|=|:)\s*` +
	`(?:[\w.]+\()*(?:\w+\s*=\s*)?` +
	`(?P<value_leftquote>["']?)(?P<value>[^"'\s&,;()]+)(?P<value_rightquote>["']?)`

// KeywordPattern compiles the keyword template for keyword, which may itself
// be an alternation such as "pass|pwd".
func KeywordPattern(keyword string) (*regexp.Regexp, error) {
	if _, err := regexp.Compile(keyword); err != nil {
		return nil, fmt.Errorf("invalid keyword %q: %w", keyword, err)
	}
	return regexp.Compile(fmt.Sprintf(keywordTemplate, keyword))
}
