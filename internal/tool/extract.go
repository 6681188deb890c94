// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"
	"regexp"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
)

// MetadataExtractLineData describes the extract_line_data tool.
var MetadataExtractLineData = &mcp.Tool{
	Name: "extract_line_data",
	Description: "Apply one regular expression to one line and return the normalized capture groups. " +
		"The pattern may define the named groups keyword, separator, value, variable, " +
		"value_leftquote and value_rightquote. Only groups that took part in the match are " +
		"returned, so an absent group is distinguishable from an empty one. " +
		"Useful for developing and debugging detection rules.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"line", "pattern"},
		"properties": map[string]interface{}{
			"line": map[string]interface{}{
				"type":        "string",
				"description": "The line of text to analyze",
			},
			"pattern": map[string]interface{}{
				"type":        "string",
				"description": "RE2 regular expression with named capture groups",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Optional file path the line came from",
			},
			"line_num": map[string]interface{}{
				"type":        "integer",
				"description": "Optional line number",
			},
		},
	},
}

// InputExtractLineData is the input for the ExtractLineData tool.
type InputExtractLineData struct {
	Line    string `json:"line"`
	Pattern string `json:"pattern"`
	Path    string `json:"path"`
	LineNum int    `json:"line_num"`
}

// OutputExtractLineData is the output for the ExtractLineData tool.
type OutputExtractLineData struct {
	// Groups holds every named group that took part in the match, after
	// normalization.
	Groups map[string]string `json:"groups"`
	// SeparatorSpan is the [start, end) byte range of the separator, if any.
	SeparatorSpan     []int  `json:"separator_span,omitempty"`
	IsComment         bool   `json:"is_comment"`
	IsSourceFile      bool   `json:"is_source_file"`
	EntropyValidation bool   `json:"entropy_validation"`
	Summary           string `json:"summary"`
}

// ExtractLineData runs the line data extractor on a single line.
func (t *Tools) ExtractLineData(_ context.Context, _ *mcp.CallToolRequest, input InputExtractLineData) (*mcp.CallToolResult, OutputExtractLineData, error) {
	if input.Pattern == "" {
		return nil, OutputExtractLineData{}, fmt.Errorf("pattern is required")
	}
	pattern, err := regexp.Compile(input.Pattern)
	if err != nil {
		return nil, OutputExtractLineData{}, fmt.Errorf("invalid pattern: %w", err)
	}

	ld := credentials.NewLineData(t.config, input.Line, input.LineNum, input.Path, pattern)

	groups := map[string]string{}
	for name, field := range map[string]*string{
		"keyword":          ld.Key,
		"separator":        ld.Separator,
		"value":            ld.Value,
		"variable":         ld.Variable,
		"value_leftquote":  ld.ValueLeftQuote,
		"value_rightquote": ld.ValueRightQuote,
	} {
		if field != nil {
			groups[name] = *field
		}
	}

	out := OutputExtractLineData{
		Groups:            groups,
		IsComment:         ld.IsComment(),
		IsSourceFile:      ld.IsSourceFile(),
		EntropyValidation: credentials.IsEntropyValidate(ld.Value),
		Summary:           ld.String(),
	}
	if ld.SeparatorSpan != nil {
		out.SeparatorSpan = []int{ld.SeparatorSpan.Start, ld.SeparatorSpan.End}
	}
	return nil, out, nil
}
