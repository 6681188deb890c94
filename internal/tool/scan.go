// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
	"github.com/credsweeper/credsweeper-mcp/internal/scan"
	"github.com/credsweeper/credsweeper-mcp/internal/validations"
)

// MetadataScanContent describes the scan_content tool.
var MetadataScanContent = &mcp.Tool{
	Name: "scan_content",
	Description: "Scan file content for hardcoded credentials. " +
		"Supported formats: plain text or source code, yaml, json, kubernetes. " +
		"Findings are grouped by location and value; each group lists every rule that " +
		"matched it. When validate is set, candidates whose rules name a provider check " +
		"are verified against that provider and reported as VALIDATED, INVALID or UNDECIDED.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"content"},
		"properties": map[string]interface{}{
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw content of the file to scan",
			},
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Optional file path. Used in findings and to decide source-file handling.",
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format hint. One of: plain, yaml, json, kubernetes. If omitted, auto-detection is used.",
				"enum":        []string{"plain", "yaml", "json", "kubernetes"},
			},
			"validate": map[string]interface{}{
				"type":        "boolean",
				"description": "Verify candidates against their credential providers. Issues network calls.",
			},
		},
	},
}

// InputScanContent is the input for the ScanContent tool.
type InputScanContent struct {
	Content  string `json:"content"`
	Path     string `json:"path"`
	Format   string `json:"format"`
	Validate bool   `json:"validate"`
}

// LineDataOutput is the serialized line data plus the variable name the
// rule matched, when it names one.
type LineDataOutput struct {
	credentials.LineDataOutput
	Variable string `json:"variable,omitempty"`
}

// CandidateOutput is one rule's finding within a group.
type CandidateOutput struct {
	Rule     string           `json:"rule"`
	Severity string           `json:"severity"`
	UseML    bool             `json:"use_ml"`
	LineData []LineDataOutput `json:"line_data_list"`
}

// GroupOutput is every finding for one path, line and value.
type GroupOutput struct {
	Path       string            `json:"path"`
	LineNum    int               `json:"line_num"`
	Value      string            `json:"value"`
	Candidates []CandidateOutput `json:"candidates"`
	// Verdict and Verdicts are only set when validation was requested.
	Verdict  string            `json:"verdict,omitempty"`
	Verdicts map[string]string `json:"verdicts,omitempty"`
}

// OutputScanContent is the output for the ScanContent tool.
type OutputScanContent struct {
	ScanID string        `json:"scan_id"`
	Groups []GroupOutput `json:"groups"`
	// SourceUsed names the structured source that added lines, or "plain".
	SourceUsed string `json:"source_used"`
	// TotalLines is the number of raw lines; DerivedLines the number of
	// lines the structured source added.
	TotalLines   int `json:"total_lines"`
	DerivedLines int `json:"derived_lines"`
}

// ScanContent runs the scan pipeline over the provided content.
func (t *Tools) ScanContent(ctx context.Context, _ *mcp.CallToolRequest, input InputScanContent) (*mcp.CallToolResult, OutputScanContent, error) {
	if input.Content == "" {
		return nil, OutputScanContent{}, fmt.Errorf("content is required")
	}

	src := scan.Source{
		Content: []byte(input.Content),
		Format:  input.Format,
		Path:    input.Path,
	}

	pipeline := t.defaultPipeline()
	if input.Validate {
		if t.registry == nil {
			return nil, OutputScanContent{}, fmt.Errorf("validation is not enabled on this server")
		}
		pipeline.WithValidation(validations.NewRunner(t.registry, t.config.Validation))
	}

	result, err := pipeline.RunWithMeta(ctx, src)
	if err != nil {
		return nil, OutputScanContent{}, err
	}

	items := result.Groups.Items()
	groups := make([]GroupOutput, 0, len(items))
	for _, item := range items {
		group := GroupOutput{
			Path:       item.Key.Path,
			LineNum:    item.Key.LineNum,
			Value:      item.Key.Value,
			Candidates: make([]CandidateOutput, 0, len(item.Candidates)),
		}
		for _, c := range item.Candidates {
			group.Candidates = append(group.Candidates, candidateOutput(c))
		}
		if result.Verdicts != nil {
			group.Verdict = result.Verdicts.Overall(item.Key).String()
			group.Verdicts = map[string]string{}
			for name, verdict := range result.Verdicts[item.Key] {
				group.Verdicts[name] = verdict.String()
			}
		}
		groups = append(groups, group)
	}

	return nil, OutputScanContent{
		ScanID:       result.ID,
		Groups:       groups,
		SourceUsed:   result.SourceUsed,
		TotalLines:   result.LineCount,
		DerivedLines: result.DerivedCount,
	}, nil
}

func candidateOutput(c *credentials.Candidate) CandidateOutput {
	out := CandidateOutput{
		Rule:     c.RuleName,
		Severity: string(c.Severity),
		UseML:    c.UseML,
		LineData: make([]LineDataOutput, 0, len(c.LineData)),
	}
	for _, ld := range c.LineData {
		out.LineData = append(out.LineData, LineDataOutput{
			LineDataOutput: ld.ToJSON(),
			Variable:       deref(ld.Variable),
		})
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
