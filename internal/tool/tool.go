// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/credsweeper/credsweeper-mcp/internal/config"
	"github.com/credsweeper/credsweeper-mcp/internal/filters"
	"github.com/credsweeper/credsweeper-mcp/internal/rules"
	"github.com/credsweeper/credsweeper-mcp/internal/scan"
	"github.com/credsweeper/credsweeper-mcp/internal/scan/sources"
	"github.com/credsweeper/credsweeper-mcp/internal/validations"
)

// Tools holds what the MCP tool handlers share: configuration, the loaded
// rule set and the validator registry.
type Tools struct {
	config   *config.Config
	rules    []*rules.Rule
	registry *validations.Registry
}

// New creates the tool handlers. A nil registry disables validation.
func New(cfg *config.Config, ruleSet []*rules.Rule, registry *validations.Registry) *Tools {
	return &Tools{config: cfg, rules: ruleSet, registry: registry}
}

// Register adds every tool to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, MetadataScanContent, t.ScanContent)
	mcp.AddTool(server, MetadataExtractLineData, t.ExtractLineData)
}

// defaultPipeline builds a Pipeline with all default sources registered and
// the configured filter thresholds.
func (t *Tools) defaultPipeline() *scan.Pipeline {
	return scan.NewPipeline(t.config, t.rules, sources.Default()...).
		WithFilters(filters.NewGroups(t.config.Filters.MinValueLength))
}
