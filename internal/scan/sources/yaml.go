// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
	"github.com/credsweeper/credsweeper-mcp/internal/scan"
)

// YAMLSource reads YAML and JSON configuration files. Nested keys are
// flattened so a value is scanned together with its full key path, e.g.
// "database.password: hunter22".
type YAMLSource struct{}

func NewYAMLSource() *YAMLSource {
	return &YAMLSource{}
}

func (s *YAMLSource) Name() string {
	return "yaml"
}

// CanHandle trusts an explicit format hint first, then the file extension.
// Content sniffing only applies when neither is given.
func (s *YAMLSource) CanHandle(source scan.Source) bool {
	switch strings.ToLower(source.Format) {
	case "yaml", "yml", "json":
		return true
	case "":
	default:
		return false
	}
	if source.Path != "" {
		switch credentials.Extension(source.Path) {
		case ".yaml", ".yml", ".json":
			return true
		}
		return false
	}
	content := strings.TrimSpace(string(source.Content))
	// JSON object
	if strings.HasPrefix(content, "{") {
		return true
	}
	// Plain YAML: key: value at the start
	if len(content) > 0 && strings.Contains(strings.SplitN(content, "\n", 2)[0], ": ") {
		return !strings.HasPrefix(content, "#")
	}
	return false
}

func (s *YAMLSource) Lines(_ context.Context, source scan.Source) ([]scan.Line, error) {
	docs, err := decodeDocuments(source.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML/JSON: %w", err)
	}
	var lines []scan.Line
	for _, doc := range docs {
		flatten(doc, "", &lines)
	}
	return lines, nil
}
