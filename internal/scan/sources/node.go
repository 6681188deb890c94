// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/credsweeper/credsweeper-mcp/internal/scan"
)

// decodeDocuments reads every document of a YAML stream. Node line numbers
// are relative to the start of the stream.
func decodeDocuments(content []byte) ([]*yaml.Node, error) {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	var docs []*yaml.Node
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode document %d: %w", len(docs), err)
		}
		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			docs = append(docs, doc.Content[0])
		}
	}
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.ShortTag() == "!!null"
}

// scalarLine renders key and a scalar value as one "key: value" line at the
// 0-based position of the value. Block scalars are folded onto that line.
func scalarLine(key string, value *yaml.Node) (scan.Line, bool) {
	if value == nil || value.Kind != yaml.ScalarNode || isNull(value) {
		return scan.Line{}, false
	}
	text := strings.TrimSpace(strings.ReplaceAll(value.Value, "\n", " "))
	return scan.Line{Text: key + ": " + text, Num: value.Line - 1}, true
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// flatten emits one line per scalar leaf, keyed by its dotted path.
// Sequence items are addressed as path[i]. Aliases are not followed.
func flatten(node *yaml.Node, prefix string, lines *[]scan.Line) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			flatten(node.Content[i+1], joinPath(prefix, node.Content[i].Value), lines)
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			flatten(item, fmt.Sprintf("%s[%d]", prefix, i), lines)
		}
	case yaml.ScalarNode:
		if line, ok := scalarLine(prefix, node); ok {
			*lines = append(*lines, line)
		}
	}
}
