// SPDX-License-Identifier: Apache-2.0

package sources

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/credsweeper/credsweeper-mcp/internal/scan"
)

// KubernetesSource reads Kubernetes manifests. It adds container env
// entries as "NAME: value" lines and the data entries of Secrets and
// ConfigMaps as "key: value" lines, so a value split from its name across
// two raw lines is still scanned with its name.
type KubernetesSource struct{}

func NewKubernetesSource() *KubernetesSource {
	return &KubernetesSource{}
}

func (s *KubernetesSource) Name() string {
	return "kubernetes"
}

// CanHandle returns true for sources with a "kubernetes" or "k8s" format hint,
// or whose content contains the characteristic apiVersion/kind YAML fields.
func (s *KubernetesSource) CanHandle(source scan.Source) bool {
	switch strings.ToLower(source.Format) {
	case "kubernetes", "k8s":
		return true
	case "":
	default:
		return false
	}
	content := string(source.Content)
	return strings.Contains(content, "apiVersion:") && strings.Contains(content, "kind:")
}

// Lines walks every document of a multi-document manifest.
func (s *KubernetesSource) Lines(_ context.Context, source scan.Source) ([]scan.Line, error) {
	docs, err := decodeDocuments(source.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal manifest: %w", err)
	}

	var lines []scan.Line
	for _, doc := range docs {
		if doc.Kind != yaml.MappingNode {
			continue
		}
		collectEnv(doc, &lines)

		kind := mappingValue(doc, "kind")
		if kind == nil || (kind.Value != "Secret" && kind.Value != "ConfigMap") {
			continue
		}
		for _, field := range []string{"stringData", "data"} {
			if data := mappingValue(doc, field); data != nil && data.Kind == yaml.MappingNode {
				flatten(data, "", &lines)
			}
		}
	}
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Num < lines[j].Num })
	return lines, nil
}

// collectEnv finds every env list in the document, wherever the workload
// nests its pod template.
func collectEnv(node *yaml.Node, lines *[]scan.Line) {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i], node.Content[i+1]
			if key.Value == "env" && value.Kind == yaml.SequenceNode {
				for _, item := range value.Content {
					name := mappingValue(item, "name")
					if name == nil {
						continue
					}
					if line, ok := scalarLine(name.Value, mappingValue(item, "value")); ok {
						*lines = append(*lines, line)
					}
				}
				continue
			}
			collectEnv(value, lines)
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			collectEnv(item, lines)
		}
	}
}
