// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"context"
	"strings"
)

// Line is one scannable line. Num is the 0-based position in the original
// content. Derived lines are synthesized by a structured source from the
// value found at that position; they never replace the raw line.
type Line struct {
	Text    string
	Num     int
	Derived bool
}

// Source describes the raw input to the scan pipeline.
type Source struct {
	// Content is the raw file content.
	Content []byte
	Format  string
	Path    string
}

// LineSource derives extra lines from structured content, such as a YAML
// value keyed by its full path.
type LineSource interface {
	CanHandle(source Source) bool
	Lines(ctx context.Context, source Source) ([]Line, error)
	Name() string
}

// SplitLines returns the raw lines of content. A trailing newline does not
// start another line.
func SplitLines(content []byte) []Line {
	text := strings.TrimSuffix(string(content), "\n")
	if text == "" {
		return nil
	}
	raw := strings.Split(text, "\n")
	lines := make([]Line, len(raw))
	for i, line := range raw {
		lines[i] = Line{Text: strings.TrimSuffix(line, "\r"), Num: i}
	}
	return lines
}
