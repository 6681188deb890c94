// SPDX-License-Identifier: Apache-2.0

package scan

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/credsweeper/credsweeper-mcp/internal/config"
	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
	"github.com/credsweeper/credsweeper-mcp/internal/filters"
	"github.com/credsweeper/credsweeper-mcp/internal/logging"
	"github.com/credsweeper/credsweeper-mcp/internal/rules"
	"github.com/credsweeper/credsweeper-mcp/internal/validations"
)

type Pipeline struct {
	config  *config.Config
	rules   []*rules.Rule
	sources []LineSource
	filters filters.Groups
	runner  *validations.Runner
	workers int
}

// NewPipeline creates a Pipeline that applies ruleSet to the raw lines of
// the input, plus the derived lines of the first structured source able to
// read it. Sources are tried in order.
func NewPipeline(cfg *config.Config, ruleSet []*rules.Rule, sources ...LineSource) *Pipeline {
	return &Pipeline{
		config:  cfg,
		rules:   ruleSet,
		sources: sources,
		filters: filters.DefaultGroups(),
		workers: runtime.GOMAXPROCS(0),
	}
}

// WithFilters replaces the default filter groups.
func (p *Pipeline) WithFilters(groups filters.Groups) *Pipeline {
	p.filters = groups
	return p
}

// WithValidation enables provider verification of the candidate groups.
func (p *Pipeline) WithValidation(runner *validations.Runner) *Pipeline {
	p.runner = runner
	return p
}

// PlainSourceName is reported when no structured source handled the input.
const PlainSourceName = "plain"

// RunResult is the output of a successful pipeline run.
type RunResult struct {
	// ID identifies the run in logs.
	ID     string
	Groups *credentials.CandidateGroupGenerator
	// Verdicts is nil unless validation is enabled.
	Verdicts   validations.Verdicts
	SourceUsed string
	// LineCount is the number of raw lines; DerivedCount the number of
	// lines added by the structured source.
	LineCount    int
	DerivedCount int
}

func (p *Pipeline) Run(ctx context.Context, source Source) (*credentials.CandidateGroupGenerator, error) {
	result, err := p.RunWithMeta(ctx, source)
	if err != nil {
		return nil, err
	}
	return result.Groups, nil
}

func (p *Pipeline) RunWithMeta(ctx context.Context, source Source) (RunResult, error) {
	id := uuid.NewString()
	raw := SplitLines(source.Content)
	sourceUsed, derived := p.derivedLines(ctx, source)

	lines := make([]Line, 0, len(raw)+len(derived))
	lines = append(lines, raw...)
	lines = append(lines, derived...)
	// Raw lines stay ahead of derived lines at the same position.
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Num < lines[j].Num })

	groups, err := p.extract(ctx, source.Path, lines)
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		ID:           id,
		Groups:       groups,
		SourceUsed:   sourceUsed,
		LineCount:    len(raw),
		DerivedCount: len(derived),
	}
	if p.runner != nil {
		result.Verdicts = p.runner.Run(ctx, groups)
	}
	logging.Logger.Infow("scan finished", "scan_id", id, "path", source.Path, "source", result.SourceUsed, "lines", result.LineCount, "derived", result.DerivedCount, "groups", groups.Len())
	return result, nil
}

// derivedLines returns the lines of the first structured source that can
// handle and read the input. A source that fails to read falls through to
// the next one; the raw lines are scanned either way.
func (p *Pipeline) derivedLines(ctx context.Context, source Source) (string, []Line) {
	for _, s := range p.sources {
		if !s.CanHandle(source) {
			continue
		}
		lines, err := s.Lines(ctx, source)
		if err != nil {
			logging.Logger.Warnw("line source failed", "source", s.Name(), "path", source.Path, "error", err)
			continue
		}
		for i := range lines {
			lines[i].Derived = true
		}
		return s.Name(), lines
	}
	return PlainSourceName, nil
}

// extract applies every rule to every line concurrently. Candidates are
// grouped in line order once all workers are done, so the result does not
// depend on scheduling. A derived line only contributes a candidate when no
// earlier line of the same group already carries that rule.
func (p *Pipeline) extract(ctx context.Context, path string, lines []Line) (*credentials.CandidateGroupGenerator, error) {
	found := make([][]*credentials.Candidate, len(lines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.workers, 1))
	for i, line := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			found[i] = p.scanLine(path, line)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction of %q stopped: %w", path, err)
	}

	groups := credentials.NewCandidateGroupGenerator()
	seen := map[credentials.CandidateKey]map[string]bool{}
	for i, candidates := range found {
		for _, c := range candidates {
			key := c.Key()
			if lines[i].Derived && seen[key][c.RuleName] {
				continue
			}
			if seen[key] == nil {
				seen[key] = map[string]bool{}
			}
			seen[key][c.RuleName] = true
			groups.Append(key, c)
		}
	}
	return groups, nil
}

// scanLine yields at most one candidate per rule: the first pattern whose
// value survives the rule's filter group.
func (p *Pipeline) scanLine(path string, line Line) []*credentials.Candidate {
	var candidates []*credentials.Candidate
	for _, rule := range p.rules {
		if !rule.Wants(line.Text) {
			continue
		}
		group, err := p.filters.Get(rule.FilterType)
		if err != nil {
			logging.Logger.Warnw("rule skipped", "rule", rule.Name, "error", err)
			continue
		}
		for _, pattern := range rule.Patterns {
			ld := credentials.NewLineData(p.config, line.Text, line.Num, path, pattern)
			if ld.Value == nil {
				continue
			}
			if drop, by := group.Run(ld); drop {
				logging.Logger.Debugw("line filtered", "rule", rule.Name, "path", path, "line", line.Num, "filter", by)
				continue
			}
			candidates = append(candidates, credentials.NewCandidate(
				[]*credentials.LineData{ld}, rule.Name, rule.Severity, rule.Validations, rule.UseML,
			))
			break
		}
	}
	return candidates
}

// RegisteredSources returns the names of all currently registered sources.
func (p *Pipeline) RegisteredSources() []string {
	names := make([]string, len(p.sources))
	for i, s := range p.sources {
		names[i] = s.Name()
	}
	return names
}
