// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/credsweeper/credsweeper-mcp/internal/config"
	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
	"github.com/credsweeper/credsweeper-mcp/internal/logging"
)

// Verdicts holds the outcome per candidate group and validator name.
// Missing entries read as Undecided.
type Verdicts map[credentials.CandidateKey]map[string]Verdict

func (v Verdicts) Get(key credentials.CandidateKey, validator string) Verdict {
	return v[key][validator]
}

// Overall folds the verdicts of one group: any Validated wins, then any
// Invalid; otherwise the group is Undecided.
func (v Verdicts) Overall(key credentials.CandidateKey) Verdict {
	overall := Undecided
	for _, verdict := range v[key] {
		switch verdict {
		case Validated:
			return Validated
		case Invalid:
			overall = Invalid
		}
	}
	return overall
}

// Runner verifies candidate groups with bounded concurrency, a rate limiter
// per validator and a timeout per call.
type Runner struct {
	registry *Registry
	workers  int
	timeout  time.Duration
	limit    rate.Limit
	burst    int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// defaultTimeout applies when the configuration carries no usable timeout.
const defaultTimeout = 10 * time.Second

// NewRunner builds a runner from cfg. Non-positive values fall back to one
// worker, the default timeout and an unlimited rate.
func NewRunner(registry *Registry, cfg config.ValidationConfig) *Runner {
	r := &Runner{
		registry: registry,
		workers:  cfg.Workers,
		timeout:  cfg.Timeout(),
		limit:    rate.Limit(cfg.RatePerSecond),
		burst:    cfg.Burst,
		limiters: make(map[string]*rate.Limiter),
	}
	if r.workers <= 0 {
		r.workers = 1
	}
	if r.timeout <= 0 {
		r.timeout = defaultTimeout
	}
	if r.limit <= 0 {
		r.limit = rate.Inf
	}
	if r.burst <= 0 {
		r.burst = 1
	}
	return r
}

func (r *Runner) limiter(name string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.limiters[name]
	if !ok {
		l = rate.NewLimiter(r.limit, r.burst)
		r.limiters[name] = l
	}
	return l
}

type job struct {
	key       credentials.CandidateKey
	validator Validator
	lineData  []*credentials.LineData
}

// jobs builds one job per group and validator name. The first candidate in
// a group that requests a validator supplies the representative line data.
func (r *Runner) jobs(groups *credentials.CandidateGroupGenerator) []job {
	var jobs []job
	for _, item := range groups.Items() {
		seen := map[string]bool{}
		for _, candidate := range item.Candidates {
			for _, name := range candidate.Validations {
				if seen[name] {
					continue
				}
				seen[name] = true
				validator, ok := r.registry.Get(name)
				if !ok {
					logging.Logger.Warnw("unknown validator", "name", name, "rule", candidate.RuleName)
					continue
				}
				jobs = append(jobs, job{key: item.Key, validator: validator, lineData: candidate.LineData})
			}
		}
	}
	return jobs
}

// Run verifies every group that requests validation. Cancelling ctx stops new
// calls from being issued; groups left unverified read as Undecided. The
// groups themselves are never modified.
func (r *Runner) Run(ctx context.Context, groups *credentials.CandidateGroupGenerator) Verdicts {
	verdicts := Verdicts{}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(r.workers)

	for _, j := range r.jobs(groups) {
		if ctx.Err() != nil {
			logging.Logger.Infow("validation cancelled", "error", ctx.Err())
			break
		}
		g.Go(func() error {
			if err := r.limiter(j.validator.Name()).Wait(ctx); err != nil {
				return nil
			}
			callCtx, cancel := context.WithTimeout(ctx, r.timeout)
			defer cancel()

			verdict := j.validator.Verify(callCtx, j.lineData)
			logging.Logger.Debugw("validated candidate", "path", j.key.Path, "line", j.key.LineNum, "validator", j.validator.Name(), "verdict", verdict.String())

			mu.Lock()
			defer mu.Unlock()
			if verdicts[j.key] == nil {
				verdicts[j.key] = map[string]Verdict{}
			}
			verdicts[j.key][j.validator.Name()] = verdict
			return nil
		})
	}
	_ = g.Wait()
	return verdicts
}
