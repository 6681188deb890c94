// SPDX-License-Identifier: Apache-2.0

package validations_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/credsweeper/credsweeper-mcp/internal/config"
	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
	"github.com/credsweeper/credsweeper-mcp/internal/validations"
)

// fakeValidator answers with a fixed verdict after an optional delay and
// records how many calls were in flight at once.
type fakeValidator struct {
	name    string
	verdict validations.Verdict
	delay   time.Duration

	calls       atomic.Int32
	inFlight    atomic.Int32
	maxInFlight atomic.Int32

	mu     sync.Mutex
	values []string
	errs   []error
}

func (f *fakeValidator) Name() string { return f.name }

func (f *fakeValidator) Verify(ctx context.Context, lineData []*credentials.LineData) validations.Verdict {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		peak := f.maxInFlight.Load()
		if n <= peak || f.maxInFlight.CompareAndSwap(peak, n) {
			break
		}
	}

	f.mu.Lock()
	f.values = append(f.values, lineData[0].ValueOrEmpty())
	f.mu.Unlock()

	select {
	case <-time.After(f.delay):
		return f.verdict
	case <-ctx.Done():
		f.mu.Lock()
		f.errs = append(f.errs, ctx.Err())
		f.mu.Unlock()
		return validations.Undecided
	}
}

func runnerConfig(workers int, timeout time.Duration) config.ValidationConfig {
	return config.ValidationConfig{
		Workers:        workers,
		TimeoutSeconds: timeout.Seconds(),
		RatePerSecond:  1000,
		Burst:          100,
	}
}

func groupsWith(n int, validationNames ...string) *credentials.CandidateGroupGenerator {
	gen := credentials.NewCandidateGroupGenerator()
	for i := 0; i < n; i++ {
		ld := credentials.NewLineData(config.Default(), fmt.Sprintf("token = value%d", i), i, "app.py", tokenPattern)
		c := credentials.NewCandidate([]*credentials.LineData{ld}, "Token", credentials.SeverityHigh, validationNames, false)
		gen.Append(c.Key(), c)
	}
	return gen
}

func TestRunner_RecordsVerdictPerGroup(t *testing.T) {
	defer goleak.VerifyNone(t)

	slack := &fakeValidator{name: "slack", verdict: validations.Validated}
	github := &fakeValidator{name: "github", verdict: validations.Invalid}
	runner := validations.NewRunner(validations.NewRegistry(slack, github), runnerConfig(4, time.Second))

	groups := groupsWith(3, "slack", "github")
	verdicts := runner.Run(context.Background(), groups)

	require.Len(t, verdicts, 3)
	for _, item := range groups.Items() {
		assert.Equal(t, validations.Validated, verdicts.Get(item.Key, "slack"))
		assert.Equal(t, validations.Invalid, verdicts.Get(item.Key, "github"))
		assert.Equal(t, validations.Validated, verdicts.Overall(item.Key))
	}
	assert.EqualValues(t, 3, slack.calls.Load())
	assert.EqualValues(t, 3, github.calls.Load())
}

func TestRunner_OneCallPerGroupAndValidator(t *testing.T) {
	defer goleak.VerifyNone(t)

	slack := &fakeValidator{name: "slack", verdict: validations.Invalid}
	runner := validations.NewRunner(validations.NewRegistry(slack), runnerConfig(2, time.Second))

	gen := credentials.NewCandidateGroupGenerator()
	first := credentials.NewLineData(config.Default(), "token = shared", 1, "app.py", tokenPattern)
	second := credentials.NewLineData(config.Default(), "token = shared", 1, "app.py", tokenPattern)
	a := credentials.NewCandidate([]*credentials.LineData{first}, "Token", credentials.SeverityHigh, []string{"slack"}, false)
	b := credentials.NewCandidate([]*credentials.LineData{second}, "Slack Token", credentials.SeverityHigh, []string{"slack"}, false)
	gen.Append(a.Key(), a)
	gen.Append(b.Key(), b)

	verdicts := runner.Run(context.Background(), gen)
	assert.EqualValues(t, 1, slack.calls.Load())
	assert.Equal(t, validations.Invalid, verdicts.Overall(a.Key()))

	group, err := gen.Get(a.Key())
	require.NoError(t, err)
	assert.Len(t, group, 2, "validation never mutates groups")
}

func TestRunner_BoundedConcurrency(t *testing.T) {
	defer goleak.VerifyNone(t)

	slow := &fakeValidator{name: "slow", verdict: validations.Validated, delay: 20 * time.Millisecond}
	runner := validations.NewRunner(validations.NewRegistry(slow), runnerConfig(2, time.Second))

	verdicts := runner.Run(context.Background(), groupsWith(8, "slow"))
	assert.Len(t, verdicts, 8)
	assert.LessOrEqual(t, slow.maxInFlight.Load(), int32(2))
}

func TestRunner_TimeoutYieldsUndecided(t *testing.T) {
	defer goleak.VerifyNone(t)

	stalled := &fakeValidator{name: "stalled", verdict: validations.Validated, delay: time.Hour}
	runner := validations.NewRunner(validations.NewRegistry(stalled), runnerConfig(1, 20*time.Millisecond))

	groups := groupsWith(1, "stalled")
	start := time.Now()
	verdicts := runner.Run(context.Background(), groups)

	assert.Less(t, time.Since(start), 5*time.Second)
	key := groups.Items()[0].Key
	assert.Equal(t, validations.Undecided, verdicts.Get(key, "stalled"))
	stalled.mu.Lock()
	defer stalled.mu.Unlock()
	require.Len(t, stalled.errs, 1)
	assert.ErrorIs(t, stalled.errs[0], context.DeadlineExceeded)
}

func TestRunner_CancelledContextIssuesNoCalls(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := &fakeValidator{name: "slack", verdict: validations.Validated}
	runner := validations.NewRunner(validations.NewRegistry(v), runnerConfig(2, time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	groups := groupsWith(5, "slack")
	verdicts := runner.Run(ctx, groups)

	assert.EqualValues(t, 0, v.calls.Load())
	for _, item := range groups.Items() {
		assert.Equal(t, validations.Undecided, verdicts.Overall(item.Key))
	}
}

func TestRunner_SkipsUnknownAndUnrequested(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := &fakeValidator{name: "slack", verdict: validations.Validated}
	runner := validations.NewRunner(validations.NewRegistry(v), runnerConfig(2, time.Second))

	verdicts := runner.Run(context.Background(), groupsWith(2, "missing"))
	assert.Empty(t, verdicts)
	verdicts = runner.Run(context.Background(), groupsWith(2))
	assert.Empty(t, verdicts)
	assert.EqualValues(t, 0, v.calls.Load())
}

func TestRunner_ZeroConfigFallsBack(t *testing.T) {
	defer goleak.VerifyNone(t)

	v := &fakeValidator{name: "slack", verdict: validations.Invalid}
	runner := validations.NewRunner(validations.NewRegistry(v), config.ValidationConfig{})

	groups := groupsWith(2, "slack")
	verdicts := runner.Run(context.Background(), groups)
	for _, item := range groups.Items() {
		assert.Equal(t, validations.Invalid, verdicts.Get(item.Key, "slack"))
	}
}

func TestVerdicts_Overall(t *testing.T) {
	key := credentials.CandidateKey{Path: "a", LineNum: 1, Value: "v"}
	tests := []struct {
		name     string
		verdicts validations.Verdicts
		want     validations.Verdict
	}{
		{"missing", validations.Verdicts{}, validations.Undecided},
		{"invalid and undecided", validations.Verdicts{key: {"a": validations.Invalid, "b": validations.Undecided}}, validations.Invalid},
		{"validated wins", validations.Verdicts{key: {"a": validations.Invalid, "b": validations.Validated}}, validations.Validated},
		{"all undecided", validations.Verdicts{key: {"a": validations.Undecided}}, validations.Undecided},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.verdicts.Overall(key))
		})
	}
}
