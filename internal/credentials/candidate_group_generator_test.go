// SPDX-License-Identifier: Apache-2.0

package credentials_test

import (
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
)

var valuePattern = regexp.MustCompile(`(?P<variable>\w+)\s*=\s*(?P<value>\S+)`)

func candidate(rule, path string, lineNum int, line string) *credentials.Candidate {
	ld := credentials.NewLineData(testConfig(), line, lineNum, path, valuePattern)
	return credentials.NewCandidate([]*credentials.LineData{ld}, rule, credentials.SeverityHigh, nil, false)
}

func TestCandidateKey(t *testing.T) {
	a := candidate("Password", "app.py", 3, "password = hunter22")
	b := candidate("Secret", "app.py", 3, "password = hunter22")
	otherLine := candidate("Password", "app.py", 4, "password = hunter22")
	otherFile := candidate("Password", "lib.py", 3, "password = hunter22")

	assert.Equal(t, a.Key(), b.Key(), "same occurrence found by two rules shares a key")
	assert.NotEqual(t, a.Key(), otherLine.Key())
	assert.NotEqual(t, a.Key(), otherFile.Key())
	assert.Equal(t, credentials.CandidateKey{Path: "app.py", LineNum: 3, Value: "hunter22"}, a.Key())
	assert.Equal(t, `app.py:3:"hunter22"`, a.Key().String())

	empty := credentials.NewCandidate(nil, "Password", credentials.SeverityLow, nil, false)
	assert.Equal(t, credentials.CandidateKey{}, empty.Key())
}

func TestCandidateGroupGenerator_GroupsInInsertionOrder(t *testing.T) {
	gen := credentials.NewCandidateGroupGenerator()
	first := candidate("Password", "app.py", 3, "password = hunter22")
	second := candidate("Secret", "app.py", 3, "password = hunter22")
	other := candidate("Token", "app.py", 9, "token = abc")

	gen.Append(first.Key(), first)
	gen.Append(other.Key(), other)
	gen.Append(second.Key(), second)

	assert.Equal(t, 2, gen.Len())
	group, err := gen.Get(first.Key())
	require.NoError(t, err)
	assert.Equal(t, []*credentials.Candidate{first, second}, group)

	items := gen.Items()
	require.Len(t, items, 2)
	assert.Equal(t, first.Key(), items[0].Key)
	assert.Equal(t, other.Key(), items[1].Key)
}

func TestCandidateGroupGenerator_NoDeduplication(t *testing.T) {
	gen := credentials.NewCandidateGroupGenerator()
	c := candidate("Password", "app.py", 3, "password = hunter22")

	gen.Append(c.Key(), c)
	gen.Append(c.Key(), c)

	group, err := gen.Get(c.Key())
	require.NoError(t, err)
	assert.Len(t, group, 2)
}

func TestCandidateGroupGenerator_AbsentVersusEmpty(t *testing.T) {
	gen := credentials.NewCandidateGroupGenerator()
	key := credentials.CandidateKey{Path: "a.py", LineNum: 1, Value: "v"}

	assert.False(t, gen.Contains(key))
	_, err := gen.Get(key)
	require.Error(t, err)
	assert.ErrorIs(t, err, credentials.ErrKeyNotFound)
	assert.Contains(t, err.Error(), `a.py:1:"v"`)

	gen.Set(key, nil)
	assert.True(t, gen.Contains(key))
	group, err := gen.Get(key)
	require.NoError(t, err)
	assert.Empty(t, group)
	assert.Equal(t, 1, gen.Len())
}

func TestCandidateGroupGenerator_SetKeepsPosition(t *testing.T) {
	gen := credentials.NewCandidateGroupGenerator()
	a := candidate("Password", "app.py", 1, "password = one")
	b := candidate("Password", "app.py", 2, "password = two")
	replacement := candidate("Secret", "app.py", 1, "password = one")

	gen.Append(a.Key(), a)
	gen.Append(b.Key(), b)
	gen.Set(a.Key(), []*credentials.Candidate{replacement})

	items := gen.Items()
	require.Len(t, items, 2)
	assert.Equal(t, a.Key(), items[0].Key)
	assert.Equal(t, []*credentials.Candidate{replacement}, items[0].Candidates)
}

func TestCandidateGroupGenerator_ReturnsCopies(t *testing.T) {
	gen := credentials.NewCandidateGroupGenerator()
	c := candidate("Password", "app.py", 1, "password = one")
	gen.Append(c.Key(), c)

	group, err := gen.Get(c.Key())
	require.NoError(t, err)
	group[0] = nil

	again, err := gen.Get(c.Key())
	require.NoError(t, err)
	assert.Same(t, c, again[0])
}

func TestCandidateGroupGenerator_ConcurrentAppend(t *testing.T) {
	gen := credentials.NewCandidateGroupGenerator()
	const writers, perWriter = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				c := candidate(fmt.Sprintf("rule-%d", w), "app.py", i, "password = same")
				gen.Append(c.Key(), c)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, perWriter, gen.Len())
	for _, item := range gen.Items() {
		assert.Len(t, item.Candidates, writers)
	}
}
