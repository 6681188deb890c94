// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"errors"
	"fmt"
	"sync"
)

// ErrKeyNotFound is returned by Get for keys that were never inserted.
var ErrKeyNotFound = errors.New("candidate key not found")

// GroupItem is one key with its candidates, as returned by Items.
type GroupItem struct {
	Key        CandidateKey
	Candidates []*Candidate
}

// CandidateGroupGenerator is an ordered multimap from CandidateKey to the
// candidates reported for that occurrence. Keys enumerate in first-insertion
// order and candidates keep their append order. Entries are never
// deduplicated: every contributing rule match stays visible.
//
// All methods are safe for concurrent use.
type CandidateGroupGenerator struct {
	mu     sync.RWMutex
	keys   []CandidateKey
	groups map[CandidateKey][]*Candidate
}

func NewCandidateGroupGenerator() *CandidateGroupGenerator {
	return &CandidateGroupGenerator{
		groups: make(map[CandidateKey][]*Candidate),
	}
}

func (g *CandidateGroupGenerator) Contains(key CandidateKey) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.groups[key]
	return ok
}

// Get returns a copy of the group for key, or ErrKeyNotFound.
func (g *CandidateGroupGenerator) Get(key CandidateKey) ([]*Candidate, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	group, ok := g.groups[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return append([]*Candidate{}, group...), nil
}

// Set replaces the group for key, creating it when absent. An existing key
// keeps its enumeration position.
func (g *CandidateGroupGenerator) Set(key CandidateKey, candidates []*Candidate) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.groups[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append([]*Candidate{}, candidates...)
}

// Append adds candidate to the group for key, creating the group when absent.
func (g *CandidateGroupGenerator) Append(key CandidateKey, candidate *Candidate) {
	g.mu.Lock()
	defer g.mu.Unlock()
	group, ok := g.groups[key]
	if !ok {
		g.keys = append(g.keys, key)
	}
	g.groups[key] = append(group, candidate)
}

// Len returns the number of distinct keys.
func (g *CandidateGroupGenerator) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.keys)
}

// Items returns every key with a copy of its group, in first-insertion order.
func (g *CandidateGroupGenerator) Items() []GroupItem {
	g.mu.RLock()
	defer g.mu.RUnlock()
	items := make([]GroupItem, 0, len(g.keys))
	for _, key := range g.keys {
		items = append(items, GroupItem{
			Key:        key,
			Candidates: append([]*Candidate{}, g.groups[key]...),
		})
	}
	return items
}
