// SPDX-License-Identifier: Apache-2.0

package credentials

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityInfo     Severity = "info"
)

// ParseSeverity maps a case-insensitive severity name to a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch sev := Severity(strings.ToLower(strings.TrimSpace(s))); sev {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo:
		return sev, nil
	}
	return "", fmt.Errorf("unknown severity %q", s)
}

// Candidate is one rule's finding. LineData holds every line the rule used;
// the first entry is the representative passed to validators.
type Candidate struct {
	LineData    []*LineData
	RuleName    string
	Severity    Severity
	Validations []string
	UseML       bool
}

func NewCandidate(lineData []*LineData, ruleName string, severity Severity, validations []string, useML bool) *Candidate {
	return &Candidate{
		LineData:    lineData,
		RuleName:    ruleName,
		Severity:    severity,
		Validations: validations,
		UseML:       useML,
	}
}

// Key returns the grouping key of the candidate's representative line.
func (c *Candidate) Key() CandidateKey {
	if len(c.LineData) == 0 {
		return CandidateKey{}
	}
	return NewCandidateKey(c.LineData[0])
}
