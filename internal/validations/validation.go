// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
)

// Verdict is the tri-state outcome of a validation attempt. The zero value is
// Undecided, so a candidate that was never verified reads as undecided.
type Verdict int

const (
	Undecided Verdict = iota
	Validated
	Invalid
)

func (v Verdict) String() string {
	switch v {
	case Validated:
		return "VALIDATED"
	case Invalid:
		return "INVALID"
	default:
		return "UNDECIDED"
	}
}

func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

func (v *Verdict) UnmarshalText(text []byte) error {
	switch string(text) {
	case "VALIDATED":
		*v = Validated
	case "INVALID":
		*v = Invalid
	case "UNDECIDED":
		*v = Undecided
	default:
		return fmt.Errorf("unknown verdict %q", text)
	}
	return nil
}

// Validator confirms or refutes a candidate against one credential provider.
// Verify issues at most one outbound call and never fails: anything that
// prevents a definite answer is reported as Undecided.
type Validator interface {
	Name() string
	Verify(ctx context.Context, lineData []*credentials.LineData) Verdict
}

// HTTPDoer is the subset of *http.Client used by validators.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// representativeValue returns the value of the first line data, if any.
func representativeValue(lineData []*credentials.LineData) (string, bool) {
	if len(lineData) == 0 || lineData[0] == nil || lineData[0].Value == nil || *lineData[0].Value == "" {
		return "", false
	}
	return *lineData[0].Value, true
}

// Registry resolves validator names referenced by rules.
type Registry struct {
	validators map[string]Validator
}

func NewRegistry(validators ...Validator) *Registry {
	r := &Registry{validators: make(map[string]Validator, len(validators))}
	for _, v := range validators {
		r.validators[v.Name()] = v
	}
	return r
}

// DefaultRegistry registers every built-in provider using client.
func DefaultRegistry(client HTTPDoer) *Registry {
	return NewRegistry(
		NewSlackTokenValidation(client, ""),
		NewGithubTokenValidation(client, ""),
	)
}

func (r *Registry) Get(name string) (Validator, bool) {
	v, ok := r.validators[name]
	return v, ok
}

// Names returns the registered validator names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.validators))
	for name := range r.validators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
