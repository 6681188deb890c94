// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"context"
	"io"
	"net/http"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
	"github.com/credsweeper/credsweeper-mcp/internal/logging"
)

const githubUserURL = "https://api.github.com/user"

// GithubTokenValidation checks a GitHub token by fetching the authenticated user.
type GithubTokenValidation struct {
	client   HTTPDoer
	endpoint string
}

func NewGithubTokenValidation(client HTTPDoer, endpoint string) *GithubTokenValidation {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = githubUserURL
	}
	return &GithubTokenValidation{client: client, endpoint: endpoint}
}

func (v *GithubTokenValidation) Name() string {
	return "GithubTokenValidation"
}

// Verify maps 200 to Validated and 401 to Invalid. Rate limiting (403/429),
// server errors and transport failures are Undecided.
func (v *GithubTokenValidation) Verify(ctx context.Context, lineData []*credentials.LineData) Verdict {
	token, ok := representativeValue(lineData)
	if !ok {
		return Undecided
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.endpoint, nil)
	if err != nil {
		logging.Logger.Errorw("failed to build github request", "endpoint", v.endpoint, "error", err)
		return Undecided
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "token "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		logging.Logger.Debugw("github validation request failed", "error", err)
		return Undecided
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	switch resp.StatusCode {
	case http.StatusOK:
		return Validated
	case http.StatusUnauthorized:
		return Invalid
	}
	return Undecided
}
