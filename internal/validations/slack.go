// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/credsweeper/credsweeper-mcp/internal/credentials"
	"github.com/credsweeper/credsweeper-mcp/internal/logging"
)

const slackAuthTestURL = "https://slack.com/api/auth.test/"

// maxResponseBytes caps how much of a provider reply is decoded.
const maxResponseBytes = 1 << 20

// SlackTokenValidation checks a Slack token with the auth.test method.
type SlackTokenValidation struct {
	client   HTTPDoer
	endpoint string
}

// NewSlackTokenValidation uses http.DefaultClient when client is nil and the
// public auth.test endpoint when endpoint is empty.
func NewSlackTokenValidation(client HTTPDoer, endpoint string) *SlackTokenValidation {
	if client == nil {
		client = http.DefaultClient
	}
	if endpoint == "" {
		endpoint = slackAuthTestURL
	}
	return &SlackTokenValidation{client: client, endpoint: endpoint}
}

func (v *SlackTokenValidation) Name() string {
	return "SlackTokenValidation"
}

type slackAuthTestResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Verify maps the auth.test reply: ok is Validated, invalid_auth is Invalid,
// and not_authed, other error codes or an unreadable reply are Undecided.
func (v *SlackTokenValidation) Verify(ctx context.Context, lineData []*credentials.LineData) Verdict {
	token, ok := representativeValue(lineData)
	if !ok {
		return Undecided
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, nil)
	if err != nil {
		logging.Logger.Errorw("failed to build slack request", "endpoint", v.endpoint, "error", err)
		return Undecided
	}
	req.Header.Set("Content-type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		logging.Logger.Debugw("slack validation request failed", "error", err)
		return Undecided
	}
	defer resp.Body.Close()

	var data slackAuthTestResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&data); err != nil {
		logging.Logger.Debugw("unreadable slack response", "status", resp.StatusCode, "error", err)
		return Undecided
	}

	if data.OK {
		return Validated
	}
	switch data.Error {
	case "invalid_auth":
		return Invalid
	case "not_authed":
		return Undecided
	}
	return Undecided
}
