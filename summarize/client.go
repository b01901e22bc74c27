// Package summarize proxies text summarization to a hosted inference model.
package summarize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/user/blogivea-go/apperror"
	"github.com/user/blogivea-go/config"
)

// maxUpstreamBody bounds how much of an upstream response is read.
const maxUpstreamBody = 1 << 20

// Client calls the summarization endpoint.
type Client struct {
	URL        string
	Token      string
	HTTPClient *http.Client
}

// NewClient builds a Client from the summarize configuration.
func NewClient(cfg *config.SummarizeConfig) *Client {
	return &Client{
		URL:        cfg.URL,
		Token:      cfg.APIToken,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceResult struct {
	SummaryText string `json:"summary_text"`
}

// Summarize returns the model's summary of text. A non-2xx upstream reply is
// returned as an UpstreamError carrying the same status; a transport failure
// or a body that is not JSON is an ExternalServiceError. A 2xx JSON reply
// without a summary yields "".
func (c *Client) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperror.NewBadRequestError("Text is required", nil)
	}

	body, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return "", apperror.NewInternalError("Failed to encode summary request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", apperror.NewInternalError("Failed to build summary request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", apperror.NewExternalServiceError("Summarization service unavailable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxUpstreamBody))
	if err != nil {
		return "", apperror.NewExternalServiceError("Failed to read summary response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(raw))
		if msg == "" {
			msg = "Failed to generate summary"
		}
		return "", apperror.NewUpstreamError(resp.StatusCode, msg)
	}

	var payload json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", apperror.NewExternalServiceError("Unexpected summary response", fmt.Errorf("decode %q: %w", raw, err))
	}
	// Anything other than a list of results (e.g. a loading notice) has no summary.
	var results []inferenceResult
	if err := json.Unmarshal(payload, &results); err != nil || len(results) == 0 {
		return "", nil
	}
	return results[0].SummaryText, nil
}
