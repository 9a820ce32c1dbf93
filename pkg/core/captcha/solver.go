// Package captcha provides a client for a remote CAPTCHA-solving
// service: challenge image bytes in, proposed text token out.
package captcha

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Client calls an HTTP solver endpoint. Endpoint and key come from
// configuration (CAPTCHA_SOLVER_URL, CAPTCHA_SOLVER_KEY); the request
// carries the image base64-encoded and the response returns the token.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

type solveRequest struct {
	Image string `json:"image"`
}

type solveResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

// NewClient builds a solver client. Empty arguments fall back to the
// CAPTCHA_SOLVER_URL and CAPTCHA_SOLVER_KEY environment variables.
func NewClient(endpoint, apiKey string) *Client {
	if endpoint == "" {
		endpoint = os.Getenv("CAPTCHA_SOLVER_URL")
	}
	if apiKey == "" {
		apiKey = os.Getenv("CAPTCHA_SOLVER_KEY")
	}
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Solve submits the challenge image and returns the solver's token.
func (c *Client) Solve(ctx context.Context, image []byte) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("CAPTCHA_SOLVER_URL not configured")
	}

	payload, err := json.Marshal(solveRequest{Image: base64.StdEncoding.EncodeToString(image)})
	if err != nil {
		return "", fmt.Errorf("marshal solve request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build solve request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("solver call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read solver response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("solver returned status %d: %s", resp.StatusCode, string(body))
	}

	var out solveResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode solver response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("solver error: %s", out.Error)
	}
	if out.Text == "" {
		return "", fmt.Errorf("solver returned empty token")
	}
	return out.Text, nil
}
