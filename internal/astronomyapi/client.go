package astronomyapi

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultStarChartURL is the AstronomyAPI studio star-chart endpoint.
	DefaultStarChartURL = "https://api.astronomyapi.com/api/v2/studio/star-chart"

	DefaultTimeout = 30 * time.Second
)

// Client posts star-chart requests to AstronomyAPI.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient builds a Client. An empty endpoint uses DefaultStarChartURL and a
// non-positive timeout uses DefaultTimeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultStarChartURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: timeout},
	}
}

// Endpoint returns the upstream URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// StarChart forwards payload unchanged with Basic auth and returns the upstream
// status and body verbatim. Non-2xx statuses are not errors.
func (c *Client) StarChart(ctx context.Context, creds Credentials, payload []byte) (RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return RawResponse{}, newError(CodeRequest, "create request", err)
	}
	req.Header.Set("Authorization", creds.BasicAuthHeader())
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return RawResponse{}, newError(CodeTransport, "execute request", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			slog.Debug("upstream body close failed", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RawResponse{}, newError(CodeReadBody, "read response body", err)
	}

	slog.Debug("upstream star-chart call",
		"status", resp.StatusCode,
		"bytes", len(body),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return RawResponse{
		Status:      resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
