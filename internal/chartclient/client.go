package chartclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dgnsrekt/starchart/internal/starchart"
	"github.com/dgnsrekt/starchart/internal/version"
)

// Fetcher generates a chart and returns its image URL.
type Fetcher interface {
	GenerateChart(ctx context.Context, req starchart.ChartRequest) (string, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the star-chart proxy.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultProxyAddr = "127.0.0.1:5050"
	requestTimeout   = 35 * time.Second
	starChartPath    = "/api/star-chart"
	maxErrorBody     = 512
)

// NewClient builds a Client for the proxy at addr (host:port or URL).
func NewClient(addr string) (*Client, error) {
	base, err := parseBaseURL(addr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: "starchart/" + version.Version,
	}, nil
}

// BaseURL returns the normalised proxy origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type chartResponse struct {
	Data struct {
		ImageURL    string `json:"imageUrl"`
		ImageURLAlt string `json:"image_url"`
	} `json:"data"`
}

// GenerateChart posts req to the proxy. A non-2xx status, undecodable JSON or a
// response without an image URL is an error.
func (c *Client) GenerateChart(ctx context.Context, req starchart.ChartRequest) (string, error) {
	if c == nil {
		return "", fmt.Errorf("client is nil")
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", newError(CodeEncode, "encode request", err)
	}

	reqURL := c.baseURL.ResolveReference(&url.URL{Path: starChartPath})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL.String(), bytes.NewReader(payload))
	if err != nil {
		return "", newError(CodeTransport, "create request", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", newError(CodeTransport, "execute request", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", &CodedError{
			Code:    CodeHTTPStatus,
			Message: fmt.Sprintf("API error %d", resp.StatusCode),
			Status:  resp.StatusCode,
			Body:    strings.TrimSpace(string(snippet)),
		}
	}

	var payloadOut chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payloadOut); err != nil {
		return "", newError(CodeDecode, "decode response", err)
	}
	imageURL := strings.TrimSpace(payloadOut.Data.ImageURL)
	if imageURL == "" {
		imageURL = strings.TrimSpace(payloadOut.Data.ImageURLAlt)
	}
	if imageURL == "" {
		return "", newError(CodeMissingImage, "no imageUrl in response", nil)
	}
	return imageURL, nil
}

func parseBaseURL(addr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(addr)
	if trimmed == "" {
		trimmed = defaultProxyAddr
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url %q: %w", addr, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
