package proxy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dgnsrekt/starchart/internal/astronomyapi"
)

const (
	missingCredentialsBody = `{"error":"Missing AstronomyAPI credentials in .env"}`
	upstreamFailureBody    = `{"error":"Server error calling AstronomyAPI"}`
	jsonContentType        = "application/json; charset=utf-8"
)

// Upstream is the external imaging API.
type Upstream interface {
	StarChart(ctx context.Context, creds astronomyapi.Credentials, payload []byte) (astronomyapi.RawResponse, error)
}

// Reply is what the caller relays to the client unchanged.
type Reply struct {
	Status      int
	Body        []byte
	ContentType string
}

// Service injects server-held credentials and forwards chart requests.
type Service struct {
	upstream Upstream
	creds    astronomyapi.Credentials
}

// NewService creates a Service. Credentials are checked per request so a
// misconfigured process still answers with an explanatory error.
func NewService(upstream Upstream, creds astronomyapi.Credentials) *Service {
	return &Service{upstream: upstream, creds: creds}
}

// GenerateChart forwards body upstream and returns the upstream status and raw
// body verbatim. Failures never escape: missing credentials and upstream errors
// both become fixed 500 replies.
func (s *Service) GenerateChart(ctx context.Context, body []byte) Reply {
	if !s.creds.Valid() {
		slog.Error("star-chart request rejected: credentials not configured")
		return Reply{Status: http.StatusInternalServerError, Body: []byte(missingCredentialsBody), ContentType: jsonContentType}
	}
	if len(body) == 0 {
		body = []byte("{}")
	}

	resp, err := s.upstream.StarChart(ctx, s.creds, body)
	if err != nil {
		attrs := []any{"error", err}
		var coded *astronomyapi.CodedError
		if errors.As(err, &coded) {
			attrs = append(attrs, "code", coded.Code)
		}
		slog.Error("star-chart upstream call failed", attrs...)
		return Reply{Status: http.StatusInternalServerError, Body: []byte(upstreamFailureBody), ContentType: jsonContentType}
	}

	if resp.Status >= 400 {
		slog.Warn("star-chart upstream returned error status", "status", resp.Status, "bytes", len(resp.Body))
	}
	return Reply{Status: resp.Status, Body: resp.Body, ContentType: resp.ContentType}
}
