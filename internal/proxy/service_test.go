package proxy

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/dgnsrekt/starchart/internal/astronomyapi"
)

type fakeUpstream struct {
	calls   int
	payload []byte
	resp    astronomyapi.RawResponse
	err     error
}

func (f *fakeUpstream) StarChart(ctx context.Context, creds astronomyapi.Credentials, payload []byte) (astronomyapi.RawResponse, error) {
	f.calls++
	f.payload = payload
	return f.resp, f.err
}

func TestGenerateChart_MissingCredentialsMakesNoUpstreamCall(t *testing.T) {
	up := &fakeUpstream{}
	svc := NewService(up, astronomyapi.Credentials{})

	reply := svc.GenerateChart(context.Background(), []byte(`{"style":"default"}`))
	if reply.Status != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want 500", reply.Status)
	}
	if !strings.Contains(string(reply.Body), "Missing AstronomyAPI credentials") {
		t.Fatalf("Body = %q, want credentials error", reply.Body)
	}
	if up.calls != 0 {
		t.Fatalf("upstream calls = %d, want 0", up.calls)
	}
}

func TestGenerateChart_RelaysUpstreamVerbatim(t *testing.T) {
	up := &fakeUpstream{resp: astronomyapi.RawResponse{Status: 503, Body: []byte(`{"error":"unavailable"}`), ContentType: "application/json"}}
	svc := NewService(up, astronomyapi.Credentials{AppID: "id", AppSecret: "secret"})

	reply := svc.GenerateChart(context.Background(), []byte(`{"style":"no_labels"}`))
	if reply.Status != 503 || string(reply.Body) != `{"error":"unavailable"}` {
		t.Fatalf("reply = %d %q, want upstream verbatim", reply.Status, reply.Body)
	}
	if string(up.payload) != `{"style":"no_labels"}` {
		t.Fatalf("forwarded payload = %q", up.payload)
	}
}

func TestGenerateChart_EmptyBodyForwardedAsEmptyObject(t *testing.T) {
	up := &fakeUpstream{resp: astronomyapi.RawResponse{Status: 200, Body: []byte(`{}`)}}
	svc := NewService(up, astronomyapi.Credentials{AppID: "id", AppSecret: "secret"})

	_ = svc.GenerateChart(context.Background(), nil)
	if string(up.payload) != "{}" {
		t.Fatalf("forwarded payload = %q, want {}", up.payload)
	}
}

func TestGenerateChart_UpstreamErrorIsLoggedAndHidden(t *testing.T) {
	var buf bytes.Buffer
	oldLogger := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(oldLogger)
	})

	up := &fakeUpstream{err: &astronomyapi.CodedError{Code: astronomyapi.CodeTransport, Message: "execute request", Cause: errors.New("dial tcp: refused")}}
	svc := NewService(up, astronomyapi.Credentials{AppID: "id", AppSecret: "secret"})

	reply := svc.GenerateChart(context.Background(), []byte(`{}`))
	if reply.Status != http.StatusInternalServerError {
		t.Fatalf("Status = %d, want 500", reply.Status)
	}
	if string(reply.Body) != `{"error":"Server error calling AstronomyAPI"}` {
		t.Fatalf("Body = %q, want generic error", reply.Body)
	}
	if strings.Contains(string(reply.Body), "refused") {
		t.Fatalf("Body leaks cause: %q", reply.Body)
	}
	if !strings.Contains(buf.String(), "star-chart upstream call failed") || !strings.Contains(buf.String(), astronomyapi.CodeTransport) {
		t.Fatalf("expected upstream failure log, got %q", buf.String())
	}
}
