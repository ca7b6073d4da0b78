package astronomyapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestBasicAuthHeader(t *testing.T) {
	creds := Credentials{AppID: "id", AppSecret: "secret"}
	if got, want := creds.BasicAuthHeader(), "Basic aWQ6c2VjcmV0"; got != want {
		t.Fatalf("BasicAuthHeader() = %q, want %q", got, want)
	}
}

func TestCredentialsValid(t *testing.T) {
	tests := []struct {
		name  string
		creds Credentials
		want  bool
	}{
		{"both", Credentials{AppID: "a", AppSecret: "b"}, true},
		{"missing id", Credentials{AppSecret: "b"}, false},
		{"missing secret", Credentials{AppID: "a"}, false},
		{"blank", Credentials{AppID: "  ", AppSecret: "  "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.creds.Valid(); got != tt.want {
				t.Fatalf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStarChart_ForwardsPayloadAndRelaysVerbatim(t *testing.T) {
	var gotAuth, gotType, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"nope"}`))
	}))
	t.Cleanup(server.Close)

	c := NewClient(server.URL, 0)
	resp, err := c.StarChart(context.Background(), Credentials{AppID: "id", AppSecret: "secret"}, []byte(`{"style":"default"}`))
	if err != nil {
		t.Fatalf("StarChart() error = %v", err)
	}
	if gotAuth != "Basic aWQ6c2VjcmV0" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Fatalf("Content-Type = %q", gotType)
	}
	if gotBody != `{"style":"default"}` {
		t.Fatalf("forwarded body = %q", gotBody)
	}
	if resp.Status != http.StatusForbidden || string(resp.Body) != `{"message":"nope"}` {
		t.Fatalf("resp = %d %q, want 403 verbatim body", resp.Status, resp.Body)
	}
	if resp.ContentType != "application/json; charset=utf-8" {
		t.Fatalf("ContentType = %q", resp.ContentType)
	}
}

func TestStarChart_TransportErrorIsCoded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	c := NewClient(url, 0)
	_, err := c.StarChart(context.Background(), Credentials{AppID: "a", AppSecret: "b"}, []byte(`{}`))
	if err == nil {
		t.Fatalf("StarChart() = nil error; want transport error")
	}
	var coded *CodedError
	if !errors.As(err, &coded) {
		t.Fatalf("StarChart() error type = %T; want *CodedError", err)
	}
	if coded.Code != CodeTransport {
		t.Fatalf("code = %q, want %q", coded.Code, CodeTransport)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("  ", 0)
	if c.Endpoint() != DefaultStarChartURL {
		t.Fatalf("Endpoint() = %q, want default", c.Endpoint())
	}
	if c.http.Timeout != DefaultTimeout {
		t.Fatalf("timeout = %v, want %v", c.http.Timeout, DefaultTimeout)
	}
}
