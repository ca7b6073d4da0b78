package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dgnsrekt/starchart/internal/chartcache"
	"github.com/dgnsrekt/starchart/internal/config"
	"github.com/dgnsrekt/starchart/internal/panel"
	"github.com/dgnsrekt/starchart/internal/starchart"
)

func testConfig(t *testing.T, proxyURL string) config.PanelConfig {
	t.Helper()
	dir := t.TempDir()
	return config.PanelConfig{
		ProxyURL:    proxyURL,
		CachePath:   filepath.Join(dir, "cache.toml"),
		SnapshotDir: filepath.Join(dir, "prints"),
		Place:       "Monterey, CA",
		Location:    starchart.DefaultLocation,
		View:        starchart.DefaultView,
		Range:       starchart.DefaultRange,
		InitialDate: starchart.DefaultInitialDate,
		LabelsOn:    true,
		Fallbacks:   starchart.DefaultFallbacks(),
	}
}

func TestNewEnv_LoadsThroughProxyAndPersists(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"data":{"image_url":"https://x/img.png"}}`))
	}))
	t.Cleanup(server.Close)

	cfg := testConfig(t, server.URL)
	env, err := NewEnv(cfg)
	if err != nil {
		t.Fatalf("NewEnv returned error: %v", err)
	}
	res := env.Panel.Mount(context.Background())
	if res.Outcome != panel.OutcomeLive || res.ImageURL != "https://x/img.png" {
		t.Fatalf("result = %+v", res)
	}

	// A second process sees the persisted entry without calling the proxy.
	again, err := NewEnv(cfg)
	if err != nil {
		t.Fatalf("NewEnv returned error: %v", err)
	}
	if res := again.Panel.Mount(context.Background()); res.Outcome != panel.OutcomeCache {
		t.Fatalf("second mount Outcome = %v, want cache", res.Outcome)
	}
	if calls != 1 {
		t.Fatalf("proxy calls = %d, want 1", calls)
	}
	if got := chartcache.Open(cfg.CachePath).Len(); got != 1 {
		t.Fatalf("cache Len() = %d, want 1", got)
	}
}

func TestNewEnv_RejectsInvalidPanelConfig(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Fallbacks = nil
	if _, err := NewEnv(cfg); err == nil {
		t.Fatalf("NewEnv() = nil error for empty fallbacks")
	}
}

func TestPrints_CreatesArchiveDir(t *testing.T) {
	cfg := testConfig(t, "")
	env, err := NewEnv(cfg)
	if err != nil {
		t.Fatalf("NewEnv returned error: %v", err)
	}
	store, err := env.Prints()
	if err != nil {
		t.Fatalf("Prints() error = %v", err)
	}
	if store.Dir() != cfg.SnapshotDir {
		t.Fatalf("Dir() = %q", store.Dir())
	}
	if _, err := env.PrintCurrent(context.Background()); err == nil {
		t.Fatalf("PrintCurrent before any load = nil error")
	}
}
