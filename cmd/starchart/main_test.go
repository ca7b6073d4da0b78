package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/dgnsrekt/starchart/internal/snapshot"
)

type cliEnv struct {
	configPath  string
	snapshotDir string
}

func writeTestConfig(t *testing.T) cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := cliEnv{
		configPath:  filepath.Join(dir, "config.toml"),
		snapshotDir: filepath.Join(dir, "prints"),
	}
	body := "cache_path = \"" + filepath.Join(dir, "cache.toml") + "\"\n" +
		"snapshot_dir = \"" + env.snapshotDir + "\"\n" +
		"log_file = \"" + filepath.Join(dir, "panel.log") + "\"\n" +
		"log_level = \"error\"\n"
	if err := os.WriteFile(env.configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestFetch_PrintsLoadedState(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"imageUrl":"https://x/img.png"}}`))
	}))
	t.Cleanup(server.Close)
	env := writeTestConfig(t)

	out, err := runCLI(t, "fetch", "--config", env.configPath, "--proxy", server.URL, "--date", "1990-04-21", "--no-labels")
	if err != nil {
		t.Fatalf("fetch returned error: %v", err)
	}
	for _, want := range []string{"April 21, 1990", "no_labels", "Loaded.", "AstronomyAPI", "https://x/img.png"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	// The second run is served from the persisted cache.
	out, err = runCLI(t, "fetch", "--config", env.configPath, "--proxy", server.URL, "--date", "1990-04-21", "--no-labels")
	if err != nil {
		t.Fatalf("second fetch returned error: %v", err)
	}
	if !strings.Contains(out, "Cache") {
		t.Fatalf("second fetch not served from cache:\n%s", out)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("proxy calls = %d, want 1", got)
	}
}

func TestFetch_FailsWhenNoChartCanBeShown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unavailable"}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)
	env := writeTestConfig(t)

	out, err := runCLI(t, "fetch", "--config", env.configPath, "--proxy", server.URL)
	if !errors.Is(err, errChartUnavailable) {
		t.Fatalf("fetch error = %v, want errChartUnavailable", err)
	}
	if !strings.Contains(err.Error(), server.URL) {
		t.Fatalf("error %q does not name the proxy", err)
	}
	if !strings.Contains(out, "Unable to load star chart.") {
		t.Fatalf("output missing failure status:\n%s", out)
	}
}

func TestFetch_RejectsBadDate(t *testing.T) {
	env := writeTestConfig(t)
	if _, err := runCLI(t, "fetch", "--config", env.configPath, "--date", "not-a-date"); err == nil {
		t.Fatalf("fetch with bad --date = nil error")
	}
}

func TestPrintsShow_WritesStoredPDF(t *testing.T) {
	env := writeTestConfig(t)
	store, err := snapshot.NewStore(env.snapshotDir)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	meta, err := store.Save(snapshot.Meta{Date: "1990-04-20", Style: "default", Source: "Cache", ImageURL: "https://x/img.png", Format: "pdf"}, []byte("%PDF-1.4 test"))
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	dest := filepath.Join(t.TempDir(), "copy.pdf")
	out, err := runCLI(t, "prints", "show", meta.ID, "--config", env.configPath, "--out", dest)
	if err != nil {
		t.Fatalf("prints show returned error: %v", err)
	}
	for _, want := range []string{meta.ID, "April 20, 1990", "https://x/img.png", "Wrote " + dest} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read copy: %v", err)
	}
	if string(data) != "%PDF-1.4 test" {
		t.Fatalf("copy = %q", data)
	}

	if _, err := runCLI(t, "prints", "show", "00000000-0000-0000-0000-000000000000", "--config", env.configPath); !errors.Is(err, snapshot.ErrNotFound) {
		t.Fatalf("show unknown id error = %v, want ErrNotFound", err)
	}
}
