package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgnsrekt/starchart/internal/api"
	"github.com/dgnsrekt/starchart/internal/astronomyapi"
	"github.com/dgnsrekt/starchart/internal/config"
	"github.com/dgnsrekt/starchart/internal/logging"
	"github.com/dgnsrekt/starchart/internal/netutil"
	"github.com/dgnsrekt/starchart/internal/proxy"
	"github.com/dgnsrekt/starchart/internal/version"
)

func main() {
	cfg, err := config.LoadProxy()
	if err != nil {
		slog.Error("failed to load proxy config", "error", err)
		os.Exit(1)
	}

	logCloser, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: os.Stdout})
	if err != nil {
		_, _ = io.WriteString(os.Stderr, "logger setup failed: "+err.Error()+"\n")
		os.Exit(1)
	}
	defer func() { _ = logCloser.Close() }()

	creds := cfg.Credentials()
	slog.Info("proxy config loaded",
		"version", version.Version,
		"bind_addr", cfg.BindAddr(),
		"upstream_url", cfg.UpstreamURL,
		"upstream_timeout_ms", cfg.UpstreamTimeoutMS,
		"credentials_present", creds.Valid(),
		"port_auto_fallback", cfg.PortAutoFallback,
		"port_candidates", cfg.PortCandidates,
		"log_level", cfg.LogLevel,
		"log_file", cfg.LogFile,
	)
	if !creds.Valid() {
		slog.Warn("AstronomyAPI credentials missing; chart requests will fail with 500")
	}

	ln, err := netutil.Listen(cfg.BindAddr(), cfg.PortCandidates, cfg.PortAutoFallback)
	if err != nil {
		slog.Error("failed to bind listener", "preferred", cfg.BindAddr(), "error", err)
		os.Exit(1)
	}
	bindAddr := ln.Addr().String()

	upstream := astronomyapi.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout())
	svc := proxy.NewService(upstream, creds)
	h := api.NewServer(svc)

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("proxy listening", "addr", bindAddr, "docs", "http://"+bindAddr+"/docs")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("proxy server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("proxy shutdown failed", "error", err)
	}
}
