package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgnsrekt/starchart/internal/app"
	"github.com/dgnsrekt/starchart/internal/config"
	"github.com/dgnsrekt/starchart/internal/logging"
	"github.com/dgnsrekt/starchart/internal/version"
)

var (
	configPath string
	proxyURL   string
	logLevel   string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "starchart",
		Short:   "Scrub through the night sky over a fixed location",
		Version: version.Version,
		Long: `starchart shows AstronomyAPI star charts for a date range, caching every
chart locally and falling back to a celebrity sky when the proxy fails.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if term.IsTerminal(int(os.Stdout.Fd())) {
				return runPanel(cmd, args)
			}
			return runFetch(cmd, args)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "panel config path (default "+config.DefaultPanelConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&proxyURL, "proxy", "", "override the star-chart proxy URL")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the log level (debug, info, warn, error)")
	addFetchFlags(rootCmd)

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "panel",
			Short: "Run the interactive terminal panel",
			Args:  cobra.NoArgs,
			RunE:  runPanel,
		},
		newFetchCmd(),
		newPrintCmd(),
		newCacheCmd(),
		newPrintsCmd(),
	)
	return rootCmd
}

// loadConfig reads the panel config, applies flag overrides and installs
// logging. Console logging is only enabled for headless commands.
func loadConfig(console io.Writer) (config.PanelConfig, io.Closer, error) {
	cfg, err := config.LoadPanel(configPath)
	if err != nil {
		return config.PanelConfig{}, nil, err
	}
	if proxyURL != "" {
		cfg.ProxyURL = proxyURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	closer, err := logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Console: console})
	if err != nil {
		return config.PanelConfig{}, nil, fmt.Errorf("logger setup failed: %w", err)
	}
	return cfg, closer, nil
}

func runPanel(cmd *cobra.Command, _ []string) error {
	cfg, closer, err := loadConfig(nil)
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()
	return app.RunPanel(cmd.Context(), cfg)
}
