package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/starchart/internal/app"
	"github.com/dgnsrekt/starchart/internal/panel"
	"github.com/dgnsrekt/starchart/internal/starchart"
)

var (
	fetchDate     string
	fetchNoLabels bool
	fetchRefresh  bool
)

var errChartUnavailable = errors.New("unable to load star chart")

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&fetchDate, "date", "", "chart date YYYY-MM-DD (default: configured initial date)")
	cmd.Flags().BoolVar(&fetchNoLabels, "no-labels", false, "render without constellation labels")
	cmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "skip the local cache")
}

func newFetchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Load one chart and print the result",
		Args:  cobra.NoArgs,
		RunE:  runFetch,
	}
	addFetchFlags(cmd)
	return cmd
}

func newPrintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "print",
		Short: "Load one chart and save it as a PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, closer, err := loadChart(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			meta, err := env.PrintCurrent(cmd.Context())
			if err != nil {
				return err
			}
			store, _ := env.Prints()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", store.Path(meta))
			return nil
		},
	}
	addFetchFlags(cmd)
	return cmd
}

func runFetch(cmd *cobra.Command, _ []string) error {
	_, closer, err := loadChart(cmd)
	if err != nil {
		return err
	}
	return closer.Close()
}

// loadChart selects the requested day and style, loads it and writes the
// resulting state. It fails when no chart could be shown.
func loadChart(cmd *cobra.Command) (*app.Env, io.Closer, error) {
	cfg, closer, err := loadConfig(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	env, err := app.NewEnv(cfg)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}

	if fetchDate != "" {
		if _, err := env.Panel.SetDate(fetchDate); err != nil {
			_ = closer.Close()
			return nil, nil, fmt.Errorf("--date: %w", err)
		}
	}
	if fetchNoLabels {
		env.Panel.SetLabels(false)
	}

	var res panel.Result
	if fetchRefresh {
		res = env.Panel.Refresh(cmd.Context())
	} else {
		res = env.Panel.LoadSelected(cmd.Context())
	}
	writeState(cmd.OutOrStdout(), env.Panel.State())
	if res.Outcome == panel.OutcomeFailed {
		_ = closer.Close()
		return nil, nil, fmt.Errorf("%w via %s", errChartUnavailable, env.Client.BaseURL())
	}
	return env, closer, nil
}

func writeState(w io.Writer, s panel.State) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "Date:\t%s\n", starchart.PrettyDate(s.Date))
	if s.ChartDate != "" && s.ChartDate != s.Date {
		_, _ = fmt.Fprintf(tw, "Shown:\t%s\n", starchart.PrettyDate(s.ChartDate))
	}
	_, _ = fmt.Fprintf(tw, "Style:\t%s\n", s.Style)
	_, _ = fmt.Fprintf(tw, "Status:\t%s\n", s.Status)
	_, _ = fmt.Fprintf(tw, "Source:\t%s\n", s.Source)
	if s.ImageURL != "" {
		_, _ = fmt.Fprintf(tw, "Image:\t%s\n", s.ImageURL)
	}
	_ = tw.Flush()
}

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the local chart cache",
	}
	cacheCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List cached charts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, closer, err := loadConfig(os.Stderr)
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			env, err := app.NewEnv(cfg)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, e := range env.Cache.Entries() {
				_, _ = fmt.Fprintf(tw, "%s\t%s\n", e.Key, e.ImageURL)
			}
			_ = tw.Flush()
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%d cached charts in %s\n", env.Cache.Len(), env.Cache.Path())
			return nil
		},
	})
	return cacheCmd
}

func newPrintsCmd() *cobra.Command {
	printsCmd := &cobra.Command{
		Use:   "prints",
		Short: "Manage saved PDF prints",
	}
	printsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved prints, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				env, closer, err := printsEnv()
				if err != nil {
					return err
				}
				defer func() { _ = closer.Close() }()

				store, err := env.Prints()
				if err != nil {
					return err
				}
				metas, err := store.List()
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				for _, m := range metas {
					_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", m.ID, m.Date, m.Style, m.CreatedAt.Local().Format("2006-01-02 15:04"), m.SizeBytes)
				}
				return tw.Flush()
			},
		},
		newPrintsShowCmd(),
		&cobra.Command{
			Use:   "rm <id>",
			Short: "Delete a saved print",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				env, closer, err := printsEnv()
				if err != nil {
					return err
				}
				defer func() { _ = closer.Close() }()

				store, err := env.Prints()
				if err != nil {
					return err
				}
				return store.Delete(args[0])
			},
		},
	)
	return printsCmd
}

func newPrintsShowCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved print, optionally copying the PDF out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, closer, err := printsEnv()
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			store, err := env.Prints()
			if err != nil {
				return err
			}
			meta, err := store.Get(args[0])
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintf(tw, "ID:\t%s\n", meta.ID)
			_, _ = fmt.Fprintf(tw, "Date:\t%s\n", starchart.PrettyDate(meta.Date))
			_, _ = fmt.Fprintf(tw, "Style:\t%s\n", meta.Style)
			_, _ = fmt.Fprintf(tw, "Source:\t%s\n", meta.Source)
			_, _ = fmt.Fprintf(tw, "Image:\t%s\n", meta.ImageURL)
			_, _ = fmt.Fprintf(tw, "File:\t%s (%d bytes)\n", store.Path(meta), meta.SizeBytes)
			_, _ = fmt.Fprintf(tw, "Created:\t%s\n", meta.CreatedAt.Local().Format("2006-01-02 15:04:05"))
			if err := tw.Flush(); err != nil {
				return err
			}
			if out == "" {
				return nil
			}

			data, _, err := store.ReadFile(meta.ID)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "copy the print to this path")
	return cmd
}

func printsEnv() (*app.Env, io.Closer, error) {
	cfg, closer, err := loadConfig(os.Stderr)
	if err != nil {
		return nil, nil, err
	}
	env, err := app.NewEnv(cfg)
	if err != nil {
		_ = closer.Close()
		return nil, nil, err
	}
	return env, closer, nil
}
