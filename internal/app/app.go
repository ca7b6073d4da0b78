// Package app wires the panel's configuration, cache, proxy client, printer
// and terminal UI together.
package app

import (
	"context"
	"fmt"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/starchart/internal/chartcache"
	"github.com/dgnsrekt/starchart/internal/chartclient"
	"github.com/dgnsrekt/starchart/internal/config"
	"github.com/dgnsrekt/starchart/internal/panel"
	"github.com/dgnsrekt/starchart/internal/printer"
	"github.com/dgnsrekt/starchart/internal/snapshot"
	"github.com/dgnsrekt/starchart/internal/ui"
)

// Env holds the long-lived collaborators for one invocation.
type Env struct {
	Config  config.PanelConfig
	Cache   *chartcache.Store
	Client  *chartclient.Client
	Panel   *panel.Panel
	Printer *printer.Printer

	printsOnce sync.Once
	prints     *snapshot.Store
	printsErr  error
}

// NewEnv builds the panel from cfg. opts are passed to panel.New.
func NewEnv(cfg config.PanelConfig, opts ...panel.Option) (*Env, error) {
	client, err := chartclient.NewClient(cfg.ProxyURL)
	if err != nil {
		return nil, fmt.Errorf("init chart client: %w", err)
	}
	cache := chartcache.Open(cfg.CachePath)

	p, err := panel.New(PanelConfig(cfg), client, cache, opts...)
	if err != nil {
		return nil, err
	}
	return &Env{
		Config:  cfg,
		Cache:   cache,
		Client:  client,
		Panel:   p,
		Printer: printer.New(cfg.CDPURL, 0),
	}, nil
}

// PanelConfig projects the file config onto the panel's injected settings.
func PanelConfig(cfg config.PanelConfig) panel.Config {
	return panel.Config{
		Location:    cfg.Location,
		View:        cfg.View,
		Range:       cfg.Range,
		InitialDate: cfg.InitialDate,
		LabelsOn:    cfg.LabelsOn,
		Fallbacks:   cfg.Fallbacks,
	}
}

// Prints opens the print archive on first use.
func (e *Env) Prints() (*snapshot.Store, error) {
	e.printsOnce.Do(func() {
		e.prints, e.printsErr = snapshot.NewStore(e.Config.SnapshotDir)
	})
	return e.prints, e.printsErr
}

// PrintDocument renders doc to PDF and archives it.
func (e *Env) PrintDocument(ctx context.Context, doc printer.Document) (snapshot.Meta, error) {
	store, err := e.Prints()
	if err != nil {
		return snapshot.Meta{}, err
	}
	return e.Printer.Archive(ctx, store, doc)
}

// PrintCurrent prints whatever the panel is showing.
func (e *Env) PrintCurrent(ctx context.Context) (snapshot.Meta, error) {
	s := e.Panel.State()
	return e.PrintDocument(ctx, printer.FromState(e.Config.Place, e.Config.Location, s))
}

// RunPanel starts the terminal UI and blocks until the user quits or ctx ends.
func RunPanel(ctx context.Context, cfg config.PanelConfig) error {
	bridge := ui.NewBridge()
	env, err := NewEnv(cfg, panel.WithObserver(bridge.Observe))
	if err != nil {
		return err
	}

	model := ui.New(ui.Options{
		Context: ctx,
		Panel:   env.Panel,
		Print:   env.PrintDocument,
		Place:   cfg.Place,
	})
	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	pumpCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	bridge.Attach(pumpCtx, prog)

	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run panel: %w", err)
	}
	return nil
}
