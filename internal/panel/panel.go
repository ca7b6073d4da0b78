// Package panel owns the chart panel's selection state and its
// request/cache/fallback lifecycle. It has no UI dependency; the terminal UI
// and the headless CLI both drive it.
package panel

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/dgnsrekt/starchart/internal/starchart"
)

// Status texts shown to the user.
const (
	StatusGenerating = "Generating star chart…"
	StatusLoaded     = "Loaded."
	StatusDegraded   = "API slow/unavailable, showing a celebrity sky."
	StatusFailed     = "Unable to load star chart."
)

// Source labels describing where the visible chart came from.
const (
	SourceNone             = "—"
	SourceCache            = "Cache"
	SourceCelebrityCache   = "Celebrity cache"
	SourceLive             = "AstronomyAPI"
	SourceCelebrityLive    = "Celebrity fallback (AstronomyAPI)"
	sourceFallbackTemplate = "Fallback: %s"
)

// Fetcher issues a chart request and returns the image URL.
type Fetcher interface {
	GenerateChart(ctx context.Context, req starchart.ChartRequest) (string, error)
}

// Cache is the persistent key to image URL store.
type Cache interface {
	Get(key string) (string, bool)
	Set(key, imageURL string) error
}

// Picker returns an index in [0, n).
type Picker func(n int) int

// Observer receives a snapshot after every state transition. It must not call
// back into Panel methods that mutate state.
type Observer func(State)

// Config is injected at construction so tests can swap the location or the
// fallback set.
type Config struct {
	Location    starchart.Location
	View        starchart.ViewParams
	Range       starchart.DateRange
	InitialDate string
	LabelsOn    bool
	Fallbacks   []starchart.FallbackCandidate
}

// DefaultConfig returns the Monterey sky over 1980–2000 with the built-in
// celebrity fallbacks.
func DefaultConfig() Config {
	return Config{
		Location:    starchart.DefaultLocation,
		View:        starchart.DefaultView,
		Range:       starchart.DefaultRange,
		InitialDate: starchart.DefaultInitialDate,
		LabelsOn:    true,
		Fallbacks:   starchart.DefaultFallbacks(),
	}
}

// Validate reports configuration that would make the panel unusable.
func (c Config) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	if _, err := starchart.ParseDate(c.InitialDate); err != nil {
		return fmt.Errorf("initial date: %w", err)
	}
	if len(c.Fallbacks) == 0 {
		return errors.New("at least one fallback candidate is required")
	}
	for i, f := range c.Fallbacks {
		if _, err := starchart.ParseDate(f.Date); err != nil {
			return fmt.Errorf("fallback[%d] (%s): %w", i, f.Label, err)
		}
	}
	return nil
}

// State is a value snapshot of the panel.
type State struct {
	DayOffset   int
	TotalDays   int
	Date        string // selected day
	LabelsOn    bool
	Style       starchart.Style
	ImageURL    string
	ChartDate   string // day of the visible image; differs from Date when a fallback is shown
	Status      string
	Source      string
	Loading     bool
	ImageLoaded bool
	Fallback    *starchart.FallbackCandidate
	Generation  uint64
}

// Option customises a Panel.
type Option func(*Panel)

// WithObserver registers fn to receive every state transition.
func WithObserver(fn Observer) Option {
	return func(p *Panel) { p.observer = fn }
}

// WithPicker replaces the uniform random fallback picker.
func WithPicker(fn Picker) Option {
	return func(p *Panel) {
		if fn != nil {
			p.pick = fn
		}
	}
}

// Panel is safe for concurrent use. Loads for different keys may overlap; the
// most recently started load owns the visible state.
type Panel struct {
	cfg      Config
	fetcher  Fetcher
	cache    Cache
	pick     Picker
	observer Observer

	// notifyMu serialises mutate+publish so observers see transitions in order.
	notifyMu sync.Mutex
	mu       sync.Mutex
	state    State
	inFlight map[string]*flight
}

// New validates cfg and returns a panel positioned on cfg.InitialDate.
func New(cfg Config, fetcher Fetcher, cache Cache, opts ...Option) (*Panel, error) {
	if fetcher == nil {
		return nil, errors.New("panel: fetcher is nil")
	}
	if cache == nil {
		return nil, errors.New("panel: cache is nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("panel: %w", err)
	}
	cfg.Fallbacks = append([]starchart.FallbackCandidate(nil), cfg.Fallbacks...)

	offset := cfg.Range.OffsetOf(cfg.InitialDate)
	p := &Panel{
		cfg:      cfg,
		fetcher:  fetcher,
		cache:    cache,
		pick:     rand.IntN,
		inFlight: make(map[string]*flight),
		state: State{
			DayOffset: offset,
			TotalDays: cfg.Range.TotalDays(),
			Date:      cfg.Range.DateAt(offset),
			LabelsOn:  cfg.LabelsOn,
			Style:     starchart.StyleFor(cfg.LabelsOn),
			Status:    StatusGenerating,
			Source:    SourceNone,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the panel's configuration.
func (p *Panel) Config() Config {
	cfg := p.cfg
	cfg.Fallbacks = append([]starchart.FallbackCandidate(nil), p.cfg.Fallbacks...)
	return cfg
}

// State returns the current snapshot.
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshotLocked()
}

// SetDayOffset moves the slider, clamped to the range. It reports whether the
// selected date changed.
func (p *Panel) SetDayOffset(offset int) bool {
	return p.moveTo(func(int) int { return offset })
}

// StepDays moves the slider by delta days.
func (p *Panel) StepDays(delta int) bool {
	return p.moveTo(func(cur int) int { return cur + delta })
}

func (p *Panel) moveTo(target func(cur int) int) bool {
	changed := false
	p.update(func(s *State) bool {
		offset := starchart.Clamp(target(s.DayOffset), 0, s.TotalDays)
		if offset == s.DayOffset {
			return false
		}
		s.DayOffset = offset
		s.Date = p.cfg.Range.DateAt(offset)
		changed = true
		return true
	})
	return changed
}

// SetDate selects date, clamped to the range.
func (p *Panel) SetDate(date string) (bool, error) {
	if _, err := starchart.ParseDate(date); err != nil {
		return false, err
	}
	return p.SetDayOffset(p.cfg.Range.OffsetOf(date)), nil
}

// ToggleLabels flips the labels flag and returns the new style.
func (p *Panel) ToggleLabels() starchart.Style {
	var style starchart.Style
	p.update(func(s *State) bool {
		s.LabelsOn = !s.LabelsOn
		s.Style = starchart.StyleFor(s.LabelsOn)
		style = s.Style
		return true
	})
	return style
}

// SetLabels sets the labels flag. It reports whether the style changed.
func (p *Panel) SetLabels(on bool) bool {
	changed := false
	p.update(func(s *State) bool {
		if s.LabelsOn == on {
			return false
		}
		s.LabelsOn = on
		s.Style = starchart.StyleFor(on)
		changed = true
		return true
	})
	return changed
}

// update applies fn under the state lock and publishes the result when fn
// reports a change.
func (p *Panel) update(fn func(*State) bool) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	changed := fn(&p.state)
	snap := p.snapshotLocked()
	p.mu.Unlock()

	if changed && p.observer != nil {
		p.observer(snap)
	}
}

func (p *Panel) snapshotLocked() State {
	s := p.state
	if s.Fallback != nil {
		f := *s.Fallback
		s.Fallback = &f
	}
	return s
}
