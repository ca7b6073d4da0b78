package panel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgnsrekt/starchart/internal/starchart"
)

// LoadOptions tunes a single Load.
type LoadOptions struct {
	AllowCache   bool
	FromFallback bool
}

// DefaultLoadOptions allows cache hits and permits one fallback.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{AllowCache: true}
}

// Outcome is how a Load ended.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeCache
	OutcomeLive
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCache:
		return "cache"
	case OutcomeLive:
		return "live"
	case OutcomeFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result describes a finished Load.
type Result struct {
	Key          string
	Generation   uint64
	Outcome      Outcome
	ImageURL     string
	FromFallback bool
	Fallback     *starchart.FallbackCandidate
	// Stale is set when a newer load took over before this one finished; the
	// visible state was left untouched.
	Stale bool
	Err   error
}

// flight tracks one in-progress key. gen is re-pointed when a later Load for
// the same key adopts it.
type flight struct {
	key string
	gen uint64
}

type attempt struct {
	date         string
	key          string
	fromFallback bool
	allowCache   bool
}

// Mount loads the initially selected day.
func (p *Panel) Mount(ctx context.Context) Result {
	return p.Load(ctx, p.State().Date, DefaultLoadOptions())
}

// Refresh reloads the selected day, bypassing the cache.
func (p *Panel) Refresh(ctx context.Context) Result {
	return p.Load(ctx, p.State().Date, LoadOptions{AllowCache: false})
}

// LoadSelected loads the selected day with the cache allowed.
func (p *Panel) LoadSelected(ctx context.Context) Result {
	return p.Load(ctx, p.State().Date, DefaultLoadOptions())
}

// Load fetches the chart for date in the current style. A primary attempt that
// fails is followed by exactly one fallback attempt on a random candidate date,
// unless opts.FromFallback marks the call as a fallback already.
//
// A Load for a key that is already in flight makes no request. If the
// in-flight load belongs to an older generation it is adopted so its result
// becomes visible.
func (p *Panel) Load(ctx context.Context, date string, opts LoadOptions) Result {
	fl, key, style, joined := p.begin(date)
	if joined {
		return Result{Key: key, Outcome: OutcomeSkipped}
	}
	defer p.release(fl)

	primary := attempt{date: date, key: key, fromFallback: opts.FromFallback, allowCache: opts.AllowCache}
	imageURL, outcome, err := p.run(ctx, primary, style)
	if err == nil {
		return p.succeed(fl, primary, imageURL, outcome, nil)
	}
	slog.Warn("star chart load failed", "date", date, "style", style, "from_fallback", opts.FromFallback, "error", err)
	if opts.FromFallback {
		return p.fail(fl, key, err)
	}

	cand := p.cfg.Fallbacks[p.pickIndex()]
	p.settle(fl, func(s *State) {
		s.Status = StatusDegraded
		s.Source = fmt.Sprintf(sourceFallbackTemplate, cand.Label)
		s.Fallback = &cand
	})

	fallback := attempt{
		date:         cand.Date,
		key:          starchart.CacheKey(cand.Date, p.cfg.Location, style),
		fromFallback: true,
		allowCache:   true,
	}
	imageURL, outcome, err = p.run(ctx, fallback, style)
	if err == nil {
		return p.succeed(fl, fallback, imageURL, outcome, &cand)
	}
	slog.Warn("star chart fallback failed", "date", cand.Date, "label", cand.Label, "error", err)
	res := p.fail(fl, key, err)
	res.Fallback = &cand
	return res
}

// run performs one attempt: cache lookup, then the network.
func (p *Panel) run(ctx context.Context, a attempt, style starchart.Style) (string, Outcome, error) {
	if a.allowCache {
		if url, ok := p.cache.Get(a.key); ok {
			return url, OutcomeCache, nil
		}
	}
	req := starchart.NewChartRequest(p.cfg.Location, p.cfg.View, a.date, style)
	url, err := p.fetcher.GenerateChart(ctx, req)
	if err != nil {
		return "", OutcomeFailed, err
	}
	if err := p.cache.Set(a.key, url); err != nil {
		slog.Warn("chart cache write failed", "key", a.key, "error", err)
	}
	return url, OutcomeLive, nil
}

func (p *Panel) succeed(fl *flight, a attempt, imageURL string, outcome Outcome, cand *starchart.FallbackCandidate) Result {
	source := sourceLabel(outcome, a.fromFallback)
	applied, gen := p.finish(fl, func(s *State) {
		s.ImageURL = imageURL
		s.ChartDate = a.date
		s.Status = StatusLoaded
		s.Source = source
		s.Loading = false
		s.ImageLoaded = true
		s.Fallback = cand
	})
	return Result{
		Key:          a.key,
		Generation:   gen,
		Outcome:      outcome,
		ImageURL:     imageURL,
		FromFallback: a.fromFallback,
		Fallback:     cand,
		Stale:        !applied,
	}
}

func (p *Panel) fail(fl *flight, key string, err error) Result {
	applied, gen := p.finish(fl, func(s *State) {
		s.Status = StatusFailed
		s.Source = SourceNone
		s.Loading = false
		s.Fallback = nil
	})
	return Result{Key: key, Generation: gen, Outcome: OutcomeFailed, Stale: !applied, Err: err}
}

func sourceLabel(outcome Outcome, fromFallback bool) string {
	switch {
	case outcome == OutcomeCache && fromFallback:
		return SourceCelebrityCache
	case outcome == OutcomeCache:
		return SourceCache
	case fromFallback:
		return SourceCelebrityLive
	default:
		return SourceLive
	}
}

// begin claims key for date or joins an existing flight for it.
func (p *Panel) begin(date string) (fl *flight, key string, style starchart.Style, joined bool) {
	p.update(func(s *State) bool {
		style = s.Style
		key = starchart.CacheKey(date, p.cfg.Location, style)
		if existing, ok := p.inFlight[key]; ok {
			joined = true
			if existing.gen == s.Generation {
				return false
			}
			s.Generation++
			existing.gen = s.Generation
			markGenerating(s)
			return true
		}
		s.Generation++
		fl = &flight{key: key, gen: s.Generation}
		p.inFlight[key] = fl
		markGenerating(s)
		return true
	})
	return fl, key, style, joined
}

func markGenerating(s *State) {
	s.Status = StatusGenerating
	s.Loading = true
	s.ImageLoaded = false
}

// settle applies fn only while fl still owns the visible state.
func (p *Panel) settle(fl *flight, fn func(*State)) bool {
	applied := false
	p.update(func(s *State) bool {
		if fl.gen != s.Generation {
			return false
		}
		fn(s)
		applied = true
		return true
	})
	return applied
}

// finish releases the flight and applies fn in one step, so a Load joining
// the key can never adopt a flight that has already settled.
func (p *Panel) finish(fl *flight, fn func(*State)) (bool, uint64) {
	applied := false
	var gen uint64
	p.update(func(s *State) bool {
		p.dropLocked(fl)
		gen = fl.gen
		if fl.gen != s.Generation {
			return false
		}
		fn(s)
		applied = true
		return true
	})
	return applied, gen
}

// release is the deferred safety net for panics between begin and finish.
func (p *Panel) release(fl *flight) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dropLocked(fl)
}

func (p *Panel) dropLocked(fl *flight) {
	if p.inFlight[fl.key] == fl {
		delete(p.inFlight, fl.key)
	}
}

// InFlight reports whether a load for key is running.
func (p *Panel) InFlight(key string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.inFlight[key]
	return ok
}

func (p *Panel) pickIndex() int {
	n := len(p.cfg.Fallbacks)
	i := p.pick(n)
	if i < 0 || i >= n {
		return 0
	}
	return i
}
