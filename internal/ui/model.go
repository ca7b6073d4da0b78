// Package ui provides the Bubble Tea terminal panel.
package ui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/starchart/internal/panel"
	"github.com/dgnsrekt/starchart/internal/printer"
	"github.com/dgnsrekt/starchart/internal/snapshot"
)

const (
	defaultPlace    = "Monterey, CA"
	defaultDebounce = 250 * time.Millisecond
	monthStep       = 30
	yearStep        = 365
)

// PrintFunc prints doc and returns the stored print.
type PrintFunc func(ctx context.Context, doc printer.Document) (snapshot.Meta, error)

// Options configures the UI.
type Options struct {
	Context  context.Context
	Panel    *panel.Panel
	Print    PrintFunc
	Place    string
	Debounce time.Duration
}

// StateMsg carries a panel transition into the program.
type StateMsg panel.State

type loadDoneMsg panel.Result

type moveSettledMsg struct{ seq int }

type printDoneMsg struct {
	meta snapshot.Meta
	err  error
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx      context.Context
	panel    *panel.Panel
	print    PrintFunc
	place    string
	debounce time.Duration

	keys     keyMap
	help     help.Model
	showHelp bool
	width    int

	state    panel.State
	moveSeq  int
	printing bool
	notice   string
}

// New creates the model. opts.Panel is required.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	place := opts.Place
	if place == "" {
		place = defaultPlace
	}
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return Model{
		ctx:      ctx,
		panel:    opts.Panel,
		print:    opts.Print,
		place:    place,
		debounce: debounce,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		state:    opts.Panel.State(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.loadCmd(m.panel.Mount)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case StateMsg:
		m.state = panel.State(msg)
		return m, nil

	case loadDoneMsg:
		m.state = m.panel.State()
		return m, nil

	case moveSettledMsg:
		if msg.seq != m.moveSeq {
			return m, nil
		}
		return m, m.loadCmd(m.panel.LoadSelected)

	case printDoneMsg:
		m.printing = false
		if msg.err != nil {
			m.notice = "Print failed: " + msg.err.Error()
		} else {
			m.notice = fmt.Sprintf("Saved print %s (%d bytes)", msg.meta.ID, msg.meta.SizeBytes)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	case key.Matches(msg, m.keys.PrevDay):
		return m.move(-1)
	case key.Matches(msg, m.keys.NextDay):
		return m.move(1)
	case key.Matches(msg, m.keys.PrevMonth):
		return m.move(-monthStep)
	case key.Matches(msg, m.keys.NextMonth):
		return m.move(monthStep)
	case key.Matches(msg, m.keys.PrevYear):
		return m.move(-yearStep)
	case key.Matches(msg, m.keys.NextYear):
		return m.move(yearStep)
	case key.Matches(msg, m.keys.Labels):
		m.panel.ToggleLabels()
		m.state = m.panel.State()
		return m, m.loadCmd(m.panel.LoadSelected)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadCmd(m.panel.Refresh)
	case key.Matches(msg, m.keys.Print):
		return m.startPrint()
	}
	return m, nil
}

// move shifts the slider and schedules a load once key repeats settle.
func (m Model) move(delta int) (tea.Model, tea.Cmd) {
	if !m.panel.StepDays(delta) {
		return m, nil
	}
	m.state = m.panel.State()
	m.moveSeq++
	seq := m.moveSeq
	return m, tea.Tick(m.debounce, func(time.Time) tea.Msg {
		return moveSettledMsg{seq: seq}
	})
}

func (m Model) startPrint() (tea.Model, tea.Cmd) {
	if m.print == nil {
		m.notice = "Printing is not configured."
		return m, nil
	}
	if m.printing {
		return m, nil
	}
	s := m.panel.State()
	if s.ImageURL == "" || s.Loading {
		m.notice = "Nothing to print yet."
		return m, nil
	}
	m.printing = true
	m.notice = "Printing…"
	doc := m.document(s)
	ctx, printFn := m.ctx, m.print
	return m, func() tea.Msg {
		meta, err := printFn(ctx, doc)
		return printDoneMsg{meta: meta, err: err}
	}
}

func (m Model) document(s panel.State) printer.Document {
	return printer.FromState(m.place, m.panel.Config().Location, s)
}

func (m Model) loadCmd(load func(context.Context) panel.Result) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return loadDoneMsg(load(ctx))
	}
}

// Bridge forwards panel transitions to a running program. Observe never
// blocks; bursts coalesce to the latest state.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
	latest  panel.State
	wake    chan struct{}
}

// NewBridge returns an unattached bridge.
func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1)}
}

// Attach starts delivering transitions to p until ctx ends.
func (b *Bridge) Attach(ctx context.Context, p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
	go b.pump(ctx)
}

// Observe is a panel.Observer.
func (b *Bridge) Observe(s panel.State) {
	b.mu.Lock()
	b.latest = s
	b.mu.Unlock()
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) pump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-b.wake:
			b.mu.Lock()
			p, s := b.program, b.latest
			b.mu.Unlock()
			p.Send(StateMsg(s))
		}
	}
}
