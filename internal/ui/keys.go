package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the panel's keyboard bindings.
type keyMap struct {
	PrevDay   key.Binding
	NextDay   key.Binding
	PrevMonth key.Binding
	NextMonth key.Binding
	PrevYear  key.Binding
	NextYear  key.Binding
	Labels    key.Binding
	Refresh   key.Binding
	Print     key.Binding
	Help      key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		PrevDay: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "Previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "Next day"),
		),
		PrevMonth: key.NewBinding(
			key.WithKeys("shift+left"),
			key.WithHelp("shift+←", "Back 30 days"),
		),
		NextMonth: key.NewBinding(
			key.WithKeys("shift+right"),
			key.WithHelp("shift+→", "Forward 30 days"),
		),
		PrevYear: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "Back a year"),
		),
		NextYear: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "Forward a year"),
		),
		Labels: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle labels"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh (skip cache)"),
		),
		Print: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "Print to PDF"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevDay, k.NextDay, k.Labels, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevDay, k.NextDay, k.PrevMonth, k.NextMonth},
		{k.PrevYear, k.NextYear},
		{k.Labels, k.Refresh, k.Print},
		{k.Help, k.Quit},
	}
}
