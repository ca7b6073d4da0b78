package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dgnsrekt/starchart/internal/panel"
	"github.com/dgnsrekt/starchart/internal/starchart"
)

const (
	minSliderWidth = 20
	maxSliderWidth = 72
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E6E6FA"))
	subtleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#8A8FA3"))
	trackStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3B4261"))
	fillStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#7AA2F7"))
	thumbStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD479"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ECE6A"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#E0AF68"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7768E"))
	frameStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B4261")).
			Padding(1, 2)
)

// View implements tea.Model.
func (m Model) View() string {
	s := m.state
	cfg := m.panel.Config()

	var b strings.Builder
	b.WriteString(titleStyle.Render("Night Sky"))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%s • %s (UTC)", m.place, starchart.PrettyDate(s.Date))))
	b.WriteString("\n\n")

	b.WriteString(renderSlider(s.DayOffset, s.TotalDays, m.sliderWidth()))
	b.WriteString("\n")
	b.WriteString(renderRangeLabels(cfg.Range, m.sliderWidth()))
	b.WriteString("\n\n")

	b.WriteString(renderChartLine(s))
	b.WriteString("\n\n")

	b.WriteString(statusStyle(s).Render(s.Status))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render(cfg.Location.Coordinates()))
	b.WriteString("\n")
	b.WriteString(subtleStyle.Render("Source: " + s.Source))
	b.WriteString("\n")
	labels := "on"
	if !s.LabelsOn {
		labels = "off"
	}
	b.WriteString(subtleStyle.Render("Labels: " + labels))

	if m.notice != "" {
		b.WriteString("\n\n")
		b.WriteString(m.notice)
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return frameStyle.Render(b.String())
}

func (m Model) sliderWidth() int {
	w := m.width - 8
	if w < minSliderWidth {
		return minSliderWidth
	}
	if w > maxSliderWidth {
		return maxSliderWidth
	}
	return w
}

// renderSlider draws a track with the thumb at offset/total.
func renderSlider(offset, total, width int) string {
	pos := 0
	if total > 0 {
		pos = starchart.Clamp(offset*(width-1)/total, 0, width-1)
	}
	return fillStyle.Render(strings.Repeat("━", pos)) +
		thumbStyle.Render("●") +
		trackStyle.Render(strings.Repeat("─", width-1-pos))
}

func renderRangeLabels(r starchart.DateRange, width int) string {
	start, end := yearOf(r.Start), yearOf(r.End)
	gap := width - len(start) - len(end)
	if gap < 1 {
		gap = 1
	}
	return subtleStyle.Render(start + strings.Repeat(" ", gap) + end)
}

func yearOf(date string) string {
	if len(date) >= 4 {
		return date[:4]
	}
	return date
}

func renderChartLine(s panel.State) string {
	switch {
	case s.ImageURL == "":
		return subtleStyle.Render("No chart yet.")
	case s.Loading:
		return subtleStyle.Render("Chart: " + s.ImageURL + " (updating)")
	default:
		return "Chart: " + s.ImageURL
	}
}

func statusStyle(s panel.State) lipgloss.Style {
	switch s.Status {
	case panel.StatusLoaded:
		return okStyle
	case panel.StatusDegraded:
		return warnStyle
	case panel.StatusFailed:
		return errStyle
	default:
		return subtleStyle
	}
}
