package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/npratt/hiit/internal/timer"
)

// styles contains all lipgloss styles used by the TUI.
var styles = struct {
	// Layout styles
	Container lipgloss.Style
	Divider   lipgloss.Style

	// Countdown styles
	Clock lipgloss.Style
	Round lipgloss.Style

	// Phase colors
	Ready    lipgloss.Style
	Work     lipgloss.Style
	Rest     lipgloss.Style
	Paused   lipgloss.Style
	Complete lipgloss.Style

	// Round dots
	DotDone     lipgloss.Style
	DotCurrent  lipgloss.Style
	DotUpcoming lipgloss.Style

	// Footer and sharing
	Footer lipgloss.Style
	Share  lipgloss.Style
	Muted  lipgloss.Style

	// Event styles
	Event lipgloss.Style
	Sync  lipgloss.Style
	Error lipgloss.Style
}{
	Container: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(1, 2),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Clock: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")),

	Round: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),

	Ready: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")),

	Work: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("196")),

	Rest: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),

	Paused: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214")),

	Complete: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	DotDone: lipgloss.NewStyle().
		Foreground(lipgloss.Color("82")),

	DotCurrent: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("255")),

	DotUpcoming: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Share: lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")),

	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")),

	Event: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),

	Sync: lipgloss.NewStyle().
		Foreground(lipgloss.Color("177")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),
}

// phaseStyle returns the style for a phase label. A paused session is drawn
// in the paused color regardless of the phase it left.
func phaseStyle(p timer.Phase) lipgloss.Style {
	switch p {
	case timer.PhaseReady:
		return styles.Ready
	case timer.PhaseWork:
		return styles.Work
	case timer.PhaseRest:
		return styles.Rest
	case timer.PhasePaused:
		return styles.Paused
	case timer.PhaseComplete:
		return styles.Complete
	default:
		return styles.Round
	}
}
