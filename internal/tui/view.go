package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/npratt/hiit/internal/timer"
)

const (
	minWidth  = 40
	minHeight = 15
)

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.width < minWidth || m.height < minHeight {
		return m.renderTooSmall()
	}

	var body string
	switch {
	case m.confirm.IsOpen():
		body = m.confirm.View(m.width)
	case m.state.IsComplete():
		body = m.renderComplete()
	default:
		body = m.renderTimer()
	}

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, body)
}

// renderTooSmall shows a message when the terminal is below the minimum size.
func (m model) renderTooSmall() string {
	return fmt.Sprintf("Terminal too small (%dx%d). Need %dx%d minimum.",
		m.width, m.height, minWidth, minHeight)
}

// renderTimer renders the countdown screen.
func (m model) renderTimer() string {
	lines := []string{
		m.renderPhase(),
		"",
		styles.Clock.Render(spaced(timer.FormatClock(m.state.TimeRemaining))),
		"",
		styles.Round.Render(roundLabel(m.state)),
	}
	if dots := roundDots(m.state); dots != "" {
		lines = append(lines, dots)
	}
	lines = append(lines,
		"",
		m.progress.ViewAs(timer.Progress(m.state)),
		styles.Footer.Render(fmt.Sprintf("%s elapsed · %s left",
			timer.FormatClock(timer.Elapsed(m.state)),
			timer.FormatClock(timer.Remaining(m.state)))),
	)

	if status := m.renderStatus(); status != "" {
		lines = append(lines, "", status)
	}
	if evts := m.renderEvents(); evts != "" {
		lines = append(lines, "", evts)
	}
	lines = append(lines, "", m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Center, lines...)
}

// renderPhase renders the phase heading, with a spinner while counting down.
func (m model) renderPhase() string {
	label := phaseStyle(m.state.Phase).Render(phaseLabel(m.state))
	if m.state.IsRunning {
		return m.spinner.View() + " " + label
	}
	if !m.inProgress() {
		return label + styles.Footer.Render("  (not started)")
	}
	return label
}

// renderStatus renders sound and sharing state.
func (m model) renderStatus() string {
	var parts []string
	if m.muter != nil {
		if m.muted() {
			parts = append(parts, styles.Muted.Render("Sound Off"))
		} else {
			parts = append(parts, styles.Footer.Render("Sound On"))
		}
	}

	if m.session != nil {
		devices := max(m.devices, m.session.ConnectedDevices)
		role := "following"
		if m.session.IsHost {
			role = "hosting"
		}
		parts = append(parts, styles.Share.Render(
			fmt.Sprintf("%s %s · %d %s", role, m.session.ShareURL, devices, plural(devices, "device"))))
	}

	return strings.Join(parts, styles.Divider.Render("  │  "))
}

// renderEvents renders the most recent events, oldest first.
func (m model) renderEvents() string {
	if len(m.eventLines) == 0 {
		return ""
	}

	maxWidth := safeWidth(m.width - 4)
	rendered := make([]string, 0, len(m.eventLines))
	for _, el := range m.eventLines {
		rendered = append(rendered, renderEventLine(el, maxWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

// renderEventLine formats a single event line with timestamp, truncated to
// maxWidth.
func renderEventLine(el eventLine, maxWidth int) string {
	text := eventTime(el.Time) + " " + el.Text
	if lipgloss.Width(text) > maxWidth {
		runes := []rune(text)
		if len(runes) > maxWidth {
			text = string(runes[:max(0, maxWidth-3)]) + "..."
		}
	}
	return el.Style.Render(text)
}

// renderFooter renders the key hints for the current state.
func (m model) renderFooter() string {
	var hints []string
	switch {
	case m.state.IsPaused():
		hints = []string{"[-] round", "[space] resume", "[+] round", "[s] skip", "[x] stop"}
	case m.state.IsRunning:
		hints = []string{"[s] skip", "[space] pause", "[x] stop"}
	default:
		hints = []string{"[space] start", "[s] skip", "[q] quit"}
	}
	if m.muter != nil {
		hints = append(hints, "[m] mute")
	}
	return styles.Footer.Render(strings.Join(hints, "  "))
}

// renderComplete renders the session summary.
func (m model) renderComplete() string {
	cfg := m.state.Config
	rounds := m.state.TotalRounds
	work := cfg.WorkDuration * rounds
	rest := cfg.RestDuration * max(0, rounds-1)

	row := func(label, value string) string {
		return fmt.Sprintf("%-10s %s", label, value)
	}

	summary := strings.Join([]string{
		row("Rounds", fmt.Sprintf("%d", rounds)),
		row("Work Time", timer.FormatDuration(work)),
		row("Rest Time", timer.FormatDuration(rest)),
		row("Total", timer.FormatDuration(work+rest)),
	}, "\n")

	return lipgloss.JoinVertical(lipgloss.Center,
		styles.Complete.Render("SESSION COMPLETE!"),
		"",
		styles.Container.Render(summary),
		"",
		styles.Footer.Render("[r] start again  [q] quit"),
	)
}

// spaced separates the characters of s so the clock reads larger.
func spaced(s string) string {
	return strings.Join(strings.Split(s, ""), " ")
}

// plural returns word with an "s" unless n is one.
func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// safeWidth ensures width is at least 1 to prevent rendering issues.
func safeWidth(w int) int {
	if w < 1 {
		return 1
	}
	return w
}
