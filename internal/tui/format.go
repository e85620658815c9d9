package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/timer"
)

// Round dot glyphs.
const (
	dotDone     = "●"
	dotCurrent  = "◉"
	dotUpcoming = "○"
)

// roundLabel returns "Round N of M".
func roundLabel(s timer.State) string {
	return fmt.Sprintf("Round %d of %d", s.CurrentRound, s.TotalRounds)
}

// roundDots renders one dot per round: completed, current, then upcoming.
// Returns empty string when there are more rounds than fit.
func roundDots(s timer.State) string {
	if s.TotalRounds <= 0 || s.TotalRounds > maxDots {
		return ""
	}

	done := s.CompletedRounds()
	parts := make([]string, 0, s.TotalRounds)
	for i := 1; i <= s.TotalRounds; i++ {
		switch {
		case i <= done:
			parts = append(parts, styles.DotDone.Render(dotDone))
		case i == s.CurrentRound && !s.IsComplete():
			parts = append(parts, styles.DotCurrent.Render(dotCurrent))
		default:
			parts = append(parts, styles.DotUpcoming.Render(dotUpcoming))
		}
	}
	return strings.Join(parts, " ")
}

// phaseLabel returns the heading for the state, naming the interrupted phase
// while paused.
func phaseLabel(s timer.State) string {
	if s.IsPaused() && s.PausedFrom != "" {
		return fmt.Sprintf("%s (%s)", timer.PhasePaused.Label(), s.PausedFrom.Label())
	}
	return s.Phase.Label()
}

// styleForEvent returns the lipgloss style for an event line.
func styleForEvent(event events.Event) lipgloss.Style {
	switch e := event.(type) {
	case *events.ErrorEvent:
		return styles.Error
	case *events.SyncReceivedEvent, *events.DevicesChangedEvent:
		return styles.Sync
	case *events.PhaseChangedEvent:
		return phaseStyle(e.To)
	default:
		return styles.Event
	}
}

// showInLog reports whether an event belongs in the recent events list.
// Per-second warnings would crowd out everything else.
func showInLog(event events.Event) bool {
	if event == nil {
		return false
	}
	return event.Type() != events.EventPhaseWarning
}
