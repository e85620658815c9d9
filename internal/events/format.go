package events

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/npratt/hiit/internal/timer"
)

const (
	maxMessageLength  = 120
	truncateIndicator = "..."
)

// Format converts an event to a human-readable string for display.
// Returns empty string for nil or unknown event types.
func Format(event Event) string {
	if event == nil {
		return ""
	}

	switch e := event.(type) {
	case *SessionStartEvent:
		return formatSessionStart(e)
	case *SessionCompleteEvent:
		return fmt.Sprintf("session complete: %d rounds, %s total", e.Rounds, timer.FormatDuration(e.TotalTime))
	case *SessionStopEvent:
		return formatSessionStop(e)
	case *SessionResetEvent:
		return "session reset"
	case *PhaseChangedEvent:
		return formatPhaseChanged(e)
	case *PhaseWarningEvent:
		return fmt.Sprintf("%s ends in %d", strings.ToLower(e.Phase.Label()), e.TimeRemaining)
	case *TimerPausedEvent:
		return fmt.Sprintf("paused during %s, round %d, %s left", e.Phase, e.Round, timer.FormatClock(e.TimeRemaining))
	case *TimerResumedEvent:
		return fmt.Sprintf("resumed %s, round %d, %s left", e.Phase, e.Round, timer.FormatClock(e.TimeRemaining))
	case *PhaseSkippedEvent:
		return formatPhaseSkipped(e)
	case *RoundsChangedEvent:
		return formatRoundsChanged(e)
	case *SyncReceivedEvent:
		return formatSyncReceived(e)
	case *DevicesChangedEvent:
		return formatDevices(e)
	case *ErrorEvent:
		return formatError(e)
	default:
		return ""
	}
}

// FormatWithTimestamp formats an event with a timestamp prefix.
func FormatWithTimestamp(event Event) string {
	if event == nil {
		return ""
	}
	ts := event.Timestamp().Format("15:04:05")
	detail := Format(event)
	if detail == "" {
		return fmt.Sprintf("[%s] %s", ts, event.Type())
	}
	return fmt.Sprintf("[%s] %s", ts, detail)
}

func formatSessionStart(e *SessionStartEvent) string {
	s := fmt.Sprintf("session started: %s work / %s rest x %d",
		timer.FormatDuration(e.WorkDuration), timer.FormatDuration(e.RestDuration), e.TotalRounds)
	if e.ShareURL != "" {
		s += " (" + e.ShareURL + ")"
	}
	return s
}

func formatSessionStop(e *SessionStopEvent) string {
	s := fmt.Sprintf("session stopped: %d of %d rounds completed", e.CompletedRounds, e.TotalRounds)
	if reason := SafeString(e.Reason); reason != "" {
		s += " (" + Truncate(reason, maxMessageLength) + ")"
	}
	return s
}

func formatPhaseChanged(e *PhaseChangedEvent) string {
	switch e.To {
	case timer.PhaseComplete:
		return "complete"
	case timer.PhaseReady:
		return "get ready"
	}
	return fmt.Sprintf("%s: round %d of %d, %s", strings.ToLower(e.To.Label()), e.Round, e.TotalRounds, timer.FormatClock(e.TimeRemaining))
}

func formatPhaseSkipped(e *PhaseSkippedEvent) string {
	s := fmt.Sprintf("skipped %s -> %s (round %d)", e.From, e.To, e.Round)
	if e.Paused {
		s += " while paused"
	}
	return s
}

func formatRoundsChanged(e *RoundsChangedEvent) string {
	verb := "round added"
	if e.Type() == EventRoundRemoved {
		verb = "round removed"
	}
	return fmt.Sprintf("%s: %d rounds", verb, e.TotalRounds)
}

func formatSyncReceived(e *SyncReceivedEvent) string {
	origin := SafeString(e.Origin)
	if len(origin) > 8 {
		origin = origin[:8]
	}
	if origin == "" {
		return fmt.Sprintf("sync: %s round %d", e.Phase, e.Round)
	}
	return fmt.Sprintf("sync from %s: %s round %d", origin, e.Phase, e.Round)
}

func formatDevices(e *DevicesChangedEvent) string {
	if e.Devices == 1 {
		return "1 device connected"
	}
	return fmt.Sprintf("%d devices connected", e.Devices)
}

func formatError(e *ErrorEvent) string {
	msg := Truncate(SafeString(e.Message), maxMessageLength)
	severity := e.Severity
	if severity == "" {
		severity = SeverityError
	}
	if e.Component != "" {
		return fmt.Sprintf("%s: %s: %s", severity, e.Component, msg)
	}
	return fmt.Sprintf("%s: %s", severity, msg)
}

// Truncate shortens text to maxLen, adding indicator if truncated.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= len(truncateIndicator) {
		return truncateIndicator
	}
	return s[:maxLen-len(truncateIndicator)] + truncateIndicator
}

// ansiRegex matches ANSI escape sequences.
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// SafeString strips escape sequences and control characters so that text
// from a remote device or a failing command cannot corrupt the display.
func SafeString(s string) string {
	s = ansiRegex.ReplaceAllString(s, "")
	s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)

	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if r == ' ' || !unicode.IsControl(r) {
			sb.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
