package timer

import (
	"fmt"
	"strings"
)

// FormatClock renders seconds as MM:SS, or H:MM:SS from one hour up.
func FormatClock(seconds int) string {
	seconds = max(0, seconds)
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if hours >= 1 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d", minutes, secs)
}

// FormatDuration renders seconds for people, e.g. "1h 30m", "2m 5s", "45s".
// Seconds are dropped once the duration reaches an hour.
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "0 seconds"
	}

	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if secs > 0 && hours == 0 {
		parts = append(parts, fmt.Sprintf("%ds", secs))
	}
	if len(parts) == 0 {
		return "0s"
	}
	return strings.Join(parts, " ")
}

// FormatPresetDuration renders a compact interval length: "0:45", "30",
// "1:30".
func FormatPresetDuration(seconds int) string {
	minutes := seconds / 60
	secs := seconds % 60

	switch {
	case minutes == 0:
		return fmt.Sprintf("0:%02d", secs)
	case secs == 0:
		return fmt.Sprintf("%d", minutes)
	default:
		return fmt.Sprintf("%d:%02d", minutes, secs)
	}
}
