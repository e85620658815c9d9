// Package cue decides which audible cue belongs to a timer transition and
// plays cues on an explicitly owned output device.
package cue

import (
	"time"

	"github.com/npratt/hiit/internal/timer"
)

// Cue names a sound.
type Cue string

// Cues.
const (
	WorkComplete    Cue = "work-complete"
	RestComplete    Cue = "rest-complete"
	Warning         Cue = "warning"
	SessionComplete Cue = "session-complete"
)

// WarningWindow is the number of final seconds of a phase that get a
// warning cue.
const WarningWindow = 10

// Player plays cues. Implementations must not block the caller for the
// length of the cue.
type Player interface {
	Play(c Cue) error
}

// Discard is a Player that plays nothing.
var Discard Player = discard{}

type discard struct{}

func (discard) Play(Cue) error { return nil }

// TransitionCue returns the cue for a phase change. Moving into or out of
// Paused is silent, as is the lead-in ending.
func TransitionCue(from, to timer.Phase) (Cue, bool) {
	if from == timer.PhasePaused || to == timer.PhasePaused {
		return "", false
	}
	switch {
	case from == timer.PhaseWork && to == timer.PhaseRest:
		return WorkComplete, true
	case from == timer.PhaseRest && to == timer.PhaseWork:
		return RestComplete, true
	case to == timer.PhaseComplete:
		return SessionComplete, true
	}
	return "", false
}

// ShouldWarn reports whether remaining seconds fall in the warning window.
func ShouldWarn(remaining int) bool {
	return remaining >= 1 && remaining <= WarningWindow
}

// Tone is one note of a cue, starting Offset after the cue begins.
type Tone struct {
	Frequency float64 // Hz
	Duration  time.Duration
	Offset    time.Duration
}

// Pattern returns the tones that make up c: five falling beeps when work
// ends, five rising beeps when rest ends, a single short beep as warning and
// a C-E-G-C fanfare at the end of the session.
func Pattern(c Cue) []Tone {
	switch c {
	case WorkComplete:
		tones := make([]Tone, 5)
		for i := range tones {
			tones[i] = Tone{
				Frequency: 880 * (1 - float64(i)*0.05),
				Duration:  120 * time.Millisecond,
				Offset:    time.Duration(i) * 150 * time.Millisecond,
			}
		}
		return tones
	case RestComplete:
		tones := make([]Tone, 5)
		for i := range tones {
			tones[i] = Tone{
				Frequency: 523 * (1 + float64(i)*0.08),
				Duration:  120 * time.Millisecond,
				Offset:    time.Duration(i) * 150 * time.Millisecond,
			}
		}
		return tones
	case Warning:
		return []Tone{{Frequency: 440, Duration: 100 * time.Millisecond}}
	case SessionComplete:
		return []Tone{
			{Frequency: 523, Duration: 150 * time.Millisecond},
			{Frequency: 659, Duration: 150 * time.Millisecond, Offset: 180 * time.Millisecond},
			{Frequency: 784, Duration: 150 * time.Millisecond, Offset: 360 * time.Millisecond},
			{Frequency: 1047, Duration: 300 * time.Millisecond, Offset: 540 * time.Millisecond},
		}
	}
	return nil
}
