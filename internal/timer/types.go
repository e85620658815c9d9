// Package timer implements the interval timer state machine: the phase
// transition table, the tick reducer, the Engine that owns a session's state
// and its tick source, and the pure progress and validation calculations.
package timer

// Phase is the current activity of a session.
type Phase string

// Session phases.
const (
	PhaseReady    Phase = "ready"
	PhaseWork     Phase = "work"
	PhaseRest     Phase = "rest"
	PhasePaused   Phase = "paused"
	PhaseComplete Phase = "complete"
)

// LeadInSeconds is the length of the Ready countdown before round 1.
const LeadInSeconds = 10

// String returns the phase name.
func (p Phase) String() string {
	return string(p)
}

// Label returns the upper-case display label for the phase.
func (p Phase) Label() string {
	switch p {
	case PhaseReady:
		return "GET READY"
	case PhaseWork:
		return "WORK"
	case PhaseRest:
		return "REST"
	case PhasePaused:
		return "PAUSED"
	case PhaseComplete:
		return "COMPLETE"
	default:
		return ""
	}
}

// Config seeds a session. It is not modified once the session starts.
type Config struct {
	WorkDuration int  `json:"work_duration"` // seconds
	RestDuration int  `json:"rest_duration"` // seconds
	TotalRounds  int  `json:"total_rounds"`
	LeadIn       bool `json:"lead_in"` // open the session with the Ready countdown
}

// durationFor returns the countdown length for a phase.
func (c Config) durationFor(p Phase) int {
	switch p {
	case PhaseReady:
		return LeadInSeconds
	case PhaseWork:
		return c.WorkDuration
	case PhaseRest:
		return c.RestDuration
	default:
		return 0
	}
}

// TotalTime returns the planned session length for the config in seconds.
func (c Config) TotalTime() int {
	return TotalTime(c.WorkDuration, c.RestDuration, c.TotalRounds)
}

// State is a snapshot of a session. It is a plain value: every operation
// returns a new State and the Engine publishes copies.
type State struct {
	Phase         Phase  `json:"phase"`
	CurrentRound  int    `json:"current_round"`
	TimeRemaining int    `json:"time_remaining"`
	TotalRounds   int    `json:"total_rounds"`
	IsRunning     bool   `json:"is_running"`
	Config        Config `json:"config"`

	// PausedFrom is the phase interrupted by Pause. Empty unless Phase is
	// PhasePaused.
	PausedFrom Phase `json:"paused_from,omitempty"`
}

// NewState returns the initial state for cfg.
func NewState(cfg Config) State {
	phase := PhaseWork
	if cfg.LeadIn {
		phase = PhaseReady
	}
	return State{
		Phase:         phase,
		CurrentRound:  1,
		TimeRemaining: cfg.durationFor(phase),
		TotalRounds:   cfg.TotalRounds,
		IsRunning:     false,
		Config:        cfg,
	}
}

// ActivePhase returns the phase the session is in, looking through a pause.
func (s State) ActivePhase() Phase {
	if s.Phase == PhasePaused {
		return s.PausedFrom
	}
	return s.Phase
}

// IsPaused reports whether the session is paused.
func (s State) IsPaused() bool {
	return s.Phase == PhasePaused
}

// IsComplete reports whether the session has finished.
func (s State) IsComplete() bool {
	return s.Phase == PhaseComplete
}

// CompletedRounds returns the number of rounds whose work interval has
// finished.
func (s State) CompletedRounds() int {
	switch {
	case s.Phase == PhaseComplete:
		return s.CurrentRound
	case s.ActivePhase() == PhaseRest:
		return s.CurrentRound
	default:
		return s.CurrentRound - 1
	}
}

// normalize coerces an externally supplied state onto the invariants.
func (s State) normalize() State {
	if s.TotalRounds < 1 {
		s.TotalRounds = 1
	}
	if s.CurrentRound < 1 {
		s.CurrentRound = 1
	}
	if s.CurrentRound > s.TotalRounds {
		s.TotalRounds = s.CurrentRound
	}
	if s.TimeRemaining < 0 {
		s.TimeRemaining = 0
	}
	switch s.Phase {
	case PhaseComplete:
		s.IsRunning = false
		s.TimeRemaining = 0
		s.PausedFrom = ""
	case PhasePaused:
		s.IsRunning = false
		if s.PausedFrom == "" || s.PausedFrom == PhasePaused || s.PausedFrom == PhaseComplete {
			s.PausedFrom = PhaseWork
		}
	case PhaseReady, PhaseWork, PhaseRest:
		s.PausedFrom = ""
	default:
		s.Phase = PhaseWork
		s.PausedFrom = ""
	}
	return s
}
