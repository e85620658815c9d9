package timer

import (
	"errors"
	"fmt"
)

const (
	// MinDuration is the shortest allowed work or rest interval in seconds.
	MinDuration = 5
	// MinRounds is the smallest allowed round count.
	MinRounds = 1
	// LongSessionThreshold is the session length that triggers a warning.
	LongSessionThreshold = 12 * 60 * 60
)

// Validation messages.
const (
	ErrMsgWorkTooShort = "Work duration must be at least 5 seconds"
	ErrMsgRestTooShort = "Rest duration must be at least 5 seconds"
	ErrMsgTooFewRounds = "Must have at least 1 round"
	WarnMsgLongSession = "That's a long session! Are you sure?"
)

// ErrInvalidConfig is wrapped by Validation.Err for rejected configurations.
var ErrInvalidConfig = errors.New("invalid timer config")

// Validation is the result of Validate. Warning never blocks a session.
type Validation struct {
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
}

// Err returns nil for a valid result and an error wrapping ErrInvalidConfig
// otherwise.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, v.Error)
}

// Validate checks minimum durations and rounds, and warns about sessions of
// twelve hours or more.
func Validate(workDuration, restDuration, rounds int) Validation {
	if workDuration < MinDuration {
		return Validation{Error: ErrMsgWorkTooShort}
	}
	if restDuration < MinDuration {
		return Validation{Error: ErrMsgRestTooShort}
	}
	if rounds < MinRounds {
		return Validation{Error: ErrMsgTooFewRounds}
	}

	if TotalTime(workDuration, restDuration, rounds) >= LongSessionThreshold {
		return Validation{Valid: true, Warning: WarnMsgLongSession}
	}
	return Validation{Valid: true}
}

// ValidateConfig is Validate applied to a Config.
func ValidateConfig(cfg Config) Validation {
	return Validate(cfg.WorkDuration, cfg.RestDuration, cfg.TotalRounds)
}
