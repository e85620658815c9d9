// Package preset holds named timer configurations and turns free-form
// descriptions such as "30 min on, 30 min off for 5 hours" into one.
package preset

import (
	"fmt"
	"strings"

	"github.com/npratt/hiit/internal/timer"
)

// Setup limits for a configuration entered by hand.
const (
	MaxRounds   = 99
	MaxDuration = 120 * 60 // seconds
)

// Preset is a named configuration.
type Preset struct {
	ID           string `yaml:"id" mapstructure:"id" json:"id"`
	Name         string `yaml:"name" mapstructure:"name" json:"name"`
	WorkDuration int    `yaml:"work" mapstructure:"work" json:"work_duration"` // seconds
	RestDuration int    `yaml:"rest" mapstructure:"rest" json:"rest_duration"` // seconds
	Rounds       int    `yaml:"rounds" mapstructure:"rounds" json:"rounds"`
}

// Builtin returns the presets that ship with the timer.
func Builtin() []Preset {
	return []Preset{
		{ID: "pomodoro", Name: "Pomodoro", WorkDuration: 25 * 60, RestDuration: 5 * 60, Rounds: 4},
		{ID: "chores", Name: "Chores", WorkDuration: 30 * 60, RestDuration: 30 * 60, Rounds: 5},
		{ID: "hiit", Name: "HIIT", WorkDuration: 45, RestDuration: 15, Rounds: 10},
		{ID: "tabata", Name: "Tabata", WorkDuration: 20, RestDuration: 10, Rounds: 8},
	}
}

// Merge appends user presets to the built-ins. A user preset with the id of
// a built-in replaces it in place.
func Merge(builtin, user []Preset) []Preset {
	out := make([]Preset, len(builtin))
	copy(out, builtin)
	for _, p := range user {
		if p.ID == "" {
			continue
		}
		replaced := false
		for i := range out {
			if strings.EqualFold(out[i].ID, p.ID) {
				out[i] = p
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, p)
		}
	}
	return out
}

// Find looks a preset up by id, ignoring case.
func Find(presets []Preset, id string) (Preset, bool) {
	for _, p := range presets {
		if strings.EqualFold(p.ID, id) {
			return p, true
		}
	}
	return Preset{}, false
}

// Config returns the timer configuration for the preset.
func (p Preset) Config(leadIn bool) timer.Config {
	return timer.Config{
		WorkDuration: p.WorkDuration,
		RestDuration: p.RestDuration,
		TotalRounds:  p.Rounds,
		LeadIn:       leadIn,
	}
}

// Summary renders work/rest as shown on a preset card, e.g. "0:45/0:15".
func (p Preset) Summary() string {
	return fmt.Sprintf("%s/%s", timer.FormatPresetDuration(p.WorkDuration), timer.FormatPresetDuration(p.RestDuration))
}

// Clamp limits a hand-entered configuration to the setup bounds. It reports
// whether anything changed. Values below the minimums are left for
// timer.Validate to reject.
func Clamp(cfg timer.Config) (timer.Config, bool) {
	orig := cfg
	cfg.WorkDuration = min(cfg.WorkDuration, MaxDuration)
	cfg.RestDuration = min(cfg.RestDuration, MaxDuration)
	cfg.TotalRounds = min(cfg.TotalRounds, MaxRounds)
	return cfg, cfg != orig
}
