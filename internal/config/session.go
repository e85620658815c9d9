package config

import (
	"fmt"

	"github.com/npratt/hiit/internal/preset"
	"github.com/npratt/hiit/internal/timer"
)

// Presets returns the built-in presets followed by the configured ones.
func (c *Config) Presets() []preset.Preset {
	return preset.Merge(preset.Builtin(), c.UserPresets)
}

// Session returns the timer configuration to run, chosen by priority:
// Describe (parsed) > Preset (looked up) > Work/Rest/Rounds.
// Returns an error if the description does not parse or the preset is
// unknown. The result is not validated.
func (c *Config) Session() (timer.Config, error) {
	t := c.Timer

	if t.Describe != "" {
		parsed, err := preset.Parse(t.Describe)
		if err != nil {
			return timer.Config{}, err
		}
		return parsed.Config(t.LeadIn), nil
	}

	if t.Preset != "" {
		p, ok := preset.Find(c.Presets(), t.Preset)
		if !ok {
			return timer.Config{}, fmt.Errorf("unknown preset %q", t.Preset)
		}
		return p.Config(t.LeadIn), nil
	}

	return timer.Config{
		WorkDuration: t.Work,
		RestDuration: t.Rest,
		TotalRounds:  t.Rounds,
		LeadIn:       t.LeadIn,
	}, nil
}
