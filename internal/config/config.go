// Package config provides configuration types and defaults for hiit.
package config

import (
	"time"

	"github.com/npratt/hiit/internal/preset"
)

// Config holds all configuration for hiit.
type Config struct {
	Timer       TimerConfig       `yaml:"timer" mapstructure:"timer"`
	Sound       SoundConfig       `yaml:"sound" mapstructure:"sound"`
	Notify      NotifyConfig      `yaml:"notify" mapstructure:"notify"`
	Share       ShareConfig       `yaml:"share" mapstructure:"share"`
	Paths       PathsConfig       `yaml:"paths" mapstructure:"paths"`
	LogRotation LogRotationConfig `yaml:"log_rotation" mapstructure:"log_rotation"`
	UserPresets []preset.Preset   `yaml:"presets" mapstructure:"presets"` // Appended to the built-in presets
}

// TimerConfig holds the session shape. Preset and Describe take priority
// over the explicit durations, see Config.Session.
type TimerConfig struct {
	Work     int           `yaml:"work" mapstructure:"work"`         // Work interval in seconds
	Rest     int           `yaml:"rest" mapstructure:"rest"`         // Rest interval in seconds
	Rounds   int           `yaml:"rounds" mapstructure:"rounds"`     // Number of work intervals
	LeadIn   bool          `yaml:"lead_in" mapstructure:"lead_in"`   // 10 second get-ready countdown before round 1
	Preset   string        `yaml:"preset" mapstructure:"preset"`     // Preset id, e.g. "tabata"
	Describe string        `yaml:"describe" mapstructure:"describe"` // Free-form description, e.g. "20s/10s for 8 rounds"
	Tick     time.Duration `yaml:"tick" mapstructure:"tick"`         // Countdown resolution
}

// SoundConfig holds audible cue settings.
type SoundConfig struct {
	Muted    bool `yaml:"muted" mapstructure:"muted"`
	Warnings bool `yaml:"warnings" mapstructure:"warnings"` // Beep each second of the final ten
}

// NotifyConfig holds desktop notification settings.
type NotifyConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	Command string        `yaml:"command" mapstructure:"command"` // Override notify-send/osascript; called with title and body
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ShareConfig holds session sharing settings.
type ShareConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PathsConfig holds file paths for logs and the session registry.
type PathsConfig struct {
	Log        string `yaml:"log" mapstructure:"log"`                 // JSON-lines event log
	DebugLog   string `yaml:"debug_log" mapstructure:"debug_log"`     // slog output in TUI mode
	RuntimeDir string `yaml:"runtime_dir" mapstructure:"runtime_dir"` // Sockets and session registry; empty uses $XDG_RUNTIME_DIR/hiit
}

// LogRotationConfig holds settings for log file rotation.
// Used for the event log and the TUI debug log (lumberjack-based rotation).
type LogRotationConfig struct {
	MaxSizeMB  int  `yaml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int  `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int  `yaml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool `yaml:"compress" mapstructure:"compress"`
}

// Default returns a Config with sensible defaults: the HIIT preset shape
// with a lead-in, sound and notifications on, sharing off.
func Default() *Config {
	return &Config{
		Timer: TimerConfig{
			Work:   45,
			Rest:   15,
			Rounds: 10,
			LeadIn: true,
			Tick:   time.Second,
		},
		Sound: SoundConfig{
			Muted:    false,
			Warnings: true,
		},
		Notify: NotifyConfig{
			Enabled: true,
			Timeout: 5 * time.Second,
		},
		Share: ShareConfig{
			Enabled: false,
			BaseURL: "https://hiit.app",
		},
		Paths: PathsConfig{
			Log:      ".hiit/events.log",
			DebugLog: ".hiit/hiit-debug.log",
		},
		LogRotation: LogRotationConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
			Compress:   true,
		},
	}
}
