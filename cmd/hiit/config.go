package main

// Flag names for Viper binding
const (
	// Global flags
	FlagVerbose    = "verbose"
	FlagConfig     = "config"
	FlagLogFile    = "log-file"
	FlagRuntimeDir = "runtime-dir"

	// Session flags (start, validate)
	FlagWork     = "work"
	FlagRest     = "rest"
	FlagRounds   = "rounds"
	FlagLeadIn   = "lead-in"
	FlagPreset   = "preset"
	FlagDescribe = "describe"

	// Start command flags
	FlagTUI      = "tui"
	FlagDetach   = "detach"
	FlagMute     = "mute"
	FlagNoNotify = "no-notify"
	FlagShare    = "share"
	FlagBaseURL  = "base-url"

	// Events and sessions command flags
	FlagFollow = "follow"
	FlagCount  = "count"

	// Output format flags
	FlagJSON = "json"
)

// Environment variables passed to a detached session host.
const (
	envSessionID = "HIIT_SESSION_ID"
	envHostID    = "HIIT_HOST_ID"
)
