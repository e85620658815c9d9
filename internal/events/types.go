// Package events defines the event taxonomy for timer sessions, the
// channel-based Router that fans events out, and the sinks that consume them.
package events

import (
	"time"

	"github.com/npratt/hiit/internal/timer"
)

// EventType identifies the category and nature of an event.
type EventType string

// Event types.
const (
	// Session lifecycle
	EventSessionStart    EventType = "session.start"
	EventSessionComplete EventType = "session.complete"
	EventSessionStop     EventType = "session.stop"
	EventSessionReset    EventType = "session.reset"

	// Countdown
	EventPhaseChanged EventType = "phase.changed"
	EventPhaseWarning EventType = "phase.warning"

	// Controls
	EventTimerPaused  EventType = "timer.paused"
	EventTimerResumed EventType = "timer.resumed"
	EventPhaseSkipped EventType = "phase.skipped"
	EventRoundAdded   EventType = "round.added"
	EventRoundRemoved EventType = "round.removed"

	// Sharing
	EventSyncReceived   EventType = "sync.received"
	EventDevicesChanged EventType = "sync.devices"

	// Errors
	EventError EventType = "error"
)

// Source constants identify the origin of events.
const (
	SourceTimer    = "timer"
	SourceSync     = "sync"
	SourceInternal = "hiit"
)

// Event is the base interface for all events in the system.
type Event interface {
	Type() EventType
	Timestamp() time.Time
	Source() string
}

// BaseEvent provides the common fields for all events.
type BaseEvent struct {
	EventType EventType `json:"type"`
	Time      time.Time `json:"timestamp"`
	Src       string    `json:"source"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// Source returns the origin of the event.
func (e BaseEvent) Source() string {
	return e.Src
}

// SessionStartEvent is emitted when a session's countdown first starts.
type SessionStartEvent struct {
	BaseEvent
	SessionID    string `json:"session_id,omitempty"`
	WorkDuration int    `json:"work_duration"`
	RestDuration int    `json:"rest_duration"`
	TotalRounds  int    `json:"total_rounds"`
	LeadIn       bool   `json:"lead_in"`
	ShareURL     string `json:"share_url,omitempty"`
}

// SessionCompleteEvent is emitted when the final work interval ends.
type SessionCompleteEvent struct {
	BaseEvent
	SessionID string `json:"session_id,omitempty"`
	Rounds    int    `json:"rounds"`
	WorkTime  int    `json:"work_time"` // seconds
	RestTime  int    `json:"rest_time"` // seconds
	TotalTime int    `json:"total_time"`
}

// SessionStopEvent is emitted when a session is ended early.
type SessionStopEvent struct {
	BaseEvent
	SessionID       string `json:"session_id,omitempty"`
	CompletedRounds int    `json:"completed_rounds"`
	TotalRounds     int    `json:"total_rounds"`
	Reason          string `json:"reason,omitempty"`
}

// SessionResetEvent is emitted when a session is returned to its start.
type SessionResetEvent struct {
	BaseEvent
	SessionID string `json:"session_id,omitempty"`
}

// PhaseChangedEvent is emitted when the countdown moves to a new phase.
type PhaseChangedEvent struct {
	BaseEvent
	From          timer.Phase `json:"from"`
	To            timer.Phase `json:"to"`
	Round         int         `json:"round"`
	TotalRounds   int         `json:"total_rounds"`
	TimeRemaining int         `json:"time_remaining"`
}

// PhaseWarningEvent is emitted once per second during the final seconds of
// a phase.
type PhaseWarningEvent struct {
	BaseEvent
	Phase         timer.Phase `json:"phase"`
	Round         int         `json:"round"`
	TimeRemaining int         `json:"time_remaining"`
}

// TimerPausedEvent is emitted when the countdown is paused.
type TimerPausedEvent struct {
	BaseEvent
	Phase         timer.Phase `json:"phase"`
	Round         int         `json:"round"`
	TimeRemaining int         `json:"time_remaining"`
}

// TimerResumedEvent is emitted when a paused countdown continues.
type TimerResumedEvent struct {
	BaseEvent
	Phase         timer.Phase `json:"phase"`
	Round         int         `json:"round"`
	TimeRemaining int         `json:"time_remaining"`
}

// PhaseSkippedEvent is emitted when a phase is ended by hand.
type PhaseSkippedEvent struct {
	BaseEvent
	From   timer.Phase `json:"from"`
	To     timer.Phase `json:"to"`
	Round  int         `json:"round"`
	Paused bool        `json:"paused,omitempty"`
}

// RoundsChangedEvent is emitted for round.added and round.removed.
type RoundsChangedEvent struct {
	BaseEvent
	TotalRounds  int `json:"total_rounds"`
	CurrentRound int `json:"current_round"`
}

// SyncReceivedEvent is emitted when a snapshot from another device is
// applied.
type SyncReceivedEvent struct {
	BaseEvent
	SessionID string      `json:"session_id"`
	Origin    string      `json:"origin,omitempty"`
	Phase     timer.Phase `json:"phase"`
	Round     int         `json:"round"`
}

// DevicesChangedEvent is emitted when a device joins or leaves a session.
type DevicesChangedEvent struct {
	BaseEvent
	SessionID string `json:"session_id"`
	Devices   int    `json:"devices"`
}

// Severity constants for error events.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// ErrorEvent is emitted when a collaborator fails. The session carries on.
type ErrorEvent struct {
	BaseEvent
	Message   string            `json:"message"`
	Severity  string            `json:"severity"`
	Component string            `json:"component,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}

// NewEvent creates a BaseEvent with the given type and source.
func NewEvent(eventType EventType, source string) BaseEvent {
	return BaseEvent{
		EventType: eventType,
		Time:      time.Now(),
		Src:       source,
	}
}

// NewTimerEvent creates a BaseEvent with the timer as the source.
func NewTimerEvent(eventType EventType) BaseEvent {
	return NewEvent(eventType, SourceTimer)
}

// NewSyncEvent creates a BaseEvent with sharing as the source.
func NewSyncEvent(eventType EventType) BaseEvent {
	return NewEvent(eventType, SourceSync)
}

// NewInternalEvent creates a BaseEvent with the program as the source.
func NewInternalEvent(eventType EventType) BaseEvent {
	return NewEvent(eventType, SourceInternal)
}
