package events

import (
	"encoding/json"
	"log/slog"
)

// eventEnvelope is used for initial JSON parsing to determine event type.
type eventEnvelope struct {
	Type EventType `json:"type"`
}

// ParseEvent parses a JSON line written by LogSink into a typed Event.
// Returns nil with no error for unknown event types (for forward compatibility).
func ParseEvent(line []byte) (Event, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, err
	}

	var ev Event
	switch envelope.Type {
	case EventSessionStart:
		ev = &SessionStartEvent{}
	case EventSessionComplete:
		ev = &SessionCompleteEvent{}
	case EventSessionStop:
		ev = &SessionStopEvent{}
	case EventSessionReset:
		ev = &SessionResetEvent{}
	case EventPhaseChanged:
		ev = &PhaseChangedEvent{}
	case EventPhaseWarning:
		ev = &PhaseWarningEvent{}
	case EventTimerPaused:
		ev = &TimerPausedEvent{}
	case EventTimerResumed:
		ev = &TimerResumedEvent{}
	case EventPhaseSkipped:
		ev = &PhaseSkippedEvent{}
	case EventRoundAdded, EventRoundRemoved:
		ev = &RoundsChangedEvent{}
	case EventSyncReceived:
		ev = &SyncReceivedEvent{}
	case EventDevicesChanged:
		ev = &DevicesChangedEvent{}
	case EventError:
		ev = &ErrorEvent{}
	default:
		slog.Debug("unknown event type", "type", envelope.Type)
		return nil, nil
	}

	if err := json.Unmarshal(line, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// SessionID extracts the session id from an event, if present.
func SessionID(ev Event) string {
	switch e := ev.(type) {
	case *SessionStartEvent:
		return e.SessionID
	case *SessionCompleteEvent:
		return e.SessionID
	case *SessionStopEvent:
		return e.SessionID
	case *SessionResetEvent:
		return e.SessionID
	case *SyncReceivedEvent:
		return e.SessionID
	case *DevicesChangedEvent:
		return e.SessionID
	default:
		return ""
	}
}
