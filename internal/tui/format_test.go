package tui

import (
	"strings"
	"testing"

	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/timer"
)

func TestRoundLabel(t *testing.T) {
	s := timer.NewState(testConfig)
	if got := roundLabel(s); got != "Round 1 of 4" {
		t.Errorf("expected %q, got %q", "Round 1 of 4", got)
	}
}

func TestRoundDots(t *testing.T) {
	start := timer.Start(timer.NewState(testConfig))

	tests := []struct {
		name  string
		state timer.State
		want  string
	}{
		{"first work", start, "◉ ○ ○ ○"},
		{"first rest", timer.Skip(start), "● ○ ○ ○"},
		{"second work", timer.Skip(timer.Skip(start)), "● ◉ ○ ○"},
		{"too many rounds", timer.NewState(timer.Config{WorkDuration: 5, RestDuration: 5, TotalRounds: maxDots + 1}), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := roundDots(tt.state); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestRoundDots_Complete(t *testing.T) {
	s := timer.NewState(testConfig)
	s.Phase = timer.PhaseComplete
	s.CurrentRound = 4

	got := roundDots(s)
	if strings.Contains(got, dotCurrent) || strings.Contains(got, dotUpcoming) {
		t.Errorf("expected all rounds done, got %q", got)
	}
	if strings.Count(got, dotDone) != 4 {
		t.Errorf("expected 4 done dots, got %q", got)
	}
}

func TestPhaseLabel(t *testing.T) {
	tests := []struct {
		name  string
		state timer.State
		want  string
	}{
		{"work", timer.NewState(testConfig), "WORK"},
		{"paused rest", timer.Pause(timer.Skip(timer.Start(timer.NewState(testConfig)))), "PAUSED (REST)"},
		{"lead-in", timer.NewState(timer.Config{WorkDuration: 5, RestDuration: 5, TotalRounds: 1, LeadIn: true}), "GET READY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := phaseLabel(tt.state); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestStyleForEvent(t *testing.T) {
	errEvent := &events.ErrorEvent{BaseEvent: events.NewInternalEvent(events.EventError)}
	if got := styleForEvent(errEvent); got.GetForeground() != styles.Error.GetForeground() {
		t.Error("expected error style for error events")
	}

	devices := &events.DevicesChangedEvent{BaseEvent: events.NewSyncEvent(events.EventDevicesChanged)}
	if got := styleForEvent(devices); got.GetForeground() != styles.Sync.GetForeground() {
		t.Error("expected sync style for device events")
	}

	rest := &events.PhaseChangedEvent{BaseEvent: events.NewTimerEvent(events.EventPhaseChanged), To: timer.PhaseRest}
	if got := styleForEvent(rest); got.GetForeground() != styles.Rest.GetForeground() {
		t.Error("expected rest style for a change to rest")
	}
}

func TestShowInLog(t *testing.T) {
	if showInLog(nil) {
		t.Error("expected nil event hidden")
	}
	if showInLog(&events.PhaseWarningEvent{BaseEvent: events.NewTimerEvent(events.EventPhaseWarning)}) {
		t.Error("expected warnings hidden")
	}
	if !showInLog(&events.SessionResetEvent{BaseEvent: events.NewTimerEvent(events.EventSessionReset)}) {
		t.Error("expected reset shown")
	}
}
