package tui

import (
	"sync"
	"testing"

	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
)

var testConfig = timer.Config{WorkDuration: 30, RestDuration: 10, TotalRounds: 4}

// fakeControls records the controls invoked by the UI.
type fakeControls struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeControls) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeControls) Start()       { f.record("start") }
func (f *fakeControls) Pause()       { f.record("pause") }
func (f *fakeControls) Resume()      { f.record("resume") }
func (f *fakeControls) Skip()        { f.record("skip") }
func (f *fakeControls) Stop()        { f.record("stop") }
func (f *fakeControls) Reset()       { f.record("reset") }
func (f *fakeControls) AddRound()    { f.record("add_round") }
func (f *fakeControls) RemoveRound() { f.record("remove_round") }

func (f *fakeControls) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// fakeMuter is an in-memory Muter.
type fakeMuter struct {
	muted bool
}

func (f *fakeMuter) SetMuted(m bool) { f.muted = m }
func (f *fakeMuter) Muted() bool     { return f.muted }

func TestNew_AppliesOptions(t *testing.T) {
	updates := make(chan timer.Update)
	eventChan := make(chan events.Event)
	controls := &fakeControls{}
	muter := &fakeMuter{}
	quitCalled := false
	session := share.Session{ID: "abc123", ShareURL: "https://hiit.app/s/abc123", IsHost: true}

	tui := New(timer.NewState(testConfig), updates, controls,
		WithEvents(eventChan),
		WithMuter(muter),
		WithSession(session),
		WithOnQuit(func() { quitCalled = true }),
		WithLineMode(true),
	)

	if !tui.lineMode {
		t.Error("lineMode not set")
	}

	if tui.updates != updates {
		t.Error("updates not set")
	}
	if tui.eventChan != eventChan {
		t.Error("eventChan not set")
	}
	if tui.controls != controls {
		t.Error("controls not set")
	}
	if tui.muter != muter {
		t.Error("muter not set")
	}
	if tui.session == nil || tui.session.ID != "abc123" {
		t.Errorf("expected session abc123, got %+v", tui.session)
	}
	if tui.initial.TotalRounds != 4 {
		t.Errorf("expected 4 rounds in initial state, got %d", tui.initial.TotalRounds)
	}

	tui.onQuit()
	if !quitCalled {
		t.Error("onQuit callback not invoked")
	}
}

func TestNew_NoOptions(t *testing.T) {
	tui := New(timer.NewState(testConfig), nil, nil)

	if tui.eventChan != nil || tui.muter != nil || tui.session != nil || tui.onQuit != nil || tui.lineMode {
		t.Errorf("expected zero optional fields, got %+v", tui)
	}
}
