// Package tui provides the terminal interval timer display using bubbletea.
package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
)

// Controls are the session operations bound to keys. A local engine
// satisfies it directly; a follower forwards each call to the host.
type Controls interface {
	Start()
	Pause()
	Resume()
	Skip()
	Stop()
	Reset()
	AddRound()
	RemoveRound()
}

// Muter toggles audible cues.
type Muter interface {
	SetMuted(bool)
	Muted() bool
}

// TUI is the terminal UI for a running session.
type TUI struct {
	initial   timer.State
	updates   <-chan timer.Update
	controls  Controls
	eventChan <-chan events.Event
	muter     Muter
	session   *share.Session
	onQuit    func()
	lineMode  bool
}

// Option configures the TUI.
type Option func(*TUI)

// New creates a TUI showing initial and every update received after it.
// Keys drive controls.
func New(initial timer.State, updates <-chan timer.Update, controls Controls, opts ...Option) *TUI {
	t := &TUI{
		initial:  initial,
		updates:  updates,
		controls: controls,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithEvents shows recent events from ch below the timer.
func WithEvents(ch <-chan events.Event) Option {
	return func(t *TUI) {
		t.eventChan = ch
	}
}

// WithMuter enables the mute toggle.
func WithMuter(m Muter) Option {
	return func(t *TUI) {
		t.muter = m
	}
}

// WithSession shows the share link and connected devices.
func WithSession(s share.Session) Option {
	return func(t *TUI) {
		t.session = &s
	}
}

// WithOnQuit sets the callback invoked when the UI exits on the user's
// request.
func WithOnQuit(fn func()) Option {
	return func(t *TUI) {
		t.onQuit = fn
	}
}

// WithLineMode prints one line per change instead of the full screen UI.
func WithLineMode(enabled bool) Option {
	return func(t *TUI) {
		t.lineMode = enabled
	}
}

// Run starts the TUI and blocks until it exits. Without a usable terminal it
// prints one line per change instead.
func (t *TUI) Run() error {
	if t.lineMode || !isTerminal() || terminalTooSmall() {
		return t.runSimple()
	}

	m := newModel(t.initial, t.updates, t.controls,
		t.eventChan, t.muter, t.session, t.onQuit)

	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
