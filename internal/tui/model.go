package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
)

const (
	// maxEventLines is the number of recent events kept for display.
	maxEventLines = 4
	// maxDots is the most rounds drawn as dots; longer sessions show text only.
	maxDots = 30
	// progressPadding is the horizontal space around the progress bar.
	progressPadding = 8
	// maxProgressWidth caps the progress bar on wide terminals.
	maxProgressWidth = 80
)

// eventLine represents a formatted event for display.
type eventLine struct {
	Time  time.Time
	Text  string
	Style lipgloss.Style
}

// model is the bubbletea model for the TUI.
type model struct {
	// Sources
	updates   <-chan timer.Update
	eventChan <-chan events.Event

	// State
	state   timer.State
	session *share.Session
	devices int

	// Event log
	eventLines []eventLine

	// Widgets
	progress progress.Model
	spinner  spinner.Model
	confirm  confirmModal

	// UI state
	width  int
	height int

	// Collaborators
	controls Controls
	muter    Muter
	onQuit   func()
}

// updateMsg wraps an engine update for the bubbletea message system.
type updateMsg timer.Update

// eventMsg wraps an event for the bubbletea message system.
type eventMsg events.Event

// newModel creates a new model with the given configuration.
func newModel(
	initial timer.State,
	updates <-chan timer.Update,
	controls Controls,
	eventChan <-chan events.Event,
	muter Muter,
	session *share.Session,
	onQuit func(),
) model {
	return model{
		updates:   updates,
		eventChan: eventChan,
		state:     initial,
		session:   session,
		progress:  progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Ready)),
		controls:  controls,
		muter:     muter,
		onQuit:    onQuit,
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		waitForUpdate(m.updates),
		m.spinner.Tick,
		tea.EnterAltScreen,
	}
	if m.eventChan != nil {
		cmds = append(cmds, waitForEvent(m.eventChan))
	}
	return tea.Batch(cmds...)
}

// Update, handleKey, handleUpdate, handleEvent are implemented in update.go
// View is implemented in view.go

// progressWidth returns the progress bar width for the current terminal.
func (m model) progressWidth() int {
	return max(10, min(maxProgressWidth, m.width-progressPadding))
}

// muted reports whether cues are muted.
func (m model) muted() bool {
	return m.muter != nil && m.muter.Muted()
}
