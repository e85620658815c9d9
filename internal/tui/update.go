package tui

import (
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/timer"
)

// updatesClosedMsg signals that the engine closed its update channel.
type updatesClosedMsg struct{}

// eventsClosedMsg signals that the event channel was closed.
type eventsClosedMsg struct{}

// waitForUpdate creates a command that waits for the next engine update.
// Returns updatesClosedMsg if the channel is closed.
func waitForUpdate(ch <-chan timer.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-ch
		if !ok {
			return updatesClosedMsg{}
		}
		return updateMsg(u)
	}
}

// waitForEvent creates a command that waits for the next event from the channel.
// Returns eventsClosedMsg if the channel is closed.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(event)
	}
}

// Update implements tea.Model. It handles all message types and updates the model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = m.progressWidth()
		return m, nil

	case updateMsg:
		m.state = msg.State
		return m, waitForUpdate(m.updates)

	case updatesClosedMsg:
		slog.Info("update channel closed, exiting TUI")
		return m, tea.Quit

	case eventMsg:
		m.handleEvent(events.Event(msg))
		return m, waitForEvent(m.eventChan)

	case eventsClosedMsg:
		// The timer keeps running without the event list.
		m.eventChan = nil
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return m.quit()
	}

	if m.confirm.IsOpen() {
		if m.confirm.HandleKey(msg) == choiceConfirm {
			m.control(Controls.Stop)
			return m.quit()
		}
		return m, nil
	}

	if m.state.IsComplete() {
		return m.handleCompleteKey(key)
	}

	switch key {
	case " ", "p":
		switch {
		case m.state.IsPaused():
			m.control(Controls.Resume)
		case m.state.IsRunning:
			m.control(Controls.Pause)
		default:
			m.control(Controls.Start)
		}

	case "s":
		m.control(Controls.Skip)

	case "+", "=":
		if m.state.IsPaused() {
			m.control(Controls.AddRound)
		}

	case "-", "_":
		if m.state.IsPaused() {
			m.control(Controls.RemoveRound)
		}

	case "m":
		if m.muter != nil {
			m.muter.SetMuted(!m.muter.Muted())
		}

	case "x", "q", "esc":
		if !m.inProgress() {
			if key == "esc" {
				return m, nil
			}
			return m.quit()
		}
		m.confirm.Open(m.state.CompletedRounds(), m.state.TotalRounds)
	}

	return m, nil
}

// handleCompleteKey processes keys on the completion screen.
func (m model) handleCompleteKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "r", "enter":
		m.control(Controls.Reset)
		m.control(Controls.Start)
		return m, nil

	case "q", "esc", "x":
		return m.quit()
	}
	return m, nil
}

// handleEvent processes an event and updates model state.
func (m *model) handleEvent(event events.Event) {
	if e, ok := event.(*events.DevicesChangedEvent); ok {
		m.devices = e.Devices
	}

	if !showInLog(event) {
		return
	}
	text := events.Format(event)
	if text == "" {
		return
	}

	m.eventLines = append(m.eventLines, eventLine{
		Time:  event.Timestamp(),
		Text:  text,
		Style: styleForEvent(event),
	})
	if len(m.eventLines) > maxEventLines {
		m.eventLines = m.eventLines[len(m.eventLines)-maxEventLines:]
	}
}

// control invokes op on the session controls, if any.
func (m model) control(op func(Controls)) {
	if m.controls == nil {
		return
	}
	op(m.controls)
}

// inProgress reports whether the session has started and not finished.
func (m model) inProgress() bool {
	return m.state.IsRunning || m.state.IsPaused()
}

// quit invokes the quit callback and exits the program.
func (m model) quit() (tea.Model, tea.Cmd) {
	if m.onQuit != nil {
		m.onQuit()
	}
	return m, tea.Quit
}

// eventTime returns the display timestamp for an event line.
func eventTime(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.Format("15:04:05")
}
