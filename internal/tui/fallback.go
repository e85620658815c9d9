package tui

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/timer"
	"golang.org/x/term"
)

// completeGrace bounds the wait for trailing events once a session completes.
const completeGrace = time.Second

// isTerminal returns true if both stdout and stdin are TTYs.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))
}

// terminalSize returns the current terminal width and height.
// Returns 0, 0 if the terminal size cannot be determined.
func terminalSize() (width, height int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 0, 0
	}
	return width, height
}

// terminalTooSmall returns true if the terminal is below the minimum size.
func terminalTooSmall() bool {
	width, height := terminalSize()
	return width < minWidth || height < minHeight
}

// runSimple provides line-by-line output for non-interactive environments.
// Without an event channel it prints one line per phase change.
// Exits when the session completes, the update channel closes, or on
// interrupt signal.
func (t *TUI) runSimple() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if t.controls != nil && !t.initial.IsRunning && !t.initial.IsPaused() && !t.initial.IsComplete() {
		t.controls.Start()
	}
	printLine(summaryLine(t.initial))

	// After completion, wait briefly so the final events are printed.
	var done <-chan time.Time

	eventChan := t.eventChan
	updates := t.updates
	for {
		select {
		case <-done:
			return nil

		case <-sigChan:
			if t.onQuit != nil {
				t.onQuit()
			}
			return nil

		case event, ok := <-eventChan:
			if !ok {
				eventChan = nil
				continue
			}
			if !showInLog(event) {
				continue
			}
			if text := events.Format(event); text != "" {
				printLine(text)
			}
			if event.Type() == events.EventSessionComplete {
				return nil
			}

		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if t.eventChan == nil && u.State.Phase != u.Prev.Phase {
				printLine(summaryLine(u.State))
			}
			if u.State.IsComplete() {
				if eventChan == nil {
					return nil
				}
				updates = nil
				done = time.After(completeGrace)
			}
		}
	}
}

// summaryLine describes a state in one line.
func summaryLine(s timer.State) string {
	return fmt.Sprintf("%s  %s  %s", phaseLabel(s), roundLabel(s), timer.FormatClock(s.TimeRemaining))
}

// printLine writes text prefixed with the wall clock time.
func printLine(text string) {
	fmt.Printf("%s %s\n", time.Now().Format("15:04:05"), text)
}
