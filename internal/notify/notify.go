// Package notify delivers desktop notifications for timer transitions.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/npratt/hiit/internal/cue"
	"github.com/npratt/hiit/internal/exec"
)

// Permission is whether notifications may be shown.
type Permission string

// Permission states. Default means nobody has asked yet.
const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// AppName identifies the notifications to the desktop.
const AppName = "hiit"

// tag groups notifications so a new one replaces the previous.
const tag = "hiit-timer"

// Message is a notification's title and body.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// MessageFor returns the notification for a transition cue. Warnings have
// none.
func MessageFor(c cue.Cue) (Message, bool) {
	switch c {
	case cue.WorkComplete:
		return Message{Title: "Rest Time!", Body: "Great work! Take a break."}, true
	case cue.RestComplete:
		return Message{Title: "Work Time!", Body: "Break is over. Let's go!"}, true
	case cue.SessionComplete:
		return Message{Title: "Session Complete!", Body: "You did it! 🎉"}, true
	}
	return Message{}, false
}

// Desktop sends notifications through notify-send on Linux or osascript on
// macOS, or through a configured command that takes title and body as its
// two arguments.
type Desktop struct {
	mu         sync.Mutex
	runner     exec.CommandRunner
	command    string
	goos       string
	lookPath   func(string) (string, error)
	permission Permission
	logger     *slog.Logger
}

// Option configures a Desktop.
type Option func(*Desktop)

// WithCommand overrides the notifier command.
func WithCommand(command string) Option {
	return func(d *Desktop) {
		d.command = command
	}
}

// WithGOOS overrides the platform used to pick the notifier.
func WithGOOS(goos string) Option {
	return func(d *Desktop) {
		d.goos = goos
	}
}

// WithLookPath replaces the PATH lookup used by RequestPermission.
func WithLookPath(fn func(string) (string, error)) Option {
	return func(d *Desktop) {
		d.lookPath = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Desktop) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDesktop creates a notifier whose permission is still default.
func NewDesktop(runner exec.CommandRunner, opts ...Option) *Desktop {
	d := &Desktop{
		runner:     runner,
		goos:       runtime.GOOS,
		lookPath:   exec.LookPath,
		permission: PermissionDefault,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Permission returns the current permission state.
func (d *Desktop) Permission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.permission
}

// RequestPermission resolves the notifier command. Notifications are
// granted when it is installed and denied otherwise. The answer is final.
func (d *Desktop) RequestPermission() Permission {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.permission != PermissionDefault {
		return d.permission
	}

	name := d.commandName()
	if name == "" {
		d.permission = PermissionDenied
		d.logger.Info("desktop notifications unsupported", "os", d.goos)
		return d.permission
	}
	if _, err := d.lookPath(name); err != nil {
		d.permission = PermissionDenied
		d.logger.Info("desktop notifier not found", "command", name, "error", err)
		return d.permission
	}
	d.permission = PermissionGranted
	return d.permission
}

// Send shows msg. It does nothing unless permission was granted.
func (d *Desktop) Send(ctx context.Context, msg Message) error {
	if d.Permission() != PermissionGranted {
		return nil
	}

	name, args := d.commandLine(msg)
	if _, err := d.runner.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func (d *Desktop) commandName() string {
	if d.command != "" {
		return d.command
	}
	switch d.goos {
	case "linux", "freebsd", "openbsd", "netbsd":
		return "notify-send"
	case "darwin":
		return "osascript"
	}
	return ""
}

func (d *Desktop) commandLine(msg Message) (string, []string) {
	name := d.commandName()
	switch {
	case d.command != "":
		return name, []string{msg.Title, msg.Body}
	case name == "osascript":
		script := fmt.Sprintf("display notification %s with title %s", appleScriptString(msg.Body), appleScriptString(msg.Title))
		return name, []string{"-e", script}
	default:
		return name, []string{
			"--app-name=" + AppName,
			"--hint=string:x-canonical-private-synchronous:" + tag,
			msg.Title,
			msg.Body,
		}
	}
}

func appleScriptString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
