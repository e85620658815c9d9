// Package controller drives a timer session: it follows the engine's state
// updates and turns them into sound cues, desktop notifications, events and
// share broadcasts.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/npratt/hiit/internal/cue"
	"github.com/npratt/hiit/internal/events"
	"github.com/npratt/hiit/internal/notify"
	"github.com/npratt/hiit/internal/share"
	"github.com/npratt/hiit/internal/timer"
)

// updateBuffer is the engine subscription buffer.
const updateBuffer = 32

// defaultNotifyTimeout bounds a single desktop notification.
const defaultNotifyTimeout = 5 * time.Second

// Engine is the part of timer.Engine the controller needs.
type Engine interface {
	State() timer.State
	Subscribe(buffer int) <-chan timer.Update
	Unsubscribe(ch <-chan timer.Update)
}

// Notifier shows desktop notifications.
type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

// Publisher broadcasts state to the other devices in a session.
type Publisher interface {
	Publish(id string, msg share.Message)
}

// unlocker is implemented by players that must be primed before the first
// cue.
type unlocker interface {
	Unlock() error
}

// Controller reacts to one engine's updates. Collaborator failures are
// logged and reported as events; they never stop the session.
type Controller struct {
	engine     Engine
	updates    <-chan timer.Update
	router     *events.Router
	player     cue.Player
	notifier   Notifier
	publisher  Publisher
	session    *share.Session
	warnings   bool
	onComplete func(timer.State)
	notifyWait time.Duration
	logger     *slog.Logger

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithRouter sets the event router.
func WithRouter(r *events.Router) Option {
	return func(c *Controller) {
		c.router = r
	}
}

// WithPlayer sets the sound cue player.
func WithPlayer(p cue.Player) Option {
	return func(c *Controller) {
		if p != nil {
			c.player = p
		}
	}
}

// WithNotifier sets the desktop notifier.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) {
		c.notifier = n
	}
}

// WithSession shares the session: every local update is published to p
// under the session's id.
func WithSession(s share.Session, p Publisher) Option {
	return func(c *Controller) {
		c.session = &s
		c.publisher = p
	}
}

// WithNotifyTimeout bounds each desktop notification. Non-positive values
// keep the default.
func WithNotifyTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.notifyWait = d
		}
	}
}

// WithWarnings enables or disables the countdown warning cue.
func WithWarnings(enabled bool) Option {
	return func(c *Controller) {
		c.warnings = enabled
	}
}

// WithOnComplete registers a callback run when the session completes.
func WithOnComplete(fn func(timer.State)) Option {
	return func(c *Controller) {
		c.onComplete = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Controller for engine and subscribes to its updates.
func New(engine Engine, opts ...Option) *Controller {
	c := &Controller{
		engine:     engine,
		player:     cue.Discard,
		warnings:   true,
		notifyWait: defaultNotifyTimeout,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updates = engine.Subscribe(updateBuffer)
	return c
}

// Run processes engine updates until ctx is cancelled or the engine is
// closed. Updates made between New and Run are not lost. Run waits for
// in-flight notifications before returning.
func (c *Controller) Run(ctx context.Context) error {
	updates := c.updates
	defer c.wg.Wait()
	defer c.engine.Unsubscribe(updates)

	c.logger.Info("controller started", "session_id", c.sessionID())

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("controller stopped", "reason", "context cancelled")
			return nil
		case u, ok := <-updates:
			if !ok {
				c.logger.Info("controller stopped", "reason", "engine closed")
				return nil
			}
			c.handle(ctx, u)
		}
	}
}

// handle reacts to one update.
func (c *Controller) handle(ctx context.Context, u timer.Update) {
	prev, next := u.Prev, u.State

	if c.publisher != nil && c.session != nil && u.Cause != timer.CauseApply {
		c.publisher.Publish(c.session.ID, share.NewStateUpdate(next, c.session.DeviceID))
	}

	c.emitControl(u)

	switch u.Cause {
	case timer.CauseStop, timer.CauseReset:
		return
	}

	if prev.Phase != next.Phase {
		if prev.Phase != timer.PhasePaused && next.Phase != timer.PhasePaused {
			c.emit(&events.PhaseChangedEvent{
				BaseEvent:     events.NewTimerEvent(events.EventPhaseChanged),
				From:          prev.Phase,
				To:            next.Phase,
				Round:         next.CurrentRound,
				TotalRounds:   next.TotalRounds,
				TimeRemaining: next.TimeRemaining,
			})
		}
		if cc, ok := cue.TransitionCue(prev.Phase, next.Phase); ok {
			c.play(cc)
			c.notify(ctx, cc)
		}
	}

	if c.warnings && next.IsRunning && cue.ShouldWarn(next.TimeRemaining) && next.TimeRemaining != prev.TimeRemaining {
		c.play(cue.Warning)
		c.emit(&events.PhaseWarningEvent{
			BaseEvent:     events.NewTimerEvent(events.EventPhaseWarning),
			Phase:         next.Phase,
			Round:         next.CurrentRound,
			TimeRemaining: next.TimeRemaining,
		})
	}

	if next.IsComplete() && !prev.IsComplete() {
		c.complete(next)
	}
}

// emitControl reports the control action behind an update.
func (c *Controller) emitControl(u timer.Update) {
	prev, next := u.Prev, u.State

	switch u.Cause {
	case timer.CauseStart:
		c.mu.Lock()
		first := !c.started
		c.started = true
		c.mu.Unlock()
		if !first {
			return
		}
		if ul, ok := c.player.(unlocker); ok {
			if err := ul.Unlock(); err != nil {
				c.failure("cue", "audio unlock failed", err)
			}
		}
		ev := &events.SessionStartEvent{
			BaseEvent:    events.NewInternalEvent(events.EventSessionStart),
			SessionID:    c.sessionID(),
			WorkDuration: next.Config.WorkDuration,
			RestDuration: next.Config.RestDuration,
			TotalRounds:  next.TotalRounds,
			LeadIn:       next.Config.LeadIn,
		}
		if c.session != nil {
			ev.ShareURL = c.session.ShareURL
		}
		c.emit(ev)
		c.logger.Info("session started", "session_id", c.sessionID(), "rounds", next.TotalRounds)

	case timer.CausePause:
		c.emit(&events.TimerPausedEvent{
			BaseEvent:     events.NewTimerEvent(events.EventTimerPaused),
			Phase:         next.ActivePhase(),
			Round:         next.CurrentRound,
			TimeRemaining: next.TimeRemaining,
		})

	case timer.CauseResume:
		c.emit(&events.TimerResumedEvent{
			BaseEvent:     events.NewTimerEvent(events.EventTimerResumed),
			Phase:         next.Phase,
			Round:         next.CurrentRound,
			TimeRemaining: next.TimeRemaining,
		})

	case timer.CauseSkip:
		to := next.ActivePhase()
		if next.IsComplete() {
			to = timer.PhaseComplete
		}
		c.emit(&events.PhaseSkippedEvent{
			BaseEvent: events.NewTimerEvent(events.EventPhaseSkipped),
			From:      prev.ActivePhase(),
			To:        to,
			Round:     next.CurrentRound,
			Paused:    prev.IsPaused(),
		})

	case timer.CauseAddRound, timer.CauseRemoveRound:
		typ := events.EventRoundAdded
		if u.Cause == timer.CauseRemoveRound {
			typ = events.EventRoundRemoved
		}
		c.emit(&events.RoundsChangedEvent{
			BaseEvent:    events.NewTimerEvent(typ),
			TotalRounds:  next.TotalRounds,
			CurrentRound: next.CurrentRound,
		})

	case timer.CauseStop:
		c.resetStarted()
		c.emit(&events.SessionStopEvent{
			BaseEvent:       events.NewInternalEvent(events.EventSessionStop),
			SessionID:       c.sessionID(),
			CompletedRounds: prev.CompletedRounds(),
			TotalRounds:     prev.TotalRounds,
		})
		c.logger.Info("session stopped", "completed_rounds", prev.CompletedRounds(), "total_rounds", prev.TotalRounds)

	case timer.CauseReset:
		c.resetStarted()
		c.emit(&events.SessionResetEvent{
			BaseEvent: events.NewInternalEvent(events.EventSessionReset),
			SessionID: c.sessionID(),
		})
	}
}

func (c *Controller) complete(s timer.State) {
	work := s.Config.WorkDuration * s.TotalRounds
	rest := s.Config.RestDuration * max(0, s.TotalRounds-1)
	c.emit(&events.SessionCompleteEvent{
		BaseEvent: events.NewInternalEvent(events.EventSessionComplete),
		SessionID: c.sessionID(),
		Rounds:    s.TotalRounds,
		WorkTime:  work,
		RestTime:  rest,
		TotalTime: work + rest,
	})
	c.logger.Info("session complete", "rounds", s.TotalRounds, "total_time", work+rest)

	if c.onComplete != nil {
		c.onComplete(s)
	}
}

func (c *Controller) play(cc cue.Cue) {
	if err := c.player.Play(cc); err != nil {
		c.failure("cue", fmt.Sprintf("play %s failed", cc), err)
	}
}

// notify sends the notification for cc without holding up the update loop.
func (c *Controller) notify(ctx context.Context, cc cue.Cue) {
	if c.notifier == nil {
		return
	}
	msg, ok := notify.MessageFor(cc)
	if !ok {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.notifyWait)
		defer cancel()
		if err := c.notifier.Send(ctx, msg); err != nil {
			c.failure("notify", "notification failed", err)
		}
	}()
}

func (c *Controller) failure(component, msg string, err error) {
	c.logger.Warn(msg, "component", component, "error", err)
	c.emit(&events.ErrorEvent{
		BaseEvent: events.NewInternalEvent(events.EventError),
		Message:   fmt.Sprintf("%s: %v", msg, err),
		Severity:  events.SeverityWarning,
		Component: component,
	})
}

func (c *Controller) resetStarted() {
	c.mu.Lock()
	c.started = false
	c.mu.Unlock()
}

func (c *Controller) sessionID() string {
	if c.session == nil {
		return ""
	}
	return c.session.ID
}

// emit sends an event to the router if available.
func (c *Controller) emit(event events.Event) {
	if c.router != nil {
		c.router.Emit(event)
	}
}
