package timer

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultTickInterval is the countdown granularity.
const DefaultTickInterval = time.Second

// Cause identifies what produced a state update.
type Cause string

// Update causes.
const (
	CauseTick        Cause = "tick"
	CauseStart       Cause = "start"
	CausePause       Cause = "pause"
	CauseResume      Cause = "resume"
	CauseStop        Cause = "stop"
	CauseReset       Cause = "reset"
	CauseSkip        Cause = "skip"
	CauseAddRound    Cause = "add_round"
	CauseRemoveRound Cause = "remove_round"
	CauseApply       Cause = "apply"
)

// Update is published to subscribers after every state change.
type Update struct {
	Prev  State
	State State
	Cause Cause
}

// Ticker delivers ticks to the engine. *time.Ticker satisfies it through
// NewTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFunc creates a ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type stdTicker struct {
	t *time.Ticker
}

func (s stdTicker) C() <-chan time.Time { return s.t.C }
func (s stdTicker) Stop()               { s.t.Stop() }

// NewTicker wraps time.NewTicker.
func NewTicker(d time.Duration) Ticker {
	return stdTicker{t: time.NewTicker(d)}
}

// tickSource is one running tick goroutine.
type tickSource struct {
	stop chan struct{}
}

// Engine owns the state of one session and the tick source that advances it
// while running. All methods are safe for concurrent use.
type Engine struct {
	mu       sync.Mutex
	config   Config
	state    State
	subs     []chan Update
	source   *tickSource
	closed   bool
	ticking  bool
	interval time.Duration
	ticker   TickerFunc
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithTicker replaces the tick source factory (used by tests).
func WithTicker(fn TickerFunc) Option {
	return func(e *Engine) {
		e.ticker = fn
	}
}

// WithInterval sets the tick interval.
func WithInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.interval = d
		}
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithoutTicking disables the local tick source. A follower engine mirrors a
// remote session through Apply and never advances on its own.
func WithoutTicking() Option {
	return func(e *Engine) {
		e.ticking = false
	}
}

// NewEngine creates an engine holding the initial state for cfg. The
// configuration is expected to have passed Validate.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		config:   cfg,
		state:    NewState(cfg),
		ticking:  true,
		interval: DefaultTickInterval,
		ticker:   NewTicker,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Config returns the configuration the session was seeded with.
func (e *Engine) Config() Config {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.config
}

// Start begins or continues the countdown.
func (e *Engine) Start() { e.update(CauseStart, Start) }

// Pause interrupts the countdown.
func (e *Engine) Pause() { e.update(CausePause, Pause) }

// Resume continues after Pause.
func (e *Engine) Resume() { e.update(CauseResume, Resume) }

// Skip ends the current phase immediately.
func (e *Engine) Skip() { e.update(CauseSkip, Skip) }

// AddRound extends the session by one round.
func (e *Engine) AddRound() { e.update(CauseAddRound, AddRound) }

// RemoveRound shortens the session by one round.
func (e *Engine) RemoveRound() { e.update(CauseRemoveRound, RemoveRound) }

// Stop discards the session and returns to the initial state, including any
// round adjustments.
func (e *Engine) Stop() { e.update(CauseStop, e.fresh) }

// Reset is Stop for callers that start a new session rather than end one.
func (e *Engine) Reset() { e.update(CauseReset, e.fresh) }

// Apply overwrites the session with an externally delivered snapshot. The
// latest write wins; nothing is merged.
func (e *Engine) Apply(s State) {
	e.update(CauseApply, func(State) State {
		s = s.normalize()
		e.config = s.Config
		return s
	})
}

// fresh must only be called with e.mu held.
func (e *Engine) fresh(State) State {
	return NewState(e.config)
}

// Subscribe returns a channel receiving every subsequent update. When the
// subscriber falls behind, the oldest pending update is dropped so the
// engine never blocks. The channel is closed by Unsubscribe or Close.
func (e *Engine) Subscribe(buffer int) <-chan Update {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Update, buffer)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		close(ch)
		return ch
	}
	e.subs = append(e.subs, ch)
	return ch
}

// Unsubscribe removes and closes a subscription.
func (e *Engine) Unsubscribe(ch <-chan Update) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, sub := range e.subs {
		if sub == ch {
			e.subs = append(e.subs[:i], e.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Close stops the tick source and closes all subscriptions. It waits for the
// tick goroutine to exit and is safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.stopSourceLocked()
	for _, sub := range e.subs {
		close(sub)
	}
	e.subs = nil
	e.mu.Unlock()

	e.wg.Wait()
}

// update applies fn to the state and publishes the result.
func (e *Engine) update(cause Cause, fn func(State) State) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return
	}
	e.setLocked(cause, fn(e.state))
}

func (e *Engine) setLocked(cause Cause, next State) {
	prev := e.state
	e.state = next
	e.syncSourceLocked()

	if prev == next {
		return
	}
	e.logger.Debug("timer state changed",
		"cause", cause,
		"phase", next.Phase,
		"round", next.CurrentRound,
		"total_rounds", next.TotalRounds,
		"remaining", next.TimeRemaining,
		"running", next.IsRunning,
	)
	e.publishLocked(Update{Prev: prev, State: next, Cause: cause})
}

// syncSourceLocked starts or stops the tick goroutine to match IsRunning.
func (e *Engine) syncSourceLocked() {
	want := e.state.IsRunning && e.ticking
	switch {
	case want && e.source == nil:
		src := &tickSource{stop: make(chan struct{})}
		e.source = src
		t := e.ticker(e.interval)
		e.wg.Add(1)
		go e.run(src, t)
	case !want && e.source != nil:
		e.stopSourceLocked()
	}
}

func (e *Engine) stopSourceLocked() {
	if e.source == nil {
		return
	}
	close(e.source.stop)
	e.source = nil
}

// run delivers ticks from t until src is stopped.
func (e *Engine) run(src *tickSource, t Ticker) {
	defer e.wg.Done()
	defer t.Stop()

	for {
		select {
		case <-src.stop:
			return
		case <-t.C():
			e.mu.Lock()
			// A tick may race with a stop; only the current source may advance
			// the state.
			if e.source != src {
				e.mu.Unlock()
				return
			}
			e.setLocked(CauseTick, Tick(e.state))
			e.mu.Unlock()
		}
	}
}

func (e *Engine) publishLocked(u Update) {
	for _, ch := range e.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		// Full: drop the oldest pending update and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
			e.logger.Warn("timer update dropped: subscriber channel full", "cause", u.Cause)
		}
	}
}
