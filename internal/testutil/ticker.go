package testutil

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/npratt/hiit/internal/timer"
)

// ManualTicker is a timer.Ticker that only fires when told to.
type ManualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

// NewManualTicker creates a ticker with an unbuffered channel, so a
// successful Fire means the tick was received.
func NewManualTicker() *ManualTicker {
	return &ManualTicker{ch: make(chan time.Time)}
}

// C returns the tick channel.
func (m *ManualTicker) C() <-chan time.Time { return m.ch }

// Stop marks the ticker stopped.
func (m *ManualTicker) Stop() { m.stopped.Store(true) }

// Stopped reports whether Stop has been called.
func (m *ManualTicker) Stopped() bool { return m.stopped.Load() }

// Fire delivers one tick, returning false if nothing received it within
// timeout.
func (m *ManualTicker) Fire(timeout time.Duration) bool {
	select {
	case m.ch <- time.Now():
		return true
	case <-time.After(timeout):
		return false
	}
}

// ManualClock hands out ManualTickers and remembers each one, newest last.
// Pass clock.NewTicker to timer.WithTicker.
type ManualClock struct {
	mu      sync.Mutex
	tickers []*ManualTicker
}

// NewManualClock creates an empty clock.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// NewTicker satisfies timer.TickerFunc.
func (c *ManualClock) NewTicker(time.Duration) timer.Ticker {
	t := NewManualTicker()
	c.mu.Lock()
	c.tickers = append(c.tickers, t)
	c.mu.Unlock()
	return t
}

// Tickers returns every ticker created so far.
func (c *ManualClock) Tickers() []*ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ManualTicker, len(c.tickers))
	copy(out, c.tickers)
	return out
}

// Latest returns the newest ticker, or nil if none was created.
func (c *ManualClock) Latest() *ManualTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		return nil
	}
	return c.tickers[len(c.tickers)-1]
}

// Tick fires the newest ticker once and fails the test if the tick is not
// received within a second.
func (c *ManualClock) Tick(t testing.TB) {
	t.Helper()
	tk := c.Latest()
	if tk == nil {
		t.Fatal("no ticker has been started")
	}
	if !tk.Fire(time.Second) {
		t.Fatal("tick was not received")
	}
}

// WaitFor polls cond until it holds or timeout expires.
func WaitFor(t testing.TB, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}
