package events

import (
	"log/slog"
	"sync"
)

// DefaultBufferSize is the default channel buffer size for subscribers.
const DefaultBufferSize = 64

type subscription struct {
	ch      chan Event
	dropped int
}

// Router fans session events out to the TUI, the event log and the socket
// server. Emit never blocks: a subscriber that falls behind loses its oldest
// queued events, so it always sees the most recent ones.
type Router struct {
	mu         sync.RWMutex
	subs       []*subscription
	bufferSize int
	logger     *slog.Logger
	closed     bool
}

// NewRouter creates a router whose Subscribe channels hold bufferSize
// events. Non-positive sizes use DefaultBufferSize.
func NewRouter(bufferSize int) *Router {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Router{bufferSize: bufferSize, logger: slog.Default()}
}

// SetLogger replaces the logger used to report dropped events.
func (r *Router) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	r.mu.Lock()
	r.logger = logger
	r.mu.Unlock()
}

// Emit delivers event to every subscriber. It is a no-op after Close.
func (r *Router) Emit(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	for _, sub := range r.subs {
		r.deliver(sub, event)
	}
}

// deliver sends event to sub, evicting the oldest queued event when the
// buffer is full. Caller holds r.mu.
func (r *Router) deliver(sub *subscription, event Event) {
	for {
		select {
		case sub.ch <- event:
			return
		default:
		}
		select {
		case old := <-sub.ch:
			sub.dropped++
			r.logger.Warn("event dropped: subscriber behind",
				"event_type", old.Type(),
				"dropped", sub.dropped,
			)
		default:
		}
	}
}

// Subscribe returns a channel with the router's default buffer size.
func (r *Router) Subscribe() <-chan Event {
	return r.SubscribeBuffered(r.bufferSize)
}

// SubscribeBuffered returns a channel holding up to size events. The
// channel is closed by Unsubscribe or Close; after Close it is returned
// already closed.
func (r *Router) SubscribeBuffered(size int) <-chan Event {
	if size <= 0 {
		size = 1
	}
	ch := make(chan Event, size)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		close(ch)
		return ch
	}
	r.subs = append(r.subs, &subscription{ch: ch})
	return ch
}

// Unsubscribe closes ch and stops delivery to it. Unknown channels are
// ignored.
func (r *Router) Unsubscribe(ch <-chan Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subs {
		if sub.ch == ch {
			close(sub.ch)
			r.subs = append(r.subs[:i], r.subs[i+1:]...)
			return
		}
	}
}

// Len returns the number of live subscriptions.
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}

// Dropped reports how many events were evicted from ch's buffer.
func (r *Router) Dropped(ch <-chan Event) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, sub := range r.subs {
		if sub.ch == ch {
			return sub.dropped
		}
	}
	return 0
}

// Close closes every subscription. It is safe to call more than once.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, sub := range r.subs {
		close(sub.ch)
	}
	r.subs = nil
}
