package share

import (
	"sync"
	"time"

	"github.com/npratt/hiit/internal/timer"
)

// MessageStateUpdate is the only message type sent between devices.
const MessageStateUpdate = "state-update"

// Message carries a full state snapshot from one device to the others.
// Receivers apply it wholesale; the newest message wins.
type Message struct {
	Type   string      `json:"type"`
	State  timer.State `json:"state"`
	Origin string      `json:"origin,omitempty"`
	SentAt time.Time   `json:"sent_at"`
}

// NewStateUpdate wraps s in a state-update message from origin.
func NewStateUpdate(s timer.State, origin string) Message {
	return Message{
		Type:   MessageStateUpdate,
		State:  s,
		Origin: origin,
		SentAt: time.Now().UTC(),
	}
}

// FromSelf reports whether the message was sent by device.
func (m Message) FromSelf(device string) bool {
	return m.Origin != "" && m.Origin == device
}

// DefaultHubBuffer is the per-subscriber buffer when none is given.
const DefaultHubBuffer = 16

// Hub broadcasts messages to every subscriber of a session id. Publish never
// blocks: a subscriber that falls behind loses its oldest message.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[chan Message]struct{}
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Message]struct{})}
}

// Subscribe returns a channel receiving messages published to session id.
func (h *Hub) Subscribe(id string, buffer int) <-chan Message {
	if buffer <= 0 {
		buffer = DefaultHubBuffer
	}
	ch := make(chan Message, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)
		return ch
	}
	if h.subs[id] == nil {
		h.subs[id] = make(map[chan Message]struct{})
	}
	h.subs[id][ch] = struct{}{}
	return ch
}

// Unsubscribe removes and closes a subscription.
func (h *Hub) Unsubscribe(id string, ch <-chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sub := range h.subs[id] {
		if sub == ch {
			delete(h.subs[id], sub)
			close(sub)
			break
		}
	}
	if len(h.subs[id]) == 0 {
		delete(h.subs, id)
	}
}

// Publish delivers msg to every subscriber of session id.
func (h *Hub) Publish(id string, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[id] {
		select {
		case ch <- msg:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- msg:
		default:
		}
	}
}

// Devices returns the number of subscribers to session id.
func (h *Hub) Devices(id string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[id])
}

// Close closes every subscription. Later subscriptions are closed at once.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, id)
	}
}
