package sse

import (
	"sync"
)

// Event is one server-sent event addressed to a single user.
type Event struct {
	UserID string
	Event  string
	Data   interface{}
}

// subscriberBuffer bounds each subscriber channel; slow consumers drop
// events rather than block the publisher.
const subscriberBuffer = 10

// Hub fans events out to the live SSE connections of each user. A user may
// hold several connections (multiple tabs), each with its own channel.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a connection for userID. The returned cleanup must be
// called when the connection ends; it closes the channel.
func (h *Hub) Subscribe(userID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, subscriberBuffer)

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[userID], ch)
		close(ch)
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
	}

	return ch, cleanup
}

// Publish delivers an event to every live connection of userID. Full
// channels are skipped so one stalled connection cannot block delivery.
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}
