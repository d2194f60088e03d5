package realtime

import (
	"context"
	"sync"
)

const subscriberBuffer = 16

// Hub is an in-process Broker for single-node deployments and tests
type Hub struct {
	mu     sync.Mutex
	topics map[string]map[chan Event]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{topics: make(map[string]map[chan Event]struct{})}
}

// Publish delivers the event to current subscribers of the topic. A
// subscriber whose buffer is full misses the event; consumers refetch on the
// next one, so a dropped notification is not a correctness problem.
func (h *Hub) Publish(_ context.Context, topic string, ev Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.topics[topic] {
		select {
		case ch <- ev:
		default:
		}
	}
	return nil
}

// Subscribe registers a new subscriber for the topic
func (h *Hub) Subscribe(_ context.Context, topic string) (<-chan Event, func(), error) {
	ch := make(chan Event, subscriberBuffer)

	h.mu.Lock()
	subs, ok := h.topics[topic]
	if !ok {
		subs = make(map[chan Event]struct{})
		h.topics[topic] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.topics[topic], ch)
			if len(h.topics[topic]) == 0 {
				delete(h.topics, topic)
			}
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel, nil
}
