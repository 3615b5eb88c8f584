// Package notify carries the engine's lifecycle signals out to the host
// application: template loads, completed renders, directive errors and
// cleanup passes. Subscribers receive on buffered channels; a slow
// subscriber drops signals rather than blocking the render path.
package notify

import (
	"sync"
	"time"
)

// Signal identifies a lifecycle event kind.
type Signal string

const (
	SignalTemplateLoaded   Signal = "template-loaded"
	SignalRenderPerformed  Signal = "render-performed"
	SignalDirectiveError   Signal = "directive-error"
	SignalCleanupPerformed Signal = "cleanup-performed"
)

// Notification is one emitted lifecycle event.
type Notification struct {
	Signal    Signal                 `json:"signal"`
	Path      string                 `json:"path,omitempty"`
	Detail    string                 `json:"detail,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Bus fans lifecycle notifications out to subscribers.
type Bus struct {
	mu          sync.Mutex
	subscribers []chan Notification
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe returns a channel receiving future notifications. The caller
// must eventually call Unsubscribe with the same channel.
func (b *Bus) Subscribe() <-chan Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Notification, 64)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (b *Bus) Unsubscribe(ch <-chan Notification) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// Publish delivers a notification to every subscriber, dropping it for
// subscribers whose buffer is full.
func (b *Bus) Publish(n Notification) {
	if n.Timestamp.IsZero() {
		n.Timestamp = time.Now()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subscribers {
		select {
		case sub <- n:
		default:
			// Skip if channel is full
		}
	}
}

// SubscriberCount returns the number of live subscribers.
func (b *Bus) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers)
}
