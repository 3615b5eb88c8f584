package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/net/html"

	"github.com/conneroisu/weft/internal/logging"
)

// Listener is the low-level callback shape the broker invokes.
type Listener func(*Event)

// Options configures one handler registration.
type Options struct {
	// Capture runs the listener during the capture phase (root toward
	// target) instead of the bubble phase.
	Capture bool
	// ComponentID groups handlers for batch teardown.
	ComponentID string
}

// Handler is one registered listener, reachable individually by ID or in
// bulk by component.
type Handler struct {
	ID          string
	Element     *html.Node
	EventType   string
	Listener    Listener
	Capture     bool
	ComponentID string
}

type throttleKey struct {
	element   *html.Node
	eventType string
}

// Broker owns every live event handler for one engine instance.
type Broker struct {
	mu          sync.Mutex
	handlers    map[string]*Handler
	byElement   map[*html.Node]map[string][]*Handler // element -> eventType -> handlers
	byComponent map[string][]string                  // componentID -> handler IDs

	lastFire    map[throttleKey]time.Time
	minInterval time.Duration

	seq    uint64
	logger logging.Logger
	clock  func() time.Time
}

// NewBroker creates a broker. minInterval is the minimum re-trigger
// interval per (element, event type); zero disables throttling.
func NewBroker(minInterval time.Duration, logger logging.Logger) *Broker {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Broker{
		handlers:    make(map[string]*Handler),
		byElement:   make(map[*html.Node]map[string][]*Handler),
		byComponent: make(map[string][]string),
		lastFire:    make(map[throttleKey]time.Time),
		minInterval: minInterval,
		logger:      logger.WithComponent("events"),
		clock:       time.Now,
	}
}

// Register adds a listener and returns its opaque handler id.
func (b *Broker) Register(element *html.Node, eventType string, listener Listener, opts Options) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	h := &Handler{
		ID:          fmt.Sprintf("h%d", b.seq),
		Element:     element,
		EventType:   eventType,
		Listener:    listener,
		Capture:     opts.Capture,
		ComponentID: opts.ComponentID,
	}

	b.handlers[h.ID] = h

	perType := b.byElement[element]
	if perType == nil {
		perType = make(map[string][]*Handler)
		b.byElement[element] = perType
	}
	perType[eventType] = append(perType[eventType], h)

	if h.ComponentID != "" {
		b.byComponent[h.ComponentID] = append(b.byComponent[h.ComponentID], h.ID)
	}

	return h.ID
}

// Unregister removes one handler by id. Returns false when the id is
// unknown (already removed).
func (b *Broker) Unregister(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.unregisterLocked(id)
}

func (b *Broker) unregisterLocked(id string) bool {
	h, ok := b.handlers[id]
	if !ok {
		return false
	}
	delete(b.handlers, id)

	if perType, ok := b.byElement[h.Element]; ok {
		list := perType[h.EventType]
		for i, cand := range list {
			if cand.ID == id {
				perType[h.EventType] = append(list[:i], list[i+1:]...)
				break
			}
		}
		if len(perType[h.EventType]) == 0 {
			delete(perType, h.EventType)
		}
		if len(perType) == 0 {
			delete(b.byElement, h.Element)
		}
	}

	if h.ComponentID != "" {
		ids := b.byComponent[h.ComponentID]
		for i, cand := range ids {
			if cand == id {
				b.byComponent[h.ComponentID] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
		if len(b.byComponent[h.ComponentID]) == 0 {
			delete(b.byComponent, h.ComponentID)
		}
	}

	return true
}

// UnregisterAll removes every handler registered under the component id.
func (b *Broker) UnregisterAll(componentID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	ids := append([]string(nil), b.byComponent[componentID]...)
	for _, id := range ids {
		b.unregisterLocked(id)
	}
	return len(ids)
}

// UnregisterElement removes every handler attached to the element. Used by
// the cleanup manager when a node is torn down.
func (b *Broker) UnregisterElement(element *html.Node) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	var ids []string
	for _, list := range b.byElement[element] {
		for _, h := range list {
			ids = append(ids, h.ID)
		}
	}
	for _, id := range ids {
		b.unregisterLocked(id)
	}
	for key := range b.lastFire {
		if key.element == element {
			delete(b.lastFire, key)
		}
	}
	return len(ids)
}

// HandlerCount returns the number of live handlers.
func (b *Broker) HandlerCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers)
}

// Dispatch routes the event along the capture path (document root toward
// the target) and then the bubble path (target toward the root), honoring
// StopPropagation and the per-(element, event type) throttle interval.
func (b *Broker) Dispatch(ev *Event) {
	if ev == nil || ev.Target == nil {
		return
	}

	if b.throttled(ev.Target, ev.Type) {
		b.logger.Debug(context.Background(), "event throttled",
			"event", ev.Type)
		return
	}

	// Build the ancestor path from root down to the target.
	var path []*html.Node
	for n := ev.Target; n != nil; n = n.Parent {
		path = append([]*html.Node{n}, path...)
	}

	// Capture phase: root toward target, excluding the target itself.
	for _, n := range path[:len(path)-1] {
		if ev.PropagationStopped() {
			return
		}
		b.invoke(n, ev, true)
	}

	// Target and bubble phase: target toward root.
	for i := len(path) - 1; i >= 0; i-- {
		if ev.PropagationStopped() {
			return
		}
		b.invoke(path[i], ev, false)
	}
}

// invoke runs the element's listeners for the event's type and phase. The
// handler list is snapshotted so a listener may unregister itself (the
// `once` modifier) without corrupting iteration.
func (b *Broker) invoke(element *html.Node, ev *Event, capture bool) {
	b.mu.Lock()
	var snapshot []*Handler
	if perType, ok := b.byElement[element]; ok {
		snapshot = append(snapshot, perType[ev.Type]...)
	}
	b.mu.Unlock()

	for _, h := range snapshot {
		if h.Capture != capture {
			continue
		}
		// Skip handlers unregistered by an earlier listener in this pass.
		b.mu.Lock()
		_, live := b.handlers[h.ID]
		b.mu.Unlock()
		if !live {
			continue
		}

		ev.CurrentTarget = element
		h.Listener(ev)
	}
}

// throttled records the firing time and reports whether the event came in
// under the minimum re-trigger interval.
func (b *Broker) throttled(element *html.Node, eventType string) bool {
	if b.minInterval <= 0 {
		return false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	key := throttleKey{element: element, eventType: eventType}
	now := b.clock()
	if last, ok := b.lastFire[key]; ok && now.Sub(last) < b.minInterval {
		return true
	}
	b.lastFire[key] = now
	return false
}
