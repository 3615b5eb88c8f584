// Package events implements the low-level event broker: handler
// registration keyed by opaque ids, per-component batch teardown, and
// synthetic event dispatch with capture/bubble phases.
//
// There is no browser underneath; the host application synthesizes Event
// values (from its transport, a test, or a headless driver) and pushes
// them through Dispatch.
package events

import (
	"golang.org/x/net/html"
)

// Event is a synthetic UI event routed through the broker.
type Event struct {
	Type   string
	Target *html.Node
	// CurrentTarget is the element whose listener is running; set by the
	// broker during dispatch.
	CurrentTarget *html.Node

	// Key is the logical key name for keyboard events ("Enter", "a", ...).
	Key string
	// Button is the pointer button for mouse events (0 left, 1 middle, 2 right).
	Button int

	CtrlKey  bool
	ShiftKey bool
	AltKey   bool
	MetaKey  bool

	// Trusted marks events originating from the host rather than
	// synthesized by application code.
	Trusted bool

	// Value carries the control value for input/change events.
	Value string
	// Checked carries the checkbox state for change events.
	Checked bool

	defaultPrevented   bool
	propagationStopped bool
}

// PreventDefault marks the event's default action as suppressed.
func (e *Event) PreventDefault() {
	e.defaultPrevented = true
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation halts dispatch to elements beyond the current one.
func (e *Event) StopPropagation() {
	e.propagationStopped = true
}

// PropagationStopped reports whether StopPropagation was called.
func (e *Event) PropagationStopped() bool {
	return e.propagationStopped
}
