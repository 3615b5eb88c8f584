package engine

import (
	"github.com/conneroisu/weft/internal/eval"
)

// Method is a host-supplied callable reachable from event handler
// directives. Arguments are evaluated expression results; the return
// value is ignored by the engine.
type Method func(args ...interface{}) interface{}

// Context carries the data a subtree renders against: plain state,
// computed values, and the methods event directives may invoke.
type Context struct {
	// State is the mutable data model expressions evaluate against.
	State map[string]interface{}

	// Computed holds derived values, merged into scope after State so a
	// computed name shadows a state name.
	Computed map[string]interface{}

	// Methods are looked up by event handler directives before the
	// engine's global function table.
	Methods map[string]Method

	// Reactive controls whether bindings enroll in the update queue.
	// Non-reactive contexts render once and never re-run.
	Reactive bool

	// ID identifies the component this context belongs to; event handler
	// registrations are grouped under it for batch teardown.
	ID string

	// ParentID is the owning component for contexts derived with Child.
	ParentID string

	// Queue collects re-run callbacks for bindings made under this
	// context. Child contexts share the parent's queue.
	Queue *UpdateQueue
}

// NewContext builds a reactive root context over the given state.
func NewContext(id string, state map[string]interface{}) *Context {
	if state == nil {
		state = make(map[string]interface{})
	}
	return &Context{
		State:    state,
		Reactive: true,
		ID:       id,
		Queue:    NewUpdateQueue(),
	}
}

// Child derives a context that extends this one with additional
// variables, as used for loop iteration scopes. The extension is a
// copy; writes to the child's extra keys do not leak to the parent,
// while the parent's keys remain visible.
func (c *Context) Child(extra map[string]interface{}) *Context {
	state := make(map[string]interface{}, len(c.State)+len(extra))
	for k, v := range c.State {
		state[k] = v
	}
	for k, v := range extra {
		state[k] = v
	}
	return &Context{
		State:    state,
		Computed: c.Computed,
		Methods:  c.Methods,
		Reactive: c.Reactive,
		ID:       c.ID,
		ParentID: c.ID,
		Queue:    c.Queue,
	}
}

// Scope flattens the context into an evaluation scope. Computed values
// shadow state values of the same name.
func (c *Context) Scope() eval.Scope {
	scope := make(eval.Scope, len(c.State)+len(c.Computed))
	for k, v := range c.State {
		scope[k] = v
	}
	for k, v := range c.Computed {
		scope[k] = v
	}
	return scope
}

// HasData reports whether the context carries any usable state. An
// empty context never displaces an established binding snapshot.
func (c *Context) HasData() bool {
	return c != nil && (len(c.State) > 0 || len(c.Computed) > 0)
}
