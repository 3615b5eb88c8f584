package engine

import (
	"context"
	"strings"

	"github.com/conneroisu/weft/internal/errors"
	"golang.org/x/net/html"
)

// ScriptFunc is an imperative behavior attached to a node by the script
// directive. It receives the node and the binding context's state and
// returns an optional teardown function, run when the node is cleaned
// up or the page is left.
type ScriptFunc func(n *html.Node, state map[string]interface{}) func()

type activeScript struct {
	name    string
	cleanup func()
}

// RegisterScript adds a named script usable from the script directive.
func (e *Engine) RegisterScript(name string, fn ScriptFunc) {
	e.mu.Lock()
	e.scripts[name] = fn
	e.mu.Unlock()
}

// bindScript runs the named script against the node once. Re-applying
// the same name is a no-op; a different name tears the old one down and
// runs the new one.
func (e *Engine) bindScript(ctx context.Context, n *html.Node, expr string, rc *Context) {
	name := strings.TrimSpace(expr)
	e.ensureBinding(n, KindScript, name, rc)

	e.mu.Lock()
	fn := e.scripts[name]
	current := e.active[n]
	e.mu.Unlock()

	if current != nil {
		if current.name == name {
			return
		}
		if current.cleanup != nil {
			current.cleanup()
		}
		e.mu.Lock()
		delete(e.active, n)
		e.mu.Unlock()
	}
	if fn == nil {
		e.report(ctx, errors.HandlerError(name, "no script with this name is registered"))
		return
	}

	state := map[string]interface{}{}
	if rc != nil && rc.State != nil {
		state = rc.State
	}
	cleanup := fn(n, state)
	e.mu.Lock()
	e.active[n] = &activeScript{name: name, cleanup: cleanup}
	e.mu.Unlock()
}

// BeforeNavigate tears down every active script. Hosts call it when the
// rendered document is about to be replaced wholesale.
func (e *Engine) BeforeNavigate() {
	e.mu.Lock()
	actives := make([]*activeScript, 0, len(e.active))
	for n, rec := range e.active {
		actives = append(actives, rec)
		delete(e.active, n)
	}
	e.mu.Unlock()

	for _, rec := range actives {
		if rec.cleanup != nil {
			rec.cleanup()
		}
	}
}
