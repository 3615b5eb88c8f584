package engine

import (
	"context"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/notify"
	"golang.org/x/net/html"
)

// Cleanup releases everything the engine holds for a subtree: event
// handlers, bindings and their queue enrollments, enhancer state, and
// active scripts. Works on detached subtrees and is idempotent, so
// hosts can call it both before and after removing nodes.
func (e *Engine) Cleanup(n *html.Node) {
	ctx := context.Background()
	e.cleanupNode(ctx, n, false)
	e.publish(notify.Notification{Signal: notify.SignalCleanupPerformed})
}

func (e *Engine) cleanupNode(ctx context.Context, n *html.Node, keepConditional bool) {
	if n == nil {
		return
	}

	// comment marks left by conditional and list bindings park a
	// detached node; release it along with the mark
	if n.Type == html.CommentNode {
		if parked, ok := e.takeHidden(n); ok {
			e.cleanupNode(ctx, parked, false)
		}
	}

	e.releaseNode(ctx, n, keepConditional)

	if e.enhancer != nil {
		e.enhancer.Release(n)
	}

	e.mu.Lock()
	rec := e.active[n]
	delete(e.active, n)
	e.mu.Unlock()
	if rec != nil && rec.cleanup != nil {
		rec.cleanup()
	}

	for _, c := range dom.Children(n) {
		e.cleanupNode(ctx, c, false)
	}
}

// releaseNode drops the node's own handlers and bindings without
// touching children. keepConditional preserves the if binding so a
// node hidden by its own condition can still come back.
func (e *Engine) releaseNode(ctx context.Context, n *html.Node, keepConditional bool) {
	if e.broker != nil {
		e.broker.UnregisterElement(n)
	}
	st := e.lookup(n)
	if st == nil {
		return
	}
	for kind, b := range st.bindings {
		if keepConditional && kind == KindIf {
			continue
		}
		if b.cleanupFn != nil {
			b.cleanupFn()
		}
		if b.ctx != nil && b.ctx.Queue != nil {
			b.ctx.Queue.Remove(b)
		}
		delete(st.bindings, kind)
	}
	if len(st.bindings) == 0 {
		e.mu.Lock()
		delete(e.states, n)
		e.mu.Unlock()
	}
}
