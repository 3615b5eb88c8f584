package engine

import (
	"context"
	"time"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/eval"
	"golang.org/x/net/html"
)

// bindIf toggles a node's presence in the tree. Hidden nodes are
// detached and replaced by a comment placeholder that preserves the
// position; the subtree is torn down on hide and fully reprocessed on
// show. The binding itself survives hiding so the node can come back.
func (e *Engine) bindIf(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindIf, expr, rc)
	if b.placeholder == nil {
		b.placeholder = dom.Comment("if")
		b.cleanupFn = func() {
			if hidden, ok := e.takeHidden(b.placeholder); ok {
				e.cleanupNode(ctx, hidden, false)
			}
			dom.Detach(b.placeholder)
		}
	}
	rerun := func() {
		if b.animating || b.cond == condShowing || b.cond == condHiding {
			return
		}
		want := eval.Truthy(e.safeEval(ctx, b, b.Expression))
		animate := b.evaluated
		b.evaluated = true
		switch {
		case want && b.cond == condHidden:
			e.condShow(ctx, b, n)
		case !want && b.cond == condShown:
			e.condHide(ctx, b, n, animate)
		}
	}
	e.schedule(b, rerun)
	rerun()
}

func (e *Engine) condShow(ctx context.Context, b *Binding, n *html.Node) {
	parent := b.placeholder.Parent
	if parent == nil {
		return
	}
	b.cond = condShowing
	parent.InsertBefore(n, b.placeholder)
	dom.Detach(b.placeholder)
	e.takeHidden(b.placeholder)

	e.applySubtree(ctx, n, b.ctx)
	e.scan(n)
	e.await(ctx, b, n, true)
	b.cond = condShown
}

func (e *Engine) condHide(ctx context.Context, b *Binding, n *html.Node, animate bool) {
	if n.Parent == nil {
		b.cond = condHidden
		return
	}
	b.cond = condHiding
	if animate {
		e.await(ctx, b, n, false)
	}

	for _, c := range dom.Children(n) {
		e.cleanupNode(ctx, c, false)
	}
	e.releaseNode(ctx, n, true)

	n.Parent.InsertBefore(b.placeholder, n)
	dom.Detach(n)
	e.putHidden(b.placeholder, n)
	b.cond = condHidden
}

// await blocks on the animator for one transition, bounded by the
// configured timeout. Timeout counts as completion.
func (e *Engine) await(ctx context.Context, b *Binding, n *html.Node, entering bool) {
	if e.animator == nil {
		return
	}
	b.animating = true
	defer func() { b.animating = false }()

	timer := time.NewTimer(e.animTimeout)
	defer timer.Stop()
	select {
	case <-e.animator.Animate(n, entering):
	case <-timer.C:
	case <-ctx.Done():
	}
}

func (e *Engine) putHidden(mark, n *html.Node) {
	e.mu.Lock()
	e.hidden[mark] = n
	e.mu.Unlock()
}

func (e *Engine) takeHidden(mark *html.Node) (*html.Node, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, ok := e.hidden[mark]
	if ok {
		delete(e.hidden, mark)
	}
	return n, ok
}
