package engine

import (
	"context"
	"fmt"
	"reflect"
	"regexp"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/errors"
	"golang.org/x/net/html"
)

var forPattern = regexp.MustCompile(`^\(?\s*([A-Za-z_$][\w$]*)\s*(?:,\s*([A-Za-z_$][\w$]*)\s*)?\)?\s+in\s+(.+)$`)

// bindFor stamps one clone of the node per element of the source
// collection. The original node becomes the inert template, replaced in
// the tree by a comment that marks the insertion point. Each clone is
// processed under a child context carrying the loop variable and index.
//
// Re-runs fingerprint the collection and skip restamping when it is
// unchanged, so flushing the queue without touching the source is
// cheap.
func (e *Engine) bindFor(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindFor, expr, rc)
	if b.template == nil {
		m := forPattern.FindStringSubmatch(expr)
		if m == nil {
			e.report(ctx, errors.ExpressionError(expr, fmt.Errorf("expected \"item in collection\"")))
			return
		}
		b.itemName, b.indexName, b.sourceExpr = m[1], m[2], m[3]
		if b.indexName == "" {
			b.indexName = "index"
		}

		b.template = dom.Clone(n)
		dom.RemoveAttr(b.template, directiveAttr(KindFor))
		b.listMark = dom.Comment("for")
		if n.Parent != nil {
			n.Parent.InsertBefore(b.listMark, n)
			dom.Detach(n)
		}
		e.putHidden(b.listMark, n)
		b.cleanupFn = func() {
			for _, c := range b.clones {
				e.cleanupNode(ctx, c, false)
				dom.Detach(c)
			}
			b.clones = nil
			dom.Detach(b.listMark)
		}
	}

	rerun := func() {
		parent := b.listMark.Parent
		if parent == nil {
			return
		}
		items := toSlice(e.safeEval(ctx, b, b.sourceExpr))
		fp := fmt.Sprintf("%v", items)
		if fp == b.fingerprint {
			return
		}
		b.fingerprint = fp

		for _, c := range b.clones {
			e.cleanupNode(ctx, c, false)
			dom.Detach(c)
		}
		b.clones = b.clones[:0]

		for i, item := range items {
			clone := dom.Clone(b.template)
			child := b.ctx.Child(map[string]interface{}{
				b.itemName:  item,
				b.indexName: i,
			})
			parent.InsertBefore(clone, b.listMark)
			e.applySubtree(ctx, clone, child)
			b.clones = append(b.clones, clone)
		}
		e.scan(parent)
	}
	e.schedule(b, rerun)
	rerun()
}

// toSlice normalizes the evaluated collection to a []interface{}.
// Non-collections yield nil and render nothing.
func toSlice(v interface{}) []interface{} {
	if v == nil {
		return nil
	}
	if s, ok := v.([]interface{}); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil
	}
	out := make([]interface{}, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
