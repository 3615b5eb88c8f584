package engine

import (
	"context"
	"strings"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/eval"
	"golang.org/x/net/html"
)

// bindClass supports three value forms:
//
//	cond ? 'a' : 'b'      ternary swap, the losing branch is removed
//	a: exprA, b: exprB    per-class toggles keyed by truthiness
//	expr                  expression yielding the class list to manage
func (e *Engine) bindClass(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindClass, expr, rc)
	rerun := func() {
		s := b.Expression
		if q := indexTop(s, '?'); q >= 0 {
			if c := indexTop(s[q+1:], ':'); c >= 0 {
				e.classTernary(ctx, b, n, s[:q], s[q+1:q+1+c], s[q+2+c:])
				return
			}
		}
		if indexTop(s, ':') >= 0 {
			e.classToggles(ctx, b, n)
			return
		}
		e.classExpression(ctx, b, n)
	}
	e.schedule(b, rerun)
	rerun()
}

func (e *Engine) classTernary(ctx context.Context, b *Binding, n *html.Node, cond, whenTrue, whenFalse string) {
	win, lose := whenTrue, whenFalse
	if !eval.Truthy(e.safeEval(ctx, b, cond)) {
		win, lose = whenFalse, whenTrue
	}
	for _, name := range strings.Fields(e.classLiteral(ctx, b, lose)) {
		dom.RemoveClass(n, name)
	}
	for _, name := range strings.Fields(e.classLiteral(ctx, b, win)) {
		dom.AddClass(n, name)
	}
}

// classLiteral resolves one ternary branch: a quoted literal is taken
// as-is, anything else is evaluated.
func (e *Engine) classLiteral(ctx context.Context, b *Binding, branch string) string {
	if s, ok := unquote(branch); ok {
		return s
	}
	return eval.Stringify(e.safeEval(ctx, b, strings.TrimSpace(branch)))
}

func (e *Engine) classToggles(ctx context.Context, b *Binding, n *html.Node) {
	for _, pair := range splitTop(b.Expression, ',') {
		sep := indexTop(pair, ':')
		if sep < 0 {
			continue
		}
		name, _ := unquote(pair[:sep])
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if eval.Truthy(e.safeEval(ctx, b, strings.TrimSpace(pair[sep+1:]))) {
			dom.AddClass(n, name)
		} else {
			dom.RemoveClass(n, name)
		}
	}
}

func (e *Engine) classExpression(ctx context.Context, b *Binding, n *html.Node) {
	next := strings.Fields(eval.Stringify(e.safeEval(ctx, b, b.Expression)))
	keep := make(map[string]bool, len(next))
	for _, name := range next {
		keep[name] = true
	}
	for _, name := range b.lastClasses {
		if !keep[name] {
			dom.RemoveClass(n, name)
		}
	}
	for _, name := range next {
		dom.AddClass(n, name)
	}
	b.lastClasses = next
}
