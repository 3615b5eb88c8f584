package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/errors"
	"github.com/conneroisu/weft/internal/eval"
	"github.com/conneroisu/weft/internal/events"
	"github.com/conneroisu/weft/internal/sanitize"
	"golang.org/x/net/html"
)

// bindText replaces the node's text content with the stringified
// expression value. Re-runs are no-ops when the value is unchanged.
func (e *Engine) bindText(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindText, expr, rc)
	rerun := func() {
		dom.SetText(n, eval.Stringify(e.safeEval(ctx, b, b.Expression)))
	}
	e.schedule(b, rerun)
	rerun()
}

// bindHTML replaces the node's children with the expression value
// parsed as markup. The markup passes through the sanitizer and then
// gets its own directive pass, so injected content is both safe and
// live. Unchanged values skip the whole replacement.
func (e *Engine) bindHTML(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindHTML, expr, rc)
	rerun := func() {
		markup := eval.Stringify(e.safeEval(ctx, b, b.Expression))
		if markup == b.lastMarkup {
			return
		}
		b.lastMarkup = markup

		if e.sanitizer != nil {
			cleaned, err := e.sanitizer.CleanString(markup)
			if err != nil {
				e.report(ctx, errors.MarkupError("", "bound markup did not parse", err))
				cleaned = ""
			}
			markup = cleaned
		}

		for _, c := range dom.Children(n) {
			e.cleanupNode(ctx, c, false)
		}
		dom.RemoveChildren(n)

		nodes, err := dom.ParseFragment(markup)
		if err != nil {
			e.report(ctx, errors.MarkupError("", "bound markup did not parse", err))
			return
		}
		for _, nn := range nodes {
			n.AppendChild(nn)
		}
		for _, nn := range nodes {
			e.applySubtree(ctx, nn, b.ctx)
		}
		e.scan(n)
	}
	e.schedule(b, rerun)
	rerun()
}

// bindAttr sets one or more attributes from "name:expr" pairs. A nil or
// false value removes the attribute, true sets a bare boolean
// attribute, anything else is stringified. URL-bearing attributes pass
// through the sanitizer's URL rules.
func (e *Engine) bindAttr(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindAttr, expr, rc)
	rerun := func() {
		for _, pair := range splitTop(b.Expression, ',') {
			sep := indexTop(pair, ':')
			if sep < 0 {
				e.report(ctx, errors.ExpressionError(pair, fmt.Errorf("expected name:expression")))
				continue
			}
			name := strings.TrimSpace(pair[:sep])
			valExpr := strings.TrimSpace(pair[sep+1:])
			if name == "" || valExpr == "" {
				continue
			}
			if name == "value" && isFileInput(n) {
				e.logger.Warn(ctx, nil, "refusing to bind value on file input")
				continue
			}
			e.applyAttr(ctx, n, name, e.safeEval(ctx, b, valExpr))
		}
	}
	e.schedule(b, rerun)
	rerun()
}

func (e *Engine) applyAttr(ctx context.Context, n *html.Node, name string, val interface{}) {
	switch v := val.(type) {
	case nil:
		dom.RemoveAttr(n, name)
		return
	case bool:
		if !v {
			dom.RemoveAttr(n, name)
		} else {
			dom.SetAttr(n, name, "")
		}
		return
	}
	s := eval.Stringify(val)
	if e.sanitizer != nil && sanitize.IsURLAttr(name) {
		cleaned, ok := e.sanitizer.SanitizeURLAttribute(s)
		if !ok {
			e.report(ctx, errors.SanitizationError(n.Data, "bound URL rejected for "+name))
			dom.RemoveAttr(n, name)
			return
		}
		s = cleaned
	}
	dom.SetAttr(n, name, s)
}

func isFileInput(n *html.Node) bool {
	if n.Data != "input" {
		return false
	}
	t, _ := dom.Attr(n, "type")
	return strings.EqualFold(t, "file")
}

// bindStyle assembles the style attribute from "prop: expr" pairs
// separated by semicolons. Nil and false values drop their property;
// the result is filtered against the style policy before being set.
func (e *Engine) bindStyle(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindStyle, expr, rc)
	rerun := func() {
		var decls []string
		for _, pair := range splitTop(b.Expression, ';') {
			sep := indexTop(pair, ':')
			if sep < 0 {
				continue
			}
			prop := strings.TrimSpace(pair[:sep])
			valExpr := strings.TrimSpace(pair[sep+1:])
			if prop == "" || valExpr == "" {
				continue
			}
			val := e.safeEval(ctx, b, valExpr)
			if val == nil {
				continue
			}
			if v, ok := val.(bool); ok && !v {
				continue
			}
			decls = append(decls, prop+": "+eval.Stringify(val))
		}
		style := strings.Join(decls, "; ")
		if e.sanitizer != nil && style != "" {
			cleaned, ok := e.sanitizer.CleanStyle(style)
			if !ok {
				style = ""
			} else {
				style = cleaned
			}
		}
		if style == "" {
			dom.RemoveAttr(n, "style")
			return
		}
		dom.SetAttr(n, "style", style)
	}
	e.schedule(b, rerun)
	rerun()
}

// bindValue keeps a form control and a state path in sync: state to
// control on every run, control to state via input/change events when
// the expression is a plain dotted path.
func (e *Engine) bindValue(ctx context.Context, n *html.Node, expr string, rc *Context) {
	if isFileInput(n) {
		e.logger.Warn(ctx, nil, "refusing to bind value on file input")
		return
	}
	b := e.ensureBinding(n, KindValue, expr, rc)
	rerun := func() {
		s := eval.Stringify(e.safeEval(ctx, b, b.Expression))
		switch n.Data {
		case "textarea":
			dom.SetText(n, s)
		case "select":
			for _, opt := range dom.Children(n) {
				if opt.Type != html.ElementNode || opt.Data != "option" {
					continue
				}
				optVal, ok := dom.Attr(opt, "value")
				if !ok {
					optVal = dom.Text(opt)
				}
				if optVal == s {
					dom.SetAttr(opt, "selected", "")
				} else {
					dom.RemoveAttr(opt, "selected")
				}
			}
		default:
			dom.SetAttr(n, "value", s)
		}
	}
	e.schedule(b, rerun)
	rerun()

	if !b.writeback && e.broker != nil && pathLike(b.Expression) {
		b.writeback = true
		path := b.Expression
		listener := func(ev *events.Event) {
			if b.ctx == nil {
				return
			}
			setPath(b.ctx.State, path, ev.Value)
			dom.SetAttr(n, "value", ev.Value)
		}
		opts := events.Options{ComponentID: componentOf(rc)}
		if b.handlerIDs == nil {
			b.handlerIDs = make(map[string]string)
		}
		b.handlerIDs["value:input"] = e.broker.Register(n, "input", listener, opts)
		b.handlerIDs["value:change"] = e.broker.Register(n, "change", listener, opts)
	}
}

// bindChecked mirrors a boolean state path onto the checked attribute
// and writes checkbox changes back to the path.
func (e *Engine) bindChecked(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindChecked, expr, rc)
	rerun := func() {
		if eval.Truthy(e.safeEval(ctx, b, b.Expression)) {
			dom.SetAttr(n, "checked", "")
		} else {
			dom.RemoveAttr(n, "checked")
		}
	}
	e.schedule(b, rerun)
	rerun()

	if !b.writeback && e.broker != nil && pathLike(b.Expression) {
		b.writeback = true
		path := b.Expression
		listener := func(ev *events.Event) {
			if b.ctx == nil {
				return
			}
			setPath(b.ctx.State, path, ev.Checked)
			if ev.Checked {
				dom.SetAttr(n, "checked", "")
			} else {
				dom.RemoveAttr(n, "checked")
			}
		}
		if b.handlerIDs == nil {
			b.handlerIDs = make(map[string]string)
		}
		b.handlerIDs["checked:change"] = e.broker.Register(n, "change", listener, events.Options{ComponentID: componentOf(rc)})
	}
}

func componentOf(rc *Context) string {
	if rc == nil {
		return ""
	}
	return rc.ID
}
