package engine

import (
	"context"
	"strings"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/errors"
	"github.com/conneroisu/weft/internal/eval"
	"golang.org/x/net/html"
)

// bindContainer mounts a stored template as the node's content. A value
// starting with "/" is a literal template path; anything else is
// evaluated to produce the path, so containers can switch templates off
// state. Reloading only happens when the resolved path changes.
func (e *Engine) bindContainer(ctx context.Context, n *html.Node, expr string, rc *Context) {
	b := e.ensureBinding(n, KindContainer, expr, rc)
	rerun := func() {
		path := strings.TrimSpace(b.Expression)
		if !strings.HasPrefix(path, "/") {
			path = eval.Stringify(e.safeEval(ctx, b, b.Expression))
		}
		if path == "" || path == b.lastPath {
			return
		}
		if e.loader == nil {
			e.report(ctx, errors.ConfigError("NO_LOADER", "container directive used without a template loader"))
			return
		}

		markup, err := e.loader.Load(ctx, path)
		if err != nil {
			var ee *errors.EngineError
			if !errors.As(err, &ee) {
				ee = errors.NetworkError(path, err)
			}
			e.report(ctx, ee)
			return
		}
		b.lastPath = path

		for _, c := range dom.Children(n) {
			e.cleanupNode(ctx, c, false)
		}
		dom.RemoveChildren(n)

		nodes, perr := dom.ParseFragment(markup)
		if perr != nil {
			e.report(ctx, errors.MarkupError(path, "stored template did not parse", perr))
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
