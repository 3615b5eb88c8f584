package engine

import (
	"context"
	"regexp"

	"github.com/conneroisu/weft/internal/eval"
	"golang.org/x/net/html"
)

var interpPattern = regexp.MustCompile(`\{\{\s*(.*?)\s*\}\}`)

// bindInterp binds {{ expression }} spans inside a text node. The
// original text is kept as the template so the node can be re-rendered
// after its content has been overwritten.
func (e *Engine) bindInterp(ctx context.Context, n *html.Node, rc *Context) {
	b := e.ensureBinding(n, KindInterp, "", rc)
	if b.textTemplate == "" {
		b.textTemplate = n.Data
	}
	rerun := func() {
		n.Data = interpPattern.ReplaceAllStringFunc(b.textTemplate, func(m string) string {
			expr := interpPattern.FindStringSubmatch(m)[1]
			if expr == "" {
				return ""
			}
			return eval.Stringify(e.safeEval(ctx, b, expr))
		})
	}
	e.schedule(b, rerun)
	rerun()
}
