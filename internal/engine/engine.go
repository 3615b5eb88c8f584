package engine

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/errors"
	"github.com/conneroisu/weft/internal/eval"
	"github.com/conneroisu/weft/internal/events"
	"github.com/conneroisu/weft/internal/logging"
	"github.com/conneroisu/weft/internal/notify"
	"github.com/conneroisu/weft/internal/sanitize"
	"golang.org/x/net/html"
)

// Loader resolves a template path to sanitized markup. Satisfied by
// store.Store.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// Enhancer hooks third-party behavior into the lifecycle: Scan runs
// after a subtree is rendered or re-attached, Release runs for each
// node during cleanup. Scan is skipped for detached subtrees.
type Enhancer interface {
	Scan(root *html.Node)
	Release(n *html.Node)
}

// Animator drives show/hide transitions for conditional nodes. Animate
// returns a channel closed when the transition finishes; the engine
// bounds the wait with a timeout and treats timeout as completion.
type Animator interface {
	Animate(n *html.Node, entering bool) <-chan struct{}
}

// GlobalFunc is an application-level function reachable from event
// handler directives when the context's method table has no match.
type GlobalFunc func(args ...interface{}) interface{}

// Options configures an Engine. Evaluator, Sanitizer, and Broker are
// required; everything else is optional.
type Options struct {
	Evaluator eval.Evaluator
	Sanitizer *sanitize.Sanitizer
	Broker    *events.Broker
	Loader    Loader
	Enhancer  Enhancer
	Animator  Animator
	Bus       *notify.Bus
	Logger    logging.Logger

	// AnimationTimeout caps the wait on an Animator transition.
	AnimationTimeout time.Duration
}

// Engine walks parsed HTML trees, binds attribute directives to nodes,
// and re-runs those bindings when the host flushes the update queue.
type Engine struct {
	evaluator   eval.Evaluator
	sanitizer   *sanitize.Sanitizer
	broker      *events.Broker
	loader      Loader
	enhancer    Enhancer
	animator    Animator
	bus         *notify.Bus
	logger      logging.Logger
	collector   *errors.ErrorCollector
	animTimeout time.Duration

	mu      sync.Mutex
	states  map[*html.Node]*nodeState
	hidden  map[*html.Node]*html.Node
	globals map[string]GlobalFunc
	scripts map[string]ScriptFunc
	active  map[*html.Node]*activeScript
}

type directiveFunc func(ctx context.Context, n *html.Node, expr string, rc *Context)

func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	timeout := opts.AnimationTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Engine{
		evaluator:   opts.Evaluator,
		sanitizer:   opts.Sanitizer,
		broker:      opts.Broker,
		loader:      opts.Loader,
		enhancer:    opts.Enhancer,
		animator:    opts.Animator,
		bus:         opts.Bus,
		logger:      logger.WithComponent("engine"),
		collector:   errors.NewErrorCollector(),
		animTimeout: timeout,
		states:      make(map[*html.Node]*nodeState),
		hidden:      make(map[*html.Node]*html.Node),
		globals:     make(map[string]GlobalFunc),
		scripts:     make(map[string]ScriptFunc),
		active:      make(map[*html.Node]*activeScript),
	}
}

// Collector exposes the accumulated directive errors.
func (e *Engine) Collector() *errors.ErrorCollector {
	return e.collector
}

// RegisterGlobal adds a function to the global handler table.
func (e *Engine) RegisterGlobal(name string, fn GlobalFunc) {
	e.mu.Lock()
	e.globals[name] = fn
	e.mu.Unlock()
}

// directiveOrder fixes per-node processing: conditional first (a false
// branch skips everything else on the node), lists pulled out of the
// walk and deferred, the rest in this sequence.
var directiveOrder = []Kind{
	KindText,
	KindHTML,
	KindClass,
	KindAttr,
	KindStyle,
	KindValue,
	KindChecked,
	KindOn,
	KindContainer,
	KindScript,
}

func directiveAttr(k Kind) string {
	return "data-" + string(k)
}

// directiveAttrs lists every recognized directive attribute, including
// the two handled outside directiveOrder.
var directiveAttrs = func() []string {
	names := []string{directiveAttr(KindIf), directiveAttr(KindFor)}
	for _, k := range directiveOrder {
		names = append(names, directiveAttr(k))
	}
	return names
}()

var knownDirective = func() map[string]bool {
	m := make(map[string]bool, len(directiveAttrs))
	for _, name := range directiveAttrs {
		m[name] = true
	}
	return m
}()

// checkDirectiveTypos reports data- attributes that look like
// misspelled directives. Plain data attributes with no close match are
// left alone.
func (e *Engine) checkDirectiveTypos(ctx context.Context, n *html.Node) {
	for _, a := range n.Attr {
		if !strings.HasPrefix(a.Key, "data-") || knownDirective[a.Key] {
			continue
		}
		if hint := errors.SuggestDirective(a.Key, directiveAttrs); hint != "" {
			e.report(ctx, errors.ConfigError("UNKNOWN_DIRECTIVE", hint))
		}
	}
}

// Apply processes every directive in the subtree rooted at root against
// the given render context. Safe to call repeatedly over the same tree;
// established bindings are updated in place.
func (e *Engine) Apply(ctx context.Context, root *html.Node, rc *Context) {
	if root == nil || rc == nil {
		return
	}
	e.applySubtree(ctx, root, rc)
	if e.enhancer != nil && !dom.IsDetached(root) {
		e.enhancer.Scan(root)
	}
	e.publish(notify.Notification{
		Signal: notify.SignalRenderPerformed,
		Detail: rc.ID,
	})
}

type deferredLoop struct {
	node *html.Node
	expr string
	rc   *Context
}

// applySubtree runs one full directive pass: a walk binding every
// non-list directive, then the list directives collected during the
// walk. Lists stamp clones that get their own applySubtree pass, so
// nesting resolves naturally.
func (e *Engine) applySubtree(ctx context.Context, root *html.Node, rc *Context) {
	var loops []deferredLoop
	e.walkApply(ctx, root, rc, &loops)
	for _, l := range loops {
		e.bindFor(ctx, l.node, l.expr, l.rc)
	}
}

func (e *Engine) walkApply(ctx context.Context, n *html.Node, rc *Context, loops *[]deferredLoop) {
	switch n.Type {
	case html.TextNode:
		e.visitText(ctx, n, rc)
		return
	case html.ElementNode:
	case html.DocumentNode:
		for _, c := range dom.Children(n) {
			e.walkApply(ctx, c, rc, loops)
		}
		return
	default:
		return
	}

	e.checkDirectiveTypos(ctx, n)

	if expr, ok := dom.Attr(n, directiveAttr(KindFor)); ok {
		*loops = append(*loops, deferredLoop{node: n, expr: expr, rc: rc})
		return
	}

	if expr, ok := dom.Attr(n, directiveAttr(KindIf)); ok {
		e.bindIf(ctx, n, expr, rc)
		if st := e.lookup(n); st != nil {
			if b := st.bindings[KindIf]; b != nil && b.cond == condHidden {
				return
			}
		}
	}

	for _, kind := range directiveOrder {
		if expr, ok := dom.Attr(n, directiveAttr(kind)); ok {
			e.dispatch(kind)(ctx, n, expr, rc)
		}
	}

	// Text written by a text or textarea value binding is bound data,
	// not markup to scan for interpolation spans.
	if st := e.lookup(n); st != nil {
		if st.bindings[KindText] != nil {
			return
		}
		if st.bindings[KindValue] != nil && n.Data == "textarea" {
			return
		}
	}

	for _, c := range dom.Children(n) {
		e.walkApply(ctx, c, rc, loops)
	}
}

func (e *Engine) dispatch(kind Kind) directiveFunc {
	switch kind {
	case KindText:
		return e.bindText
	case KindHTML:
		return e.bindHTML
	case KindClass:
		return e.bindClass
	case KindAttr:
		return e.bindAttr
	case KindStyle:
		return e.bindStyle
	case KindValue:
		return e.bindValue
	case KindChecked:
		return e.bindChecked
	case KindOn:
		return e.bindOn
	case KindContainer:
		return e.bindContainer
	case KindScript:
		return e.bindScript
	}
	return func(context.Context, *html.Node, string, *Context) {}
}

// state returns the node record, creating it on first use.
func (e *Engine) state(n *html.Node) *nodeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.states[n]
	if st == nil {
		st = &nodeState{bindings: make(map[Kind]*Binding)}
		e.states[n] = st
	}
	return st
}

// lookup returns the node record or nil.
func (e *Engine) lookup(n *html.Node) *nodeState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.states[n]
}

// ensureBinding fetches or creates the binding of a given kind on a
// node, updating its expression and context snapshot.
func (e *Engine) ensureBinding(n *html.Node, kind Kind, expr string, rc *Context) *Binding {
	st := e.state(n)
	b := st.bindings[kind]
	if b == nil {
		b = &Binding{Kind: kind}
		st.bindings[kind] = b
	}
	b.Expression = expr
	b.refresh(rc)
	if st.componentID == "" && rc != nil {
		st.componentID = rc.ID
	}
	return b
}

// schedule enrolls a binding's re-run callback when its context is
// reactive.
func (e *Engine) schedule(b *Binding, fn func()) {
	if b.ctx != nil && b.ctx.Reactive && b.ctx.Queue != nil {
		b.ctx.Queue.Add(b, fn)
	}
}

// safeEval evaluates the binding's expression against its snapshot
// scope, reporting failures as recoverable directive errors. A failed
// binding yields nil and the rest of the tree is unaffected.
func (e *Engine) safeEval(ctx context.Context, b *Binding, expr string) interface{} {
	v, err := e.evaluator.Evaluate(expr, b.scope())
	if err != nil {
		e.report(ctx, errors.ExpressionError(expr, err))
		return nil
	}
	return v
}

func (e *Engine) report(ctx context.Context, err *errors.EngineError) {
	e.collector.Add(err)
	e.logger.Warn(ctx, err, "directive error")
	e.publish(notify.Notification{
		Signal: notify.SignalDirectiveError,
		Detail: err.Error(),
	})
}

func (e *Engine) publish(n notify.Notification) {
	if e.bus != nil {
		e.bus.Publish(n)
	}
}

func (e *Engine) scan(n *html.Node) {
	if e.enhancer != nil && !dom.IsDetached(n) {
		e.enhancer.Scan(n)
	}
}

// visitText binds interpolation to text nodes containing {{ }} spans.
func (e *Engine) visitText(ctx context.Context, n *html.Node, rc *Context) {
	if !strings.Contains(n.Data, "{{") {
		if st := e.lookup(n); st == nil || st.bindings[KindInterp] == nil {
			return
		}
	}
	e.bindInterp(ctx, n, rc)
}
