package engine

import (
	"github.com/conneroisu/weft/internal/eval"
	"golang.org/x/net/html"
)

// Kind names one directive family. A node holds at most one binding per
// kind; re-processing updates the existing binding in place.
type Kind string

const (
	KindText      Kind = "text"
	KindHTML      Kind = "html"
	KindIf        Kind = "if"
	KindClass     Kind = "class"
	KindAttr      Kind = "attr"
	KindStyle     Kind = "style"
	KindFor       Kind = "for"
	KindOn        Kind = "on"
	KindContainer Kind = "container"
	KindValue     Kind = "value"
	KindChecked   Kind = "checked"
	KindScript    Kind = "script"
	KindInterp    Kind = "interp"
)

type condState int

const (
	condShown condState = iota
	condHidden
	condShowing
	condHiding
)

// Binding ties one directive occurrence to its node. It records the
// expression, a snapshot of the context it was last bound under, and
// the per-kind working state needed to re-run without reprocessing the
// whole tree.
type Binding struct {
	Kind       Kind
	Expression string

	ctx *Context

	// conditional
	cond        condState
	animating   bool
	evaluated   bool
	placeholder *html.Node

	// list
	itemName    string
	indexName   string
	sourceExpr  string
	template    *html.Node
	clones      []*html.Node
	fingerprint string
	listMark    *html.Node

	// events; keyed by the event spec ("click.prevent") so re-binding
	// replaces the handler instead of stacking a second one
	handlerIDs map[string]string

	// html / container
	lastMarkup string
	lastPath   string

	// class
	lastClasses []string

	// interpolation
	textTemplate string

	// value / checked writeback registration happens once
	writeback bool

	// cleanupFn releases binding-owned resources that are not child
	// nodes: placeholders, hidden subtrees, script teardowns.
	cleanupFn func()
}

// refresh applies the snapshot rule: a context carrying data always
// replaces the stored one, a context without data only fills an empty
// slot. Re-processing markup without fresh data must not wipe the data
// a binding already renders against.
func (b *Binding) refresh(incoming *Context) {
	if incoming == nil {
		return
	}
	if b.ctx == nil || incoming.HasData() {
		b.ctx = incoming
	}
}

// scope returns the evaluation scope of the snapshotted context.
func (b *Binding) scope() eval.Scope {
	if b.ctx == nil {
		return eval.Scope{}
	}
	return b.ctx.Scope()
}

// nodeState is the engine-side record for one DOM node: its bindings by
// kind and the component that owns it.
type nodeState struct {
	bindings    map[Kind]*Binding
	componentID string
}
