package engine

import (
	"context"
	"testing"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestCleanupReleasesHandlersAndQueue(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<div><span data-text="n"></span><button data-on="click:go"></button></div>`)
	rc := NewContext("c1", map[string]interface{}{"n": 1})
	rc.Methods = map[string]Method{
		"go": func(args ...interface{}) interface{} { return nil },
	}

	e.Apply(context.Background(), root, rc)
	require.Equal(t, 1, e.broker.HandlerCount())
	require.Equal(t, 1, rc.Queue.Len())

	e.Cleanup(root)
	assert.Equal(t, 0, e.broker.HandlerCount())
	assert.Equal(t, 0, rc.Queue.Len())
}

func TestCleanupIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<span data-text="n"></span>`)
	rc := NewContext("c1", map[string]interface{}{"n": 1})

	e.Apply(context.Background(), root, rc)
	e.Cleanup(root)
	e.Cleanup(root)
	assert.Equal(t, 0, rc.Queue.Len())
}

func TestCleanupWorksOnDetachedSubtree(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<div><button data-on="click:go"></button></div>`)
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"go": func(args ...interface{}) interface{} { return nil },
	}

	e.Apply(context.Background(), root, rc)
	inner := firstElement(t, root)
	dom.Detach(inner)
	e.Cleanup(inner)
	assert.Equal(t, 0, e.broker.HandlerCount())
}

type recordingEnhancer struct {
	scans    int
	released []*html.Node
}

func (r *recordingEnhancer) Scan(root *html.Node) { r.scans++ }
func (r *recordingEnhancer) Release(n *html.Node) { r.released = append(r.released, n) }

func TestEnhancerScanAndRelease(t *testing.T) {
	enh := &recordingEnhancer{}
	e := newTestEngine(t)
	e.enhancer = enh

	root := mount(t, `<div><span data-text="n"></span></div>`)
	rc := NewContext("c1", map[string]interface{}{"n": 1})

	e.Apply(context.Background(), root, rc)
	require.Equal(t, 1, enh.scans)

	e.Cleanup(root)
	assert.NotEmpty(t, enh.released)
}

func TestEnhancerScanSkippedWhenDetached(t *testing.T) {
	enh := &recordingEnhancer{}
	e := newTestEngine(t)
	e.enhancer = enh

	nodes, err := dom.ParseFragment(`<span data-text="n"></span>`)
	require.NoError(t, err)
	rc := NewContext("c1", map[string]interface{}{"n": 1})

	e.Apply(context.Background(), nodes[0], rc)
	assert.Equal(t, 0, enh.scans)
}

func TestScriptDirectiveLifecycle(t *testing.T) {
	e := newTestEngine(t)
	started, stopped := 0, 0
	e.RegisterScript("widget", func(n *html.Node, state map[string]interface{}) func() {
		started++
		return func() { stopped++ }
	})

	root := mount(t, `<div data-script="widget"></div>`)
	rc := NewContext("c1", nil)

	e.Apply(context.Background(), root, rc)
	require.Equal(t, 1, started)

	// re-applying the same script is a no-op
	e.Apply(context.Background(), root, rc)
	require.Equal(t, 1, started)

	e.Cleanup(root)
	assert.Equal(t, 1, stopped)
}

func TestBeforeNavigateTearsDownScripts(t *testing.T) {
	e := newTestEngine(t)
	stopped := 0
	e.RegisterScript("widget", func(n *html.Node, state map[string]interface{}) func() {
		return func() { stopped++ }
	})

	root := mount(t, `<div data-script="widget"></div><p data-script="widget"></p>`)
	rc := NewContext("c1", nil)

	e.Apply(context.Background(), root, rc)
	e.BeforeNavigate()
	assert.Equal(t, 2, stopped)

	// idempotent
	e.BeforeNavigate()
	assert.Equal(t, 2, stopped)
}

type stubLoader struct {
	markup string
	calls  int
	paths  []string
}

func (l *stubLoader) Load(ctx context.Context, path string) (string, error) {
	l.calls++
	l.paths = append(l.paths, path)
	return l.markup, nil
}

func TestContainerDirectiveMountsTemplate(t *testing.T) {
	loader := &stubLoader{markup: `<h1 data-text="title"></h1>`}
	e := newTestEngine(t)
	e.loader = loader

	root := mount(t, `<main data-container="/page.html"></main>`)
	rc := NewContext("c1", map[string]interface{}{"title": "Home"})

	e.Apply(context.Background(), root, rc)
	assert.Equal(t, []string{"/page.html"}, loader.paths)
	assert.Contains(t, render(t, root), ">Home</h1>")

	// same path, no reload
	rc.Queue.Flush()
	assert.Equal(t, 1, loader.calls)
}

func TestContainerDirectiveSwitchesOnState(t *testing.T) {
	loader := &stubLoader{markup: `<p>page</p>`}
	e := newTestEngine(t)
	e.loader = loader

	root := mount(t, `<main data-container="'/' + page + '.html'"></main>`)
	state := map[string]interface{}{"page": "one"}
	rc := NewContext("c1", state)

	e.Apply(context.Background(), root, rc)
	require.Equal(t, []string{"/one.html"}, loader.paths)

	state["page"] = "two"
	rc.Queue.Flush()
	assert.Equal(t, []string{"/one.html", "/two.html"}, loader.paths)
}

func TestRenderSignalPublished(t *testing.T) {
	bus := notify.NewBus()
	ch := bus.Subscribe()
	defer bus.Unsubscribe(ch)

	e := newTestEngine(t)
	e.bus = bus

	root := mount(t, `<span data-text="n"></span>`)
	e.Apply(context.Background(), root, NewContext("c1", map[string]interface{}{"n": 1}))

	select {
	case n := <-ch:
		assert.Equal(t, notify.SignalRenderPerformed, n.Signal)
	default:
		t.Fatal("no notification published")
	}
}
