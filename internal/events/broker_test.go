package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func element(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag}
}

// tree builds doc > div > button and returns all three.
func tree() (*html.Node, *html.Node, *html.Node) {
	doc := &html.Node{Type: html.DocumentNode}
	div := element("div")
	btn := element("button")
	doc.AppendChild(div)
	div.AppendChild(btn)
	return doc, div, btn
}

func TestRegisterAndDispatch(t *testing.T) {
	b := NewBroker(0, nil)
	_, _, btn := tree()

	var fired int
	id := b.Register(btn, "click", func(ev *Event) { fired++ }, Options{})
	require.NotEmpty(t, id)

	b.Dispatch(&Event{Type: "click", Target: btn})
	assert.Equal(t, 1, fired)

	// Different event type does not fire.
	b.Dispatch(&Event{Type: "keyup", Target: btn})
	assert.Equal(t, 1, fired)
}

func TestUnregister(t *testing.T) {
	b := NewBroker(0, nil)
	_, _, btn := tree()

	var fired int
	id := b.Register(btn, "click", func(ev *Event) { fired++ }, Options{})

	assert.True(t, b.Unregister(id))
	assert.False(t, b.Unregister(id), "second removal reports unknown id")

	b.Dispatch(&Event{Type: "click", Target: btn})
	assert.Zero(t, fired)
	assert.Zero(t, b.HandlerCount())
}

func TestUnregisterAllByComponent(t *testing.T) {
	b := NewBroker(0, nil)
	_, div, btn := tree()

	var fired int
	b.Register(btn, "click", func(ev *Event) { fired++ }, Options{ComponentID: "card"})
	b.Register(div, "click", func(ev *Event) { fired++ }, Options{ComponentID: "card"})
	b.Register(btn, "click", func(ev *Event) { fired++ }, Options{ComponentID: "other"})

	removed := b.UnregisterAll("card")
	assert.Equal(t, 2, removed)

	b.Dispatch(&Event{Type: "click", Target: btn})
	assert.Equal(t, 1, fired, "only the surviving component's handler fires")
}

func TestUnregisterElement(t *testing.T) {
	b := NewBroker(0, nil)
	_, _, btn := tree()

	b.Register(btn, "click", func(ev *Event) {}, Options{})
	b.Register(btn, "keyup", func(ev *Event) {}, Options{})

	assert.Equal(t, 2, b.UnregisterElement(btn))
	assert.Zero(t, b.HandlerCount())
}

func TestBubbleOrder(t *testing.T) {
	b := NewBroker(0, nil)
	_, div, btn := tree()

	var order []string
	b.Register(div, "click", func(ev *Event) { order = append(order, "div") }, Options{})
	b.Register(btn, "click", func(ev *Event) { order = append(order, "btn") }, Options{})

	b.Dispatch(&Event{Type: "click", Target: btn})
	assert.Equal(t, []string{"btn", "div"}, order, "bubble runs target first, then ancestors")
}

func TestCapturePhaseRunsFirst(t *testing.T) {
	b := NewBroker(0, nil)
	_, div, btn := tree()

	var order []string
	b.Register(div, "click", func(ev *Event) { order = append(order, "div-capture") }, Options{Capture: true})
	b.Register(div, "click", func(ev *Event) { order = append(order, "div-bubble") }, Options{})
	b.Register(btn, "click", func(ev *Event) { order = append(order, "btn") }, Options{})

	b.Dispatch(&Event{Type: "click", Target: btn})
	assert.Equal(t, []string{"div-capture", "btn", "div-bubble"}, order)
}

func TestStopPropagation(t *testing.T) {
	b := NewBroker(0, nil)
	_, div, btn := tree()

	var divFired bool
	b.Register(btn, "click", func(ev *Event) { ev.StopPropagation() }, Options{})
	b.Register(div, "click", func(ev *Event) { divFired = true }, Options{})

	b.Dispatch(&Event{Type: "click", Target: btn})
	assert.False(t, divFired)
}

func TestListenerMaySelfUnregister(t *testing.T) {
	b := NewBroker(0, nil)
	_, _, btn := tree()

	var fired int
	var id string
	id = b.Register(btn, "click", func(ev *Event) {
		fired++
		b.Unregister(id)
	}, Options{})

	b.Dispatch(&Event{Type: "click", Target: btn})
	b.Dispatch(&Event{Type: "click", Target: btn})
	assert.Equal(t, 1, fired)
}

func TestThrottle(t *testing.T) {
	b := NewBroker(100*time.Millisecond, nil)
	_, _, btn := tree()

	now := time.Unix(1000, 0)
	b.clock = func() time.Time { return now }

	var fired int
	b.Register(btn, "click", func(ev *Event) { fired++ }, Options{})

	b.Dispatch(&Event{Type: "click", Target: btn})
	b.Dispatch(&Event{Type: "click", Target: btn}) // inside the interval
	assert.Equal(t, 1, fired)

	now = now.Add(150 * time.Millisecond)
	b.Dispatch(&Event{Type: "click", Target: btn})
	assert.Equal(t, 2, fired)
}

func TestThrottleIsPerNodeAndType(t *testing.T) {
	b := NewBroker(time.Hour, nil)
	_, div, btn := tree()

	var btnFired, divFired, keyFired int
	b.Register(btn, "click", func(ev *Event) { btnFired++ }, Options{})
	b.Register(div, "click", func(ev *Event) { divFired++ }, Options{})
	b.Register(btn, "keyup", func(ev *Event) { keyFired++ }, Options{})

	b.Dispatch(&Event{Type: "click", Target: btn})
	b.Dispatch(&Event{Type: "click", Target: div}) // different node, own budget
	b.Dispatch(&Event{Type: "keyup", Target: btn}) // different type, own budget

	assert.Equal(t, 1, btnFired)
	// The div handler also fired during the button click's bubble, so the
	// direct dispatch to div was its node's first click.
	assert.Equal(t, 2, divFired)
	assert.Equal(t, 1, keyFired)
}

func TestPreventDefaultFlag(t *testing.T) {
	ev := &Event{Type: "submit", Target: element("form")}
	assert.False(t, ev.DefaultPrevented())
	ev.PreventDefault()
	assert.True(t, ev.DefaultPrevented())
}
