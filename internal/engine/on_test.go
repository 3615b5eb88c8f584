package engine

import (
	"context"
	"testing"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/errors"
	"github.com/conneroisu/weft/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnDirectiveInvokesMethodWithArgs(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<button data-on="click.prevent:save(id)"></button>`)
	var got []interface{}
	rc := NewContext("c1", map[string]interface{}{"id": 42})
	rc.Methods = map[string]Method{
		"save": func(args ...interface{}) interface{} {
			got = args
			return nil
		},
	}

	e.Apply(context.Background(), root, rc)
	ev := &events.Event{Type: "click", Target: firstElement(t, root)}
	e.broker.Dispatch(ev)

	require.Len(t, got, 1)
	assert.Equal(t, int64(42), got[0])
	assert.True(t, ev.DefaultPrevented())
}

func TestOnDirectiveFallsBackToGlobals(t *testing.T) {
	e := newTestEngine(t)
	called := false
	e.RegisterGlobal("ping", func(args ...interface{}) interface{} {
		called = true
		return nil
	})
	root := mount(t, `<button data-on="click:ping"></button>`)
	rc := NewContext("c1", nil)

	e.Apply(context.Background(), root, rc)
	e.broker.Dispatch(&events.Event{Type: "click", Target: firstElement(t, root)})
	assert.True(t, called)
}

func TestOnDirectiveUnknownHandlerReported(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<button data-on="click:nothing"></button>`)
	rc := NewContext("c1", nil)

	e.Apply(context.Background(), root, rc)
	e.broker.Dispatch(&events.Event{Type: "click", Target: firstElement(t, root)})
	assert.NotEmpty(t, e.Collector().ByType(errors.ErrorTypeHandler))
}

func TestOnDirectiveEventArgument(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<button data-on="click:log($event)"></button>`)
	var got interface{}
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"log": func(args ...interface{}) interface{} {
			got = args[0]
			return nil
		},
	}

	e.Apply(context.Background(), root, rc)
	ev := &events.Event{Type: "click", Target: firstElement(t, root)}
	e.broker.Dispatch(ev)
	assert.Same(t, ev, got)
}

func TestOnceModifier(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<button data-on="click.once:go"></button>`)
	count := 0
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"go": func(args ...interface{}) interface{} { count++; return nil },
	}

	e.Apply(context.Background(), root, rc)
	n := firstElement(t, root)
	e.broker.Dispatch(&events.Event{Type: "click", Target: n})
	e.broker.Dispatch(&events.Event{Type: "click", Target: n})
	assert.Equal(t, 1, count)
	assert.Equal(t, 0, e.broker.HandlerCount())
}

func TestKeyModifier(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<input data-on="keyup.enter:submit">`)
	count := 0
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"submit": func(args ...interface{}) interface{} { count++; return nil },
	}

	e.Apply(context.Background(), root, rc)
	n := firstElement(t, root)
	e.broker.Dispatch(&events.Event{Type: "keyup", Target: n, Key: "a"})
	assert.Equal(t, 0, count)
	e.broker.Dispatch(&events.Event{Type: "keyup", Target: n, Key: "Enter"})
	assert.Equal(t, 1, count)
}

func TestButtonAndModifierKeyGuards(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<div data-on="click.right:menu, click.ctrl:pick"></div>`)
	var calls []string
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"menu": func(args ...interface{}) interface{} { calls = append(calls, "menu"); return nil },
		"pick": func(args ...interface{}) interface{} { calls = append(calls, "pick"); return nil },
	}

	e.Apply(context.Background(), root, rc)
	n := firstElement(t, root)
	e.broker.Dispatch(&events.Event{Type: "click", Target: n, Button: 2})
	assert.Equal(t, []string{"menu"}, calls)

	e.broker.Dispatch(&events.Event{Type: "click", Target: n, Button: 0, CtrlKey: true})
	assert.Equal(t, []string{"menu", "pick"}, calls)
}

func TestSelfModifier(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<div data-on="click.self:go"><button></button></div>`)
	count := 0
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"go": func(args ...interface{}) interface{} { count++; return nil },
	}

	e.Apply(context.Background(), root, rc)
	outer := firstElement(t, root)
	inner := dom.Elements(outer)[1]

	e.broker.Dispatch(&events.Event{Type: "click", Target: inner})
	assert.Equal(t, 0, count)
	e.broker.Dispatch(&events.Event{Type: "click", Target: outer})
	assert.Equal(t, 1, count)
}

func TestTrustedModifier(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<button data-on="click.trusted:go"></button>`)
	count := 0
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"go": func(args ...interface{}) interface{} { count++; return nil },
	}

	e.Apply(context.Background(), root, rc)
	n := firstElement(t, root)
	e.broker.Dispatch(&events.Event{Type: "click", Target: n})
	assert.Equal(t, 0, count)
	e.broker.Dispatch(&events.Event{Type: "click", Target: n, Trusted: true})
	assert.Equal(t, 1, count)
}

func TestReapplyReplacesHandler(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<button data-on="click:go"></button>`)
	count := 0
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"go": func(args ...interface{}) interface{} { count++; return nil },
	}

	e.Apply(context.Background(), root, rc)
	e.Apply(context.Background(), root, rc)
	require.Equal(t, 1, e.broker.HandlerCount())

	e.broker.Dispatch(&events.Event{Type: "click", Target: firstElement(t, root)})
	assert.Equal(t, 1, count)
}

func TestStopModifierHaltsBubbling(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<div data-on="click:outer"><button data-on="click.stop:inner"></button></div>`)
	var calls []string
	rc := NewContext("c1", nil)
	rc.Methods = map[string]Method{
		"outer": func(args ...interface{}) interface{} { calls = append(calls, "outer"); return nil },
		"inner": func(args ...interface{}) interface{} { calls = append(calls, "inner"); return nil },
	}

	e.Apply(context.Background(), root, rc)
	btn := dom.Elements(firstElement(t, root))[1]
	e.broker.Dispatch(&events.Event{Type: "click", Target: btn})
	assert.Equal(t, []string{"inner"}, calls)
}
