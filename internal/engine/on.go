package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/conneroisu/weft/internal/errors"
	"github.com/conneroisu/weft/internal/events"
	"golang.org/x/net/html"
)

// modifierSet is the parsed dotted-modifier chain of one event spec.
type modifierSet struct {
	prevent bool
	stop    bool
	once    bool
	capture bool
	self    bool
	trusted bool

	ctrl  bool
	shift bool
	alt   bool
	meta  bool

	key    string
	button int
}

var keyNames = map[string]string{
	"enter":  "Enter",
	"esc":    "Escape",
	"escape": "Escape",
	"tab":    "Tab",
	"space":  " ",
	"up":     "ArrowUp",
	"down":   "ArrowDown",
	"left":   "ArrowLeft",
	"right":  "ArrowRight",
	"delete": "Delete",
}

var mouseEvents = map[string]bool{
	"click":       true,
	"dblclick":    true,
	"mousedown":   true,
	"mouseup":     true,
	"contextmenu": true,
}

// parseModifiers classifies each dotted modifier. "left" and "right"
// are pointer buttons on mouse events and arrow keys everywhere else.
func (e *Engine) parseModifiers(ctx context.Context, evType string, mods []string) modifierSet {
	set := modifierSet{button: -1}
	for _, mod := range mods {
		switch mod {
		case "prevent":
			set.prevent = true
		case "stop":
			set.stop = true
		case "once":
			set.once = true
		case "capture":
			set.capture = true
		case "self":
			set.self = true
		case "trusted":
			set.trusted = true
		case "ctrl":
			set.ctrl = true
		case "shift":
			set.shift = true
		case "alt":
			set.alt = true
		case "meta":
			set.meta = true
		default:
			if mouseEvents[evType] {
				switch mod {
				case "left":
					set.button = 0
					continue
				case "middle":
					set.button = 1
					continue
				case "right":
					set.button = 2
					continue
				}
			}
			if key, ok := keyNames[mod]; ok {
				set.key = key
				continue
			}
			e.logger.Warn(ctx, nil, "unknown event modifier", "modifier", mod, "event", evType)
		}
	}
	return set
}

// bindOn registers event handlers from comma-separated
// "event.modifiers:handler(args)" specs. Re-binding the same spec
// replaces the previous registration rather than stacking a second
// handler.
func (e *Engine) bindOn(ctx context.Context, n *html.Node, expr string, rc *Context) {
	if e.broker == nil {
		return
	}
	b := e.ensureBinding(n, KindOn, expr, rc)
	if b.handlerIDs == nil {
		b.handlerIDs = make(map[string]string)
	}

	for _, spec := range splitTop(expr, ',') {
		sep := indexTop(spec, ':')
		if sep < 0 {
			e.report(ctx, errors.ExpressionError(spec, fmt.Errorf("expected event:handler")))
			continue
		}
		evPart := strings.TrimSpace(spec[:sep])
		handlerExpr := strings.TrimSpace(spec[sep+1:])
		parts := strings.Split(evPart, ".")
		evType := parts[0]
		if evType == "" || handlerExpr == "" {
			e.report(ctx, errors.ExpressionError(spec, fmt.Errorf("expected event:handler")))
			continue
		}
		mods := e.parseModifiers(ctx, evType, parts[1:])

		if old, ok := b.handlerIDs[spec]; ok {
			e.broker.Unregister(old)
		}
		spec := spec
		var id string
		listener := func(ev *events.Event) {
			if mods.self && ev.Target != n {
				return
			}
			if mods.trusted && !ev.Trusted {
				return
			}
			if mods.ctrl && !ev.CtrlKey {
				return
			}
			if mods.shift && !ev.ShiftKey {
				return
			}
			if mods.alt && !ev.AltKey {
				return
			}
			if mods.meta && !ev.MetaKey {
				return
			}
			if mods.key != "" && ev.Key != mods.key {
				return
			}
			if mods.button >= 0 && ev.Button != mods.button {
				return
			}
			if mods.prevent {
				ev.PreventDefault()
			}
			if mods.stop {
				ev.StopPropagation()
			}
			if e.invokeHandler(ctx, b, handlerExpr, ev) && mods.once {
				e.broker.Unregister(id)
				delete(b.handlerIDs, spec)
			}
		}
		id = e.broker.Register(n, evType, listener, events.Options{
			Capture:     mods.capture,
			ComponentID: componentOf(rc),
		})
		b.handlerIDs[spec] = id
	}
}

// invokeHandler resolves and calls the named method, looking at the
// context's methods first and the engine's globals second. Arguments
// are evaluated against the binding's scope; the literal $event passes
// the event itself. Returns whether a handler actually ran.
func (e *Engine) invokeHandler(ctx context.Context, b *Binding, expr string, ev *events.Event) bool {
	name, rawArgs, ok := parseCall(expr)
	if !ok {
		e.report(ctx, errors.HandlerError(expr, "handler expression is not a call"))
		return false
	}

	args := make([]interface{}, 0, len(rawArgs))
	for _, raw := range rawArgs {
		if raw == "$event" {
			args = append(args, ev)
			continue
		}
		v, err := e.evaluator.Evaluate(raw, b.scope())
		if err != nil {
			e.report(ctx, errors.ExpressionError(raw, err))
			v = nil
		}
		args = append(args, v)
	}

	if b.ctx != nil {
		if m, ok := b.ctx.Methods[name]; ok && m != nil {
			m(args...)
			return true
		}
	}
	e.mu.Lock()
	g := e.globals[name]
	e.mu.Unlock()
	if g != nil {
		g(args...)
		return true
	}
	e.report(ctx, errors.HandlerError(name, "no handler with this name is registered"))
	return false
}
