package engine

import (
	"context"
	"testing"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func liItems(root *html.Node) []string {
	var out []string
	for _, el := range dom.Elements(root) {
		if el.Data == "li" {
			out = append(out, dom.Text(el))
		}
	}
	return out
}

func TestListStampsClones(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<ul><li data-for="item in items" data-text="item"></li></ul>`)
	rc := NewContext("c1", map[string]interface{}{
		"items": []interface{}{"a", "b", "c"},
	})

	e.Apply(context.Background(), root, rc)
	assert.Equal(t, []string{"a", "b", "c"}, liItems(root))
}

func TestListExposesIndex(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<ul><li data-for="(item, i) in items">{{ i }}:{{ item }}</li></ul>`)
	rc := NewContext("c1", map[string]interface{}{
		"items": []interface{}{"x", "y"},
	})

	e.Apply(context.Background(), root, rc)
	assert.Equal(t, []string{"0:x", "1:y"}, liItems(root))
}

func TestListRestampsOnChange(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<ul><li data-for="item in items" data-text="item"></li></ul>`)
	state := map[string]interface{}{"items": []interface{}{"a"}}
	rc := NewContext("c1", state)

	e.Apply(context.Background(), root, rc)
	require.Equal(t, []string{"a"}, liItems(root))

	state["items"] = []interface{}{"a", "b"}
	rc.Queue.Flush()
	assert.Equal(t, []string{"a", "b"}, liItems(root))

	state["items"] = []interface{}{}
	rc.Queue.Flush()
	assert.Empty(t, liItems(root))
}

func TestListFingerprintShortCircuits(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<ul><li data-for="item in items" data-text="item"></li></ul>`)
	rc := NewContext("c1", map[string]interface{}{
		"items": []interface{}{"a", "b"},
	})

	e.Apply(context.Background(), root, rc)
	var first []*html.Node
	for _, el := range dom.Elements(root) {
		if el.Data == "li" {
			first = append(first, el)
		}
	}
	require.Len(t, first, 2)

	rc.Queue.Flush()
	var second []*html.Node
	for _, el := range dom.Elements(root) {
		if el.Data == "li" {
			second = append(second, el)
		}
	}
	require.Len(t, second, 2)
	assert.Same(t, first[0], second[0])
	assert.Same(t, first[1], second[1])
}

func TestListLoopVariableDoesNotLeak(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<div><li data-for="item in items" data-text="item"></li><span data-text="typeof item"></span></div>`)
	rc := NewContext("c1", map[string]interface{}{
		"items": []interface{}{"a"},
	})

	e.Apply(context.Background(), root, rc)
	var span *html.Node
	for _, el := range dom.Elements(root) {
		if el.Data == "span" {
			span = el
		}
	}
	require.NotNil(t, span)
	assert.Equal(t, "undefined", dom.Text(span))
}

func TestListCleanupReleasesClones(t *testing.T) {
	e := newTestEngine(t)
	root := mount(t, `<ul><li data-for="item in items"><button data-on="click:go"></button></li></ul>`)
	rc := NewContext("c1", map[string]interface{}{
		"items": []interface{}{"a", "b"},
	})
	rc.Methods = map[string]Method{
		"go": func(args ...interface{}) interface{} { return nil },
	}

	e.Apply(context.Background(), root, rc)
	require.Equal(t, 2, e.broker.HandlerCount())

	e.Cleanup(root)
	assert.Equal(t, 0, e.broker.HandlerCount())
	assert.Equal(t, 0, rc.Queue.Len())
}
