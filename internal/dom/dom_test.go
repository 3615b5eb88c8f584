package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parseOne(t *testing.T, markup string) *html.Node {
	t.Helper()
	nodes, err := ParseFragment(markup)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	return nodes[0]
}

func TestAttrHelpers(t *testing.T) {
	n := parseOne(t, `<div id="a" data-text="user.name"></div>`)

	val, ok := Attr(n, "data-text")
	assert.True(t, ok)
	assert.Equal(t, "user.name", val)

	SetAttr(n, "data-text", "user.email")
	val, _ = Attr(n, "data-text")
	assert.Equal(t, "user.email", val)

	SetAttr(n, "title", "hello")
	assert.True(t, HasAttr(n, "title"))

	RemoveAttr(n, "title")
	assert.False(t, HasAttr(n, "title"))

	_, ok = Attr(n, "missing")
	assert.False(t, ok)
}

func TestClone(t *testing.T) {
	n := parseOne(t, `<ul class="list"><li>one</li><li>two</li></ul>`)
	c := Clone(n)

	require.Nil(t, c.Parent)
	assert.Equal(t, "ul", c.Data)
	assert.Equal(t, "onetwo", Text(c))

	// Mutating the clone must not touch the original.
	SetAttr(c, "class", "copy")
	orig, _ := Attr(n, "class")
	assert.Equal(t, "list", orig)
}

func TestDetachAndReinsert(t *testing.T) {
	parent := parseOne(t, `<div><span>a</span><span>b</span><span>c</span></div>`)
	children := Children(parent)
	require.Len(t, children, 3)
	middle := children[1]

	// Detach the middle child, leave a placeholder in its position.
	placeholder := Comment("weft-if")
	parent.InsertBefore(placeholder, middle)
	Detach(middle)

	got, err := RenderChildren(parent)
	require.NoError(t, err)
	assert.Equal(t, `<span>a</span><!--weft-if--><span>c</span>`, got)

	// Reinsert before the placeholder restores the original order.
	parent.InsertBefore(middle, placeholder)
	Detach(placeholder)
	got, err = RenderChildren(parent)
	require.NoError(t, err)
	assert.Equal(t, `<span>a</span><span>b</span><span>c</span>`, got)
}

func TestDetachIdempotent(t *testing.T) {
	n := parseOne(t, `<p>x</p>`)
	child := n.FirstChild
	Detach(child)
	assert.NotPanics(t, func() { Detach(child) })
}

func TestSetText(t *testing.T) {
	n := parseOne(t, `<span>old</span>`)

	changed := SetText(n, "new")
	assert.True(t, changed)
	assert.Equal(t, "new", Text(n))

	// Same value again is a no-op.
	changed = SetText(n, "new")
	assert.False(t, changed)
}

func TestIsDetached(t *testing.T) {
	doc, err := ParseDocument(`<html><body><div id="x"></div></body></html>`)
	require.NoError(t, err)

	var div *html.Node
	Walk(doc, func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "div" {
			div = n
		}
		return true
	})
	require.NotNil(t, div)
	assert.False(t, IsDetached(div))

	Detach(div)
	assert.True(t, IsDetached(div))

	frag := parseOne(t, `<p>loose</p>`)
	assert.True(t, IsDetached(frag))
}

func TestWalkSkipsChildren(t *testing.T) {
	n := parseOne(t, `<div><section><p>deep</p></section><span>flat</span></div>`)

	var visited []string
	Walk(n, func(node *html.Node) bool {
		if node.Type != html.ElementNode {
			return true
		}
		visited = append(visited, node.Data)
		return node.Data != "section"
	})

	assert.Equal(t, []string{"div", "section", "span"}, visited)
}

func TestClassHelpers(t *testing.T) {
	n := parseOne(t, `<div class="a b"></div>`)

	assert.True(t, HasClass(n, "a"))
	assert.False(t, HasClass(n, "c"))

	AddClass(n, "c")
	assert.True(t, HasClass(n, "c"))

	// Adding an existing class does not duplicate it.
	AddClass(n, "a")
	assert.Equal(t, []string{"a", "b", "c"}, Classes(n))

	RemoveClass(n, "b")
	assert.Equal(t, []string{"a", "c"}, Classes(n))

	RemoveClass(n, "a")
	RemoveClass(n, "c")
	assert.False(t, HasAttr(n, "class"))
}
