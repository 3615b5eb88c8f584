// Package dom provides helpers over golang.org/x/net/html node trees:
// attribute access, deep cloning, detach/reinsert around comment
// placeholders, and tree walking that is safe to combine with mutation.
//
// The engine treats *html.Node as its live document representation; every
// structural operation it performs routes through this package.
package dom

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attr returns the value of the named attribute and whether it exists.
func Attr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute exists.
func HasAttr(n *html.Node, name string) bool {
	_, ok := Attr(n, name)
	return ok
}

// SetAttr sets or replaces the named attribute.
func SetAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr removes the named attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy of n, detached from any parent.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:     n.Type,
		DataAtom: n.DataAtom,
		Data:     n.Data,
		Attr:     append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Detach unlinks n from its parent and returns the parent it was removed
// from. Detaching an already-detached node is a no-op.
func Detach(n *html.Node) *html.Node {
	parent := n.Parent
	if parent != nil {
		parent.RemoveChild(n)
	}
	return parent
}

// Comment creates a comment node with the given data.
func Comment(data string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: data}
}

// IsDetached reports whether n has no path to a document node. Fragments
// produced by ParseFragment count as detached until inserted.
func IsDetached(n *html.Node) bool {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.DocumentNode {
			return false
		}
	}
	return true
}

// Walk visits n and its descendants in pre-order. The visit function
// returns false to skip a node's children. Walk itself never mutates;
// callers that need to remove nodes must collect them during the walk and
// mutate afterward, since unlinking mid-walk breaks sibling iteration.
func Walk(n *html.Node, visit func(*html.Node) bool) {
	if !visit(n) {
		return
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		Walk(child, visit)
	}
}

// Elements collects every element node in the subtree, in document order.
func Elements(n *html.Node) []*html.Node {
	var out []*html.Node
	Walk(n, func(node *html.Node) bool {
		if node.Type == html.ElementNode {
			out = append(out, node)
		}
		return true
	})
	return out
}

// Children returns a snapshot slice of n's direct children, safe to
// iterate while detaching them.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for _, c := range Children(n) {
		n.RemoveChild(c)
	}
}

// SetText replaces n's children with a single text node. Returns true if
// the rendered text actually changed.
func SetText(n *html.Node, text string) bool {
	if Text(n) == text && n.FirstChild != nil && n.FirstChild == n.LastChild &&
		n.FirstChild.Type == html.TextNode {
		return false
	}
	RemoveChildren(n)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return true
}

// Text collects the concatenated text content of the subtree.
func Text(n *html.Node) string {
	var sb strings.Builder
	Walk(n, func(node *html.Node) bool {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		return true
	})
	return sb.String()
}

// Render serializes the subtree rooted at n back to markup.
func Render(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// RenderChildren serializes only the children of n.
func RenderChildren(n *html.Node) (string, error) {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&sb, c); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

// ParseFragment parses markup in body context and returns the top-level
// nodes, each detached.
func ParseFragment(markup string) ([]*html.Node, error) {
	body := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, err
	}
	return nodes, nil
}

// ParseDocument parses a full document and returns its root.
func ParseDocument(markup string) (*html.Node, error) {
	return html.Parse(strings.NewReader(markup))
}
