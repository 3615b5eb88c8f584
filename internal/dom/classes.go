package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Classes returns the element's class list.
func Classes(n *html.Node) []string {
	val, ok := Attr(n, "class")
	if !ok {
		return nil
	}
	return strings.Fields(val)
}

// HasClass reports whether the element's class list contains name.
func HasClass(n *html.Node, name string) bool {
	for _, c := range Classes(n) {
		if c == name {
			return true
		}
	}
	return false
}

// AddClass adds name to the element's class list if absent.
func AddClass(n *html.Node, name string) {
	if name == "" || HasClass(n, name) {
		return
	}
	classes := append(Classes(n), name)
	SetAttr(n, "class", strings.Join(classes, " "))
}

// RemoveClass removes name from the element's class list. The class
// attribute is dropped entirely when the list becomes empty.
func RemoveClass(n *html.Node, name string) {
	classes := Classes(n)
	out := classes[:0]
	for _, c := range classes {
		if c != name {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		RemoveAttr(n, "class")
		return
	}
	SetAttr(n, "class", strings.Join(out, " "))
}
