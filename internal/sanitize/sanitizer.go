package sanitize

import (
	"context"
	"strings"

	"golang.org/x/net/html"

	"github.com/conneroisu/weft/internal/dom"
	"github.com/conneroisu/weft/internal/logging"
)

// Sanitizer cleans node subtrees and markup strings against a Policy.
type Sanitizer struct {
	policy *Policy
	logger logging.Logger
}

// New creates a sanitizer. A nil policy gets the restrictive defaults; a
// nil logger discards.
func New(policy *Policy, logger logging.Logger) *Sanitizer {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Sanitizer{
		policy: policy,
		logger: logger.WithComponent("sanitizer"),
	}
}

// attrEdit records an attribute mutation collected during the walk.
type attrEdit struct {
	node   *html.Node
	name   string
	value  string
	remove bool
}

// Clean sanitizes the subtree rooted at n in place. Disallowed elements
// are removed with their children; disallowed attributes are stripped;
// style and URL attribute values are rewritten. All structural mutation is
// deferred until the walk has completed, since unlinking nodes mid-walk
// breaks sibling iteration.
func (s *Sanitizer) Clean(n *html.Node) {
	ctx := context.Background()

	var doomed []*html.Node
	var edits []attrEdit

	dom.Walk(n, func(node *html.Node) bool {
		if node.Type != html.ElementNode {
			return true
		}

		tag := strings.ToLower(node.Data)
		if node != n && !s.policy.TagAllowed(tag) {
			doomed = append(doomed, node)
			s.logger.Warn(ctx, nil, "disallowed tag removed", "tag", tag)
			return false // children go with it, no need to inspect them
		}
		if node == n && !s.policy.TagAllowed(tag) {
			// The root itself cannot be unlinked by us; empty it instead.
			doomed = append(doomed, node)
			return false
		}

		for _, attr := range node.Attr {
			edit, changed := s.checkAttr(ctx, tag, attr)
			if changed {
				edit.node = node
				edits = append(edits, edit)
			}
		}

		return true
	})

	for _, e := range edits {
		if e.remove {
			dom.RemoveAttr(e.node, e.name)
		} else {
			dom.SetAttr(e.node, e.name, e.value)
		}
	}

	for _, node := range doomed {
		if node == n {
			dom.RemoveChildren(node)
			node.Attr = nil
			continue
		}
		dom.Detach(node)
	}
}

// checkAttr decides the fate of one attribute. Returns the edit to apply
// and whether anything needs to change.
func (s *Sanitizer) checkAttr(ctx context.Context, tag string, attr html.Attribute) (attrEdit, bool) {
	name := strings.ToLower(attr.Key)

	if !s.policy.AttrAllowed(tag, name) {
		s.logger.Warn(ctx, nil, "disallowed attribute stripped", "tag", tag, "attr", name)
		return attrEdit{name: attr.Key, remove: true}, true
	}

	if name == "style" {
		cleaned, ok := s.sanitizeStyle(attr.Val)
		if !ok {
			s.logger.Warn(ctx, nil, "style attribute rejected", "tag", tag)
			return attrEdit{name: attr.Key, remove: true}, true
		}
		if cleaned != attr.Val {
			return attrEdit{name: attr.Key, value: cleaned}, true
		}
		return attrEdit{}, false
	}

	if IsURLAttr(name) {
		var cleaned string
		var ok bool
		if name == "srcset" {
			cleaned, ok = s.sanitizeSrcset(attr.Val)
		} else {
			cleaned, ok = s.SanitizeURLAttribute(attr.Val)
		}
		if !ok {
			s.logger.Warn(ctx, nil, "url attribute rejected", "tag", tag, "attr", name)
			return attrEdit{name: attr.Key, remove: true}, true
		}
		if cleaned != attr.Val {
			return attrEdit{name: attr.Key, value: cleaned}, true
		}
	}

	return attrEdit{}, false
}

// CleanString parses markup in body context, sanitizes the resulting
// nodes, and re-serializes them.
func (s *Sanitizer) CleanString(markup string) (string, error) {
	nodes, err := dom.ParseFragment(markup)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, n := range nodes {
		if n.Type == html.ElementNode && !s.policy.TagAllowed(strings.ToLower(n.Data)) {
			s.logger.Warn(context.Background(), nil, "disallowed top-level tag removed", "tag", n.Data)
			continue
		}
		s.Clean(n)
		rendered, err := dom.Render(n)
		if err != nil {
			return "", err
		}
		sb.WriteString(rendered)
	}

	return sb.String(), nil
}
