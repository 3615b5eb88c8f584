// Package sanitize implements the allow-list markup sanitizer.
//
// The sanitizer removes any tag not on the allow-list (with its whole
// subtree), strips attributes not covered by the global or per-tag lists,
// filters inline style declarations against a property allow-list, and
// validates URL-bearing attribute values against scheme and traversal
// rules. Rejections are dropped from the output and logged; they never
// surface as hard failures.
package sanitize

import (
	"strings"

	"github.com/conneroisu/weft/internal/config"
)

// Policy carries the allow-lists the sanitizer enforces. Anything not
// explicitly listed is denied.
type Policy struct {
	tags        map[string]bool
	globalAttrs []string // exact names or wildcard families like "data-*"
	tagAttrs    map[string]map[string]bool
	styleProps  map[string]bool
	urlSchemes  map[string]bool
}

// urlAttrs lists the attribute names whose values carry URLs and therefore
// go through scheme validation regardless of which tag they sit on.
var urlAttrs = map[string]bool{
	"href":       true,
	"src":        true,
	"srcset":     false, // handled per candidate, see sanitizeSrcset
	"action":     true,
	"formaction": true,
	"poster":     true,
	"cite":       true,
}

// NewPolicy builds a Policy from the security configuration.
func NewPolicy(sec config.SecurityConfig) *Policy {
	p := &Policy{
		tags:        make(map[string]bool, len(sec.AllowedTags)),
		globalAttrs: make([]string, 0, len(sec.GlobalAttributes)),
		tagAttrs:    make(map[string]map[string]bool, len(sec.TagAttributes)),
		styleProps:  make(map[string]bool, len(sec.StyleProperties)),
		urlSchemes:  make(map[string]bool, len(sec.URLSchemes)),
	}

	for _, tag := range sec.AllowedTags {
		p.tags[strings.ToLower(tag)] = true
	}
	for _, attr := range sec.GlobalAttributes {
		p.globalAttrs = append(p.globalAttrs, strings.ToLower(attr))
	}
	for tag, attrs := range sec.TagAttributes {
		set := make(map[string]bool, len(attrs))
		for _, a := range attrs {
			set[strings.ToLower(a)] = true
		}
		p.tagAttrs[strings.ToLower(tag)] = set
	}
	for _, prop := range sec.StyleProperties {
		p.styleProps[strings.ToLower(prop)] = true
	}
	for _, scheme := range sec.URLSchemes {
		p.urlSchemes[strings.ToLower(scheme)] = true
	}

	return p
}

// DefaultPolicy returns the policy built from the restrictive defaults.
func DefaultPolicy() *Policy {
	return NewPolicy(config.Defaults().Security)
}

// TagAllowed reports whether the tag survives sanitization.
func (p *Policy) TagAllowed(tag string) bool {
	return p.tags[strings.ToLower(tag)]
}

// AttrAllowed reports whether the attribute survives on the given tag:
// the global allow-list (with wildcard families) unioned with the
// per-tag list.
func (p *Policy) AttrAllowed(tag, attr string) bool {
	attr = strings.ToLower(attr)

	for _, pattern := range p.globalAttrs {
		if pattern == attr {
			return true
		}
		if strings.HasSuffix(pattern, "*") &&
			strings.HasPrefix(attr, strings.TrimSuffix(pattern, "*")) {
			return true
		}
	}

	if perTag, ok := p.tagAttrs[strings.ToLower(tag)]; ok && perTag[attr] {
		return true
	}

	return false
}

// StylePropAllowed reports whether the inline-style property survives.
func (p *Policy) StylePropAllowed(prop string) bool {
	return p.styleProps[strings.ToLower(prop)]
}

// SchemeAllowed reports whether an absolute URL scheme is acceptable.
func (p *Policy) SchemeAllowed(scheme string) bool {
	return p.urlSchemes[strings.ToLower(scheme)]
}

// IsURLAttr reports whether the attribute's value carries a URL.
func IsURLAttr(name string) bool {
	name = strings.ToLower(name)
	if name == "srcset" {
		return true
	}
	v, ok := urlAttrs[name]
	return ok && v
}
