package sanitize

import (
	"regexp"
	"strings"
)

var styleURLRef = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// CleanStyle filters a raw inline-style value against the policy. Used by
// the style directive for values it assembles at render time, so that
// bound styles obey the same policy as static markup.
func (s *Sanitizer) CleanStyle(raw string) (string, bool) {
	return s.sanitizeStyle(raw)
}

// sanitizeStyle parses an inline style value into declarations, filters
// the properties against the allow-list, and independently validates any
// url(...) reference inside a value. A declaration whose url() reference
// fails validation is dropped whole. Returns the rebuilt style string and
// false when nothing survives.
func (s *Sanitizer) sanitizeStyle(raw string) (string, bool) {
	var kept []string

	for _, decl := range strings.Split(raw, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}

		colon := strings.Index(decl, ":")
		if colon < 0 {
			continue
		}

		prop := strings.ToLower(strings.TrimSpace(decl[:colon]))
		value := strings.TrimSpace(decl[colon+1:])
		if prop == "" || value == "" {
			continue
		}

		if !s.policy.StylePropAllowed(prop) {
			continue
		}

		if !s.styleValueSafe(value) {
			continue
		}

		kept = append(kept, prop+": "+value)
	}

	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, "; "), true
}

// styleValueSafe validates every url(...) reference inside a declaration
// value: http/https absolute, data:image/* with base64 shape, or a
// traversal-free relative path. Expression-style values are rejected.
func (s *Sanitizer) styleValueSafe(value string) bool {
	lower := strings.ToLower(value)
	if strings.Contains(lower, "expression(") || strings.Contains(lower, "javascript:") {
		return false
	}

	for _, match := range styleURLRef.FindAllStringSubmatch(value, -1) {
		ref := strings.TrimSpace(match[1])
		refLower := strings.ToLower(ref)

		switch {
		case strings.HasPrefix(refLower, "http://"), strings.HasPrefix(refLower, "https://"):
			// fine
		case strings.HasPrefix(refLower, "data:"):
			if !validDataImage(refLower) {
				return false
			}
		case strings.Contains(refLower, ":"):
			// any other scheme
			return false
		default:
			if hasTraversal(ref) {
				return false
			}
		}
	}

	return true
}
