package sanitize

import (
	"net/url"
	"regexp"
	"strings"
)

var base64ish = regexp.MustCompile(`^[A-Za-z0-9+/=\s]+$`)

// SanitizeURLAttribute validates and normalizes one URL-bearing attribute
// value. It returns the value to keep and true, or "" and false when the
// value must be dropped.
//
// Rules: dangerous schemes (javascript, vbscript, file, about, and data
// outside data:image/*) are rejected outright; absolute URLs on an allowed
// scheme are normalized through URL parsing; relative URLs are rejected if
// any path segment climbs toward a parent directory.
func (s *Sanitizer) SanitizeURLAttribute(raw string) (string, bool) {
	val := strings.TrimSpace(raw)
	if val == "" {
		return "", false
	}

	// Strip control characters and whitespace that browsers ignore when
	// resolving a scheme ("jav\tascript:" style smuggling).
	compact := strings.Map(func(r rune) rune {
		if r <= 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, val)

	lower := strings.ToLower(compact)

	switch {
	case strings.HasPrefix(lower, "javascript:"),
		strings.HasPrefix(lower, "vbscript:"),
		strings.HasPrefix(lower, "file:"),
		strings.HasPrefix(lower, "about:"):
		return "", false
	case strings.HasPrefix(lower, "data:"):
		if validDataImage(lower) {
			return compact, true
		}
		return "", false
	}

	if idx := strings.Index(compact, ":"); idx >= 0 && !strings.ContainsAny(compact[:idx], "/?#") {
		// Absolute URL with an explicit scheme.
		parsed, err := url.Parse(compact)
		if err != nil {
			return "", false
		}
		if !s.policy.SchemeAllowed(parsed.Scheme) {
			return "", false
		}
		if parsed.Host == "" {
			return "", false
		}
		return parsed.String(), true
	}

	// Relative URL: reject parent-directory traversal segments.
	if hasTraversal(compact) {
		return "", false
	}

	return val, true
}

// validDataImage accepts data:image/* payloads with a basic base64 shape
// check; everything else under data: is rejected.
func validDataImage(lower string) bool {
	rest := strings.TrimPrefix(lower, "data:")
	if !strings.HasPrefix(rest, "image/") {
		return false
	}

	comma := strings.Index(rest, ",")
	if comma < 0 {
		return false
	}

	meta := rest[:comma]
	payload := rest[comma+1:]
	if !strings.Contains(meta, ";base64") {
		return false
	}
	if payload == "" {
		return false
	}
	return base64ish.MatchString(payload)
}

// hasTraversal reports whether any path segment of a relative URL is "..".
func hasTraversal(val string) bool {
	// Cut query and fragment first; traversal only matters in the path.
	if idx := strings.IndexAny(val, "?#"); idx >= 0 {
		val = val[:idx]
	}
	for _, segment := range strings.Split(val, "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}

// sanitizeSrcset validates every candidate URL in a srcset value, keeping
// only the candidates whose URL passes, or dropping the attribute when
// none survive.
func (s *Sanitizer) sanitizeSrcset(raw string) (string, bool) {
	var kept []string
	for _, candidate := range strings.Split(raw, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		parts := strings.Fields(candidate)
		cleanURL, ok := s.SanitizeURLAttribute(parts[0])
		if !ok {
			continue
		}
		parts[0] = cleanURL
		kept = append(kept, strings.Join(parts, " "))
	}
	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, ", "), true
}
