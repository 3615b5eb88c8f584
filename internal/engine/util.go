package engine

import (
	"strings"
)

// splitTop splits s on sep, ignoring separators nested inside
// parentheses, brackets, braces, or string literals. Empty segments are
// dropped.
func splitTop(s string, sep byte) []string {
	var (
		parts []string
		depth int
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote && (i == 0 || s[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				if part := strings.TrimSpace(s[start:i]); part != "" {
					parts = append(parts, part)
				}
				start = i + 1
			}
		}
	}
	if part := strings.TrimSpace(s[start:]); part != "" {
		parts = append(parts, part)
	}
	return parts
}

// indexTop finds the first top-level occurrence of sep in s, or -1.
func indexTop(s string, sep byte) int {
	var (
		depth int
		quote byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote && (i == 0 || s[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"', '`':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// parseCall splits a handler expression into a name and its raw
// argument expressions. "save(id, 2)" yields ("save", ["id", "2"]);
// a bare "save" yields ("save", nil). Returns ok=false for anything
// that is not a simple call form.
func parseCall(expr string) (name string, args []string, ok bool) {
	expr = strings.TrimSpace(expr)
	open := strings.IndexByte(expr, '(')
	if open < 0 {
		if expr == "" || !identLike(expr) {
			return "", nil, false
		}
		return expr, nil, true
	}
	if !strings.HasSuffix(expr, ")") {
		return "", nil, false
	}
	name = strings.TrimSpace(expr[:open])
	if name == "" || !identLike(name) {
		return "", nil, false
	}
	inner := expr[open+1 : len(expr)-1]
	return name, splitTop(inner, ','), true
}

func identLike(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_', c == '$':
		case c >= '0' && c <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return len(s) > 0
}

// pathLike reports whether expr is a plain dotted identifier path and
// therefore a valid writeback target for two-way bindings.
func pathLike(expr string) bool {
	for _, seg := range strings.Split(expr, ".") {
		if !identLike(seg) {
			return false
		}
	}
	return true
}

// setPath writes val into state at a dotted path, creating intermediate
// maps as needed. Returns false when an intermediate segment exists but
// is not a map.
func setPath(state map[string]interface{}, path string, val interface{}) bool {
	segs := strings.Split(path, ".")
	cur := state
	for _, seg := range segs[:len(segs)-1] {
		next, ok := cur[seg]
		if !ok {
			m := make(map[string]interface{})
			cur[seg] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]interface{})
		if !ok {
			return false
		}
		cur = m
	}
	cur[segs[len(segs)-1]] = val
	return true
}

// unquote strips a single level of matched quotes from a literal.
func unquote(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1], true
		}
	}
	return s, false
}
