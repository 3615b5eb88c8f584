//go:build property
// +build property

package sanitize

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSanitizerProperties tests the universal guarantees of the sanitizer.
func TestSanitizerProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)
	s := New(nil, nil)

	// Property: every javascript: URL is rejected, for every URL-bearing
	// attribute family, regardless of payload.
	properties.Property("javascript scheme always rejected", prop.ForAll(
		func(payload string) bool {
			_, ok := s.SanitizeURLAttribute("javascript:" + payload)
			return !ok
		},
		gen.AnyString(),
	))

	// Property: case and leading whitespace never smuggle a scheme past
	// the check.
	properties.Property("scheme check is case and whitespace insensitive", prop.ForAll(
		func(upper bool, pad string) bool {
			scheme := "javascript:"
			if upper {
				scheme = "JaVaScRiPt:"
			}
			if strings.ContainsAny(pad, ":") {
				return true // padding with a colon changes the scheme itself
			}
			_, ok := s.SanitizeURLAttribute("  " + scheme + pad)
			return !ok
		},
		gen.Bool(),
		gen.AlphaString(),
	))

	// Property: the cleaned output of a template containing a script tag
	// never contains a script element, wherever the tag was nested.
	properties.Property("script tags never survive", prop.ForAll(
		func(prefix, inner, suffix string) bool {
			markup := "<div>" + prefix + "<script>" + inner + "</script>" + suffix + "</div>"
			out, err := s.CleanString(markup)
			if err != nil {
				return false
			}
			return !strings.Contains(out, "<script")
		},
		gen.AlphaString(),
		gen.AlphaString(),
		gen.AlphaString(),
	))

	// Property: sanitization is idempotent on its own output.
	properties.Property("clean is idempotent", prop.ForAll(
		func(text string) bool {
			markup := `<div onclick="x" style="color: red; behavior: y">` + text + `</div>`
			once, err := s.CleanString(markup)
			if err != nil {
				return false
			}
			twice, err := s.CleanString(once)
			if err != nil {
				return false
			}
			return once == twice
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
