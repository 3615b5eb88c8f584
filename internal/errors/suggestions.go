package errors

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titler = cases.Title(language.English)

// SuggestDirective returns a human-readable hint for a misspelled directive
// attribute, or an empty string when nothing in the known set is close.
func SuggestDirective(name string, known []string) string {
	name = strings.ToLower(name)

	best := ""
	bestDist := 3 // anything further than two edits is noise
	for _, candidate := range known {
		d := editDistance(name, candidate)
		if d < bestDist {
			bestDist = d
			best = candidate
		}
	}

	if best == "" {
		return ""
	}

	label := titler.String(strings.TrimPrefix(best, "data-"))
	return fmt.Sprintf("unknown directive %q: did you mean %q (%s binding)?", name, best, label)
}

// editDistance computes the Levenshtein distance between two strings.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := 0; j <= len(b); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
