// Package stringutil holds small text helpers for terminal output.
package stringutil

import "strings"

// Ellipsis flattens s onto one line and shortens it to at most maxRunes
// runes, ending in "…" when it was cut. Tool descriptions are often
// multi-line and may contain non-ASCII text, so lengths count runes.
func Ellipsis(s string, maxRunes int) string {
	s = strings.Join(strings.Fields(s), " ")

	if maxRunes <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	if maxRunes == 1 {
		return "…"
	}
	return string(r[:maxRunes-1]) + "…"
}
