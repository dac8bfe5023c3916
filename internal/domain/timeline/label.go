package timeline

import "strings"

// Ellipsis marks a truncated label.
const Ellipsis = "..."

// Label derives the axis label for id: lower-cased, and cut to at most max
// runes with Ellipsis replacing the tail. Applying Label to its own output
// returns it unchanged.
func Label(id string, max int) string {
	l := strings.ToLower(id)
	r := []rune(l)
	if len(r) <= max {
		return l
	}
	if max <= len(Ellipsis) {
		return string(r[:max])
	}
	return string(r[:max-len(Ellipsis)]) + Ellipsis
}
