package timeline

import "strings"

// CleanText trims s and collapses runs of whitespace, including
// non-breaking spaces, into a single space.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeHeader folds a column name for lookup.
func NormalizeHeader(s string) string {
	return strings.ToLower(CleanText(strings.TrimPrefix(s, "\ufeff")))
}
