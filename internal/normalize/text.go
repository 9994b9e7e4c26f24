// Package normalize turns raw strings pulled off a listing page into canonical
// field values. Every function is total: bad input degrades to a fallback.
package normalize

import "strings"

// CleanText replaces NBSP, collapses whitespace runs and trims.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.Join(strings.Fields(s), " ")
	return strings.TrimSpace(s)
}

// Text cleans s and reports whether anything is left.
func Text(s string) (string, bool) {
	s = CleanText(s)
	return s, s != ""
}

// DefaultJobType is used when neither the source nor the config names one.
const DefaultJobType = "Full-time"

// JobType trims text and substitutes def (or DefaultJobType) when it is empty.
// Non-empty values pass through verbatim.
func JobType(text, def string) string {
	if t := CleanText(text); t != "" {
		return t
	}
	if d := CleanText(def); d != "" {
		return d
	}
	return DefaultJobType
}
