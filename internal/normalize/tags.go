package normalize

import "strings"

// Tags trims each entry, drops empties and removes duplicates keeping the
// first-seen spelling. With fold, "Life" and "life" are the same tag.
func Tags(raw []string, fold bool) []string {
	seen := make(map[string]bool, len(raw))
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = CleanText(t)
		if t == "" {
			continue
		}
		key := t
		if fold {
			key = strings.ToLower(t)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

var tagSeparators = []string{";", "|", "·", "•", "\n"}

// SplitTags breaks one delimited tag string into entries.
func SplitTags(text string) []string {
	for _, sep := range tagSeparators {
		text = strings.ReplaceAll(text, sep, ",")
	}
	return strings.Split(text, ",")
}
