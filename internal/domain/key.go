package domain

import "strings"

// KeyPolicy controls how the natural key (title, company) is compared.
type KeyPolicy struct {
	FoldCase bool
}

// NaturalKey returns the dedup key for a listing. Whitespace runs are collapsed
// and ends trimmed; case is folded only when the policy asks for it.
func (p KeyPolicy) NaturalKey(title, company string) string {
	t := collapse(title)
	c := collapse(company)
	if p.FoldCase {
		t = strings.ToLower(t)
		c = strings.ToLower(c)
	}
	// unit separator keeps ("a b", "c") distinct from ("a", "b c")
	return t + "\x1f" + c
}

func collapse(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return strings.Join(strings.Fields(s), " ")
}
