package domain

import (
	"encoding/json"
	"strings"
)

// TagSet is an insertion-ordered set of non-blank labels. The zero value is an
// empty set ready to use.
type TagSet struct {
	order []string
	index map[string]struct{}
}

// NewTagSet builds a set from tags, dropping blanks and exact duplicates.
func NewTagSet(tags ...string) TagSet {
	var s TagSet
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add inserts tag and reports whether it was new. Blank tags are ignored.
func (s *TagSet) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[tag]; ok {
		return false
	}
	s.index[tag] = struct{}{}
	s.order = append(s.order, tag)
	return true
}

func (s TagSet) Len() int { return len(s.order) }

// Slice returns the tags in insertion order. Never nil.
func (s TagSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

func (s *TagSet) UnmarshalJSON(b []byte) error {
	var xs []string
	if err := json.Unmarshal(b, &xs); err != nil {
		return err
	}
	*s = NewTagSet(xs...)
	return nil
}
