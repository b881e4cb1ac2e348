package ledgerimport

import (
	"sort"
	"strings"
	"unicode/utf8"

	"tesoreria/internal/core"
)

// Classifier maps free text to the most specific catalog entry.
//
// Entries are tried longest normalized name first, so with "OFRENDAS" and
// "OFRENDAS MISIONERAS" in the catalog the text "ofrendas misioneras (campamento)"
// always lands on the longer one.
type Classifier struct {
	entries []classifierEntry
}

type classifierEntry struct {
	key  string
	size int
	mt   core.MovementType
}

// NewClassifier precomputes the normalized, length-ordered lookup table.
// Entries whose name normalizes to "" are ignored.
func NewClassifier(types []core.MovementType) *Classifier {
	entries := make([]classifierEntry, 0, len(types))
	for _, mt := range types {
		key := Normalize(mt.Name)
		if key == "" {
			continue
		}
		entries = append(entries, classifierEntry{key: key, size: utf8.RuneCountInString(key), mt: mt})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].size > entries[j].size
	})
	return &Classifier{entries: entries}
}

// Classify returns the longest catalog entry contained in text.
func (c *Classifier) Classify(text string) (core.MovementType, bool) {
	s := Normalize(text)
	if s == "" {
		return core.MovementType{}, false
	}
	for _, e := range c.entries {
		if strings.Contains(s, e.key) {
			return e.mt, true
		}
	}
	return core.MovementType{}, false
}

// Classify is a one-shot helper around NewClassifier.
func Classify(text string, types []core.MovementType) (core.MovementType, bool) {
	return NewClassifier(types).Classify(text)
}
