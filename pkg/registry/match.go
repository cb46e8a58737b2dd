// pkg/registry/match.go
package registry

import (
	"strings"
	"unicode"
)

// Text is a query prepared for keyword lookups.
type Text struct {
	lower string
	words map[string]struct{}
	order []string
}

// NewText lower-cases s and splits it into words. Letters, digits and
// combining marks (Devanagari vowel signs) are word runes.
func NewText(s string) *Text {
	lower := strings.ToLower(s)
	t := &Text{lower: lower, words: make(map[string]struct{})}
	for _, w := range strings.FieldsFunc(lower, isSeparator) {
		if _, seen := t.words[w]; !seen {
			t.order = append(t.order, w)
		}
		t.words[w] = struct{}{}
	}
	return t
}

func isSeparator(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r))
}

// Words returns the distinct words in first-seen order.
func (t *Text) Words() []string {
	return t.order
}

// Contains reports whether keyword occurs in the text. Plain ASCII
// words match whole query words, tolerating a plural "s"/"es". Phrases and
// non-ASCII keywords match as substrings.
func (t *Text) Contains(keyword string) bool {
	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return false
	}
	if !isPlainWord(kw) {
		return strings.Contains(t.lower, kw)
	}
	for _, candidate := range []string{kw, kw + "s", kw + "es"} {
		if _, ok := t.words[candidate]; ok {
			return true
		}
	}
	return false
}

// FirstMatch returns the first keyword of set found in the text.
func (t *Text) FirstMatch(set []string) (string, bool) {
	for _, kw := range set {
		if t.Contains(kw) {
			return kw, true
		}
	}
	return "", false
}

func isPlainWord(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
