package internal

import (
	"strings"
	"unicode"
)

// Slug creates a filesystem-safe stem from a word. Letters, digits, spaces,
// hyphens and underscores are kept, everything else is dropped. Trailing
// whitespace is removed and the remaining spaces become underscores.
//
// Slug is not injective: "cat!" and "cat" share the stem "cat".
func Slug(word string) string {
	var b strings.Builder
	for _, r := range word {
		if isSlugRune(r) {
			b.WriteRune(r)
		}
	}
	kept := strings.TrimRightFunc(b.String(), unicode.IsSpace)
	return strings.ReplaceAll(kept, " ", "_")
}

// SpokenForm turns a slug back into something a speech engine can read.
func SpokenForm(slug string) string {
	return strings.TrimSpace(strings.ReplaceAll(slug, "_", " "))
}

// isSlugRune checks if a rune survives slugging
func isSlugRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) ||
		r == ' ' || r == '-' || r == '_'
}
