// Package terms derives the search terms stored on every post. The same
// functions run for bulk-loaded and interactively authored posts, so a
// document's terms never depend on how it entered the store.
package terms

import (
	"strings"
	"unicode"
)

// MinLength is the shortest run, in runes, kept as a term.
const MinLength = 3

// Tokenize returns the maximal alphanumeric runs of s, lowercased, keeping
// only runs of at least MinLength runes. Order of appearance is preserved and
// duplicates are kept.
func Tokenize(s string) []string {
	var out []string
	start, runes := -1, 0
	for i, r := range s {
		if isAlnum(r) {
			if start < 0 {
				start = i
			}
			runes++
			continue
		}
		if start >= 0 && runes >= MinLength {
			out = append(out, strings.ToLower(s[start:i]))
		}
		start, runes = -1, 0
	}
	// run touching the end of s
	if start >= 0 && runes >= MinLength {
		out = append(out, strings.ToLower(s[start:]))
	}
	return out
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}
