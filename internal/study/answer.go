package study

import (
	"strings"
	"unicode"
)

// Normalize lower-cases s, strips punctuation and symbols and collapses
// whitespace. Letters of any script are kept.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// IsCorrect reports whether submitted matches reference after normalization
func IsCorrect(submitted, reference string) bool {
	return Normalize(submitted) == Normalize(reference)
}
