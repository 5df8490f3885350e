package core

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeCategory canonicalizes a category label for grouping: trimmed,
// lower-cased and stripped of combining marks ("Farmácia " -> "farmacia").
// It never fails and NormalizeCategory(NormalizeCategory(x)) == NormalizeCategory(x).
func NormalizeCategory(category string) string {
	s := strings.ToLower(strings.TrimSpace(category))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	// Removing a mark can expose whitespace at either end.
	return strings.TrimSpace(out)
}

// TitleCase upper-cases the first letter of every run of letters and
// lower-cases the rest ("mercado LIVRE" -> "Mercado Livre").
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inWord := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if inWord {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			inWord = true
			continue
		}
		inWord = false
		b.WriteRune(r)
	}
	return b.String()
}
