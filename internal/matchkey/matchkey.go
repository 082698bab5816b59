// Package matchkey derives the normalized keys used to decide whether
// two notes should reference each other.
package matchkey

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/starford/gebo/internal/models"
)

// stripAccents decomposes to NFKD and removes combining marks, so that
// "Café" and "Cafe" normalize to the same key.
var stripAccents = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize folds a title or keyword into its canonical key form:
// accents stripped, case-folded, spaces and hyphens collapsed to
// underscores, remaining punctuation dropped.
func Normalize(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastSep := true // suppress leading separators
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSep = false
		case r == ' ' || r == '-' || r == '_' || r == '\t':
			if !lastSep {
				b.WriteByte('_')
				lastSep = true
			}
		}
		// Other punctuation is dropped.
	}
	return strings.TrimSuffix(b.String(), "_")
}

// Acronym returns the first letter of each token of the normalized
// title, or "" when the title has fewer than two tokens.
func Acronym(title string) string {
	tokens := strings.Split(Normalize(title), "_")
	if len(tokens) < 2 {
		return ""
	}
	var b strings.Builder
	runes := 0
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		r, _ := utf8.DecodeRuneInString(tok)
		b.WriteRune(r)
		runes++
	}
	if runes < 2 {
		return ""
	}
	return b.String()
}

// Extract derives the full MatchKey set for a note: one title key,
// zero or more keyword keys, and an optional acronym key. Extraction
// never fails; a note that yields no keys simply cannot be matched as
// a target.
func Extract(n *models.Note) []models.MatchKey {
	var keys []models.MatchKey
	seen := make(map[string]struct{})
	add := func(value string, kind models.MatchKind) {
		if value == "" {
			return
		}
		if _, dup := seen[value]; dup {
			return
		}
		seen[value] = struct{}{}
		keys = append(keys, models.MatchKey{Value: value, Kind: kind})
	}

	add(Normalize(n.Title), models.MatchExactTitle)
	for _, kw := range n.Keywords {
		add(Normalize(kw), models.MatchKeyword)
	}
	add(Acronym(n.Title), models.MatchAcronym)

	return keys
}
