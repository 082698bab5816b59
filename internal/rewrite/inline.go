package rewrite

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// Target is a note another note's prose may be linked to.
type Target struct {
	Stem    string // link target (filename without extension)
	Title   string // display title matched in prose
	Acronym string // upper-cased initials, empty when not applicable
}

// Linkifier replaces occurrences of other notes' titles (and their
// acronyms) in prose with wikilinks, longest title first, preferring
// [[Stem]] when the occurrence already equals the stem and
// [[Stem|occurrence]] otherwise. A trailing plural "s" stays outside
// the link: "Vectors" becomes "[[Vector]]s".
type Linkifier struct {
	titles   []inlinePattern
	acronyms []inlinePattern
}

type inlinePattern struct {
	re   *regexp.Regexp
	stem string
}

var wikilinkSpanRe = regexp.MustCompile(`\[\[[^\]]*\]\]`)

// NewLinkifier compiles patterns for the given targets, excluding
// selfStem so a note never links to itself. Acronyms shorter than
// acronymMinLength are not matched.
func NewLinkifier(targets []Target, selfStem string, acronymMinLength int) *Linkifier {
	l := &Linkifier{}

	var titled []Target
	for _, t := range targets {
		if t.Stem == "" || strings.EqualFold(t.Stem, selfStem) {
			continue
		}
		titled = append(titled, t)
	}
	// Longest title first so "Deep Learning Basics" wins over "Deep Learning".
	sort.SliceStable(titled, func(i, j int) bool {
		return len(titled[i].Title) > len(titled[j].Title)
	})

	for _, t := range titled {
		if t.Title != "" {
			// No optional plural for titles already ending in "s":
			// "Basics" in prose must not match a "Basicss" typo.
			suffix := `s?\b`
			if strings.HasSuffix(strings.ToLower(t.Title), "s") {
				suffix = `\b`
			}
			re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(t.Title) + suffix)
			l.titles = append(l.titles, inlinePattern{re: re, stem: t.Stem})
		}
		if utf8.RuneCountInString(t.Acronym) >= acronymMinLength && acronymMinLength > 0 {
			// Acronyms match case-sensitively: "dl" in prose is not "DL".
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(strings.ToUpper(t.Acronym)) + `\b`)
			l.acronyms = append(l.acronyms, inlinePattern{re: re, stem: t.Stem})
		}
	}
	return l
}

// Apply rewrites body, returning the new text and whether it changed.
// Fenced code, inline code, math, and existing wikilinks are preserved.
func (l *Linkifier) Apply(body string) (string, bool) {
	segs := Split(body)
	changed := false
	for i := range segs {
		if segs[i].Protected {
			continue
		}
		out := l.linkifyProse(segs[i].Text)
		if out != segs[i].Text {
			segs[i].Text = out
			changed = true
		}
	}
	if !changed {
		return body, false
	}
	return Join(segs), true
}

// linkifyProse applies every pattern to text, re-protecting wikilink
// spans created by earlier patterns between passes.
func (l *Linkifier) linkifyProse(text string) string {
	for _, p := range l.titles {
		text = replaceOutsideLinks(text, p.re, func(occ string) string {
			return linkFor(p.stem, occ)
		})
	}
	for _, p := range l.acronyms {
		text = replaceOutsideLinks(text, p.re, func(occ string) string {
			return "[[" + p.stem + "|" + occ + "]]"
		})
	}
	return text
}

// linkFor builds the wikilink for an occurrence of stem's title,
// keeping a plural "s" outside the brackets and aliasing when the
// occurrence text differs from the stem.
func linkFor(stem, occ string) string {
	base := occ
	if strings.HasSuffix(strings.ToLower(occ), "s") && strings.EqualFold(occ[:len(occ)-1], stem) {
		return "[[" + occ[:len(occ)-1] + "]]" + occ[len(occ)-1:]
	}
	if base == stem {
		return "[[" + base + "]]"
	}
	return "[[" + stem + "|" + occ + "]]"
}

// replaceOutsideLinks runs re.ReplaceAll on the stretches of text that
// are not already inside a wikilink.
func replaceOutsideLinks(text string, re *regexp.Regexp, repl func(string) string) string {
	var b strings.Builder
	last := 0
	for _, loc := range wikilinkSpanRe.FindAllStringIndex(text, -1) {
		b.WriteString(re.ReplaceAllStringFunc(text[last:loc[0]], repl))
		b.WriteString(text[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(re.ReplaceAllStringFunc(text[last:], repl))
	return b.String()
}
