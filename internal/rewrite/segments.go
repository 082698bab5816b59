// Package rewrite mutates note bodies: appending related-note links,
// linkifying title occurrences inline, and stripping wikilink markup.
// All rewrites are idempotent and never touch fenced code, inline code,
// math blocks, or existing wikilinks.
package rewrite

import "regexp"

// protectedRe matches spans that must never be rewritten: fenced code
// blocks, display and inline math, inline code, and existing wikilinks.
var protectedRe = regexp.MustCompile("(?s)```.*?```|\\$\\$.*?\\$\\$|`[^`\n]*`|\\$[^$\n]+\\$|\\[\\[[^\\]]*\\]\\]")

// Segment is a slice of a note body, flagged when it must be left verbatim.
type Segment struct {
	Text      string
	Protected bool
}

// Split cuts text into alternating rewritable and protected segments.
// Concatenating the segments reproduces the input exactly.
func Split(text string) []Segment {
	var segs []Segment
	last := 0
	for _, loc := range protectedRe.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segs = append(segs, Segment{Text: text[last:loc[0]]})
		}
		segs = append(segs, Segment{Text: text[loc[0]:loc[1]], Protected: true})
		last = loc[1]
	}
	if last < len(text) {
		segs = append(segs, Segment{Text: text[last:]})
	}
	return segs
}

// Join reassembles segments into a single string.
func Join(segs []Segment) string {
	var n int
	for _, s := range segs {
		n += len(s.Text)
	}
	buf := make([]byte, 0, n)
	for _, s := range segs {
		buf = append(buf, s.Text...)
	}
	return string(buf)
}
