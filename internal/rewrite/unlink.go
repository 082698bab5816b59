package rewrite

import (
	"regexp"
	"strings"
)

var (
	// codeRe matches spans kept verbatim by Unlink: fenced code, math,
	// and inline code (which may legitimately contain "[[").
	codeRe   = regexp.MustCompile("(?s)```.*?```|\\$\\$.*?\\$\\$|`[^`\n]*`|\\$[^$\n]+\\$")
	unlinkRe = regexp.MustCompile(`\[\[([^\]]*)\]\]`)
)

// Unlink removes wikilink markup from body, keeping the display text:
// [[Target]] becomes Target and [[Target|alias]] becomes alias. Code
// and math spans are untouched. Returns the new body and whether it
// changed.
func Unlink(body string) (string, bool) {
	if !strings.Contains(body, "[[") {
		return body, false
	}

	var b strings.Builder
	last := 0
	strip := func(s string) {
		b.WriteString(unlinkRe.ReplaceAllStringFunc(s, func(m string) string {
			inner := strings.TrimSuffix(strings.TrimPrefix(m, "[["), "]]")
			if i := strings.Index(inner, "|"); i >= 0 {
				return inner[i+1:]
			}
			return inner
		}))
	}
	for _, loc := range codeRe.FindAllStringIndex(body, -1) {
		strip(body[last:loc[0]])
		b.WriteString(body[loc[0]:loc[1]])
		last = loc[1]
	}
	strip(body[last:])

	out := b.String()
	return out, out != body
}
