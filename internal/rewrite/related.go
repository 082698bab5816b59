package rewrite

import (
	"strings"

	"github.com/starford/gebo/internal/parser"
)

// AppendRelated inserts wikilinks to the given target stems under a
// dedicated section (heading, e.g. "## Related") at the end of body.
// Targets already linked anywhere in the body are skipped, as is the
// note's own stem, so repeated runs leave the body unchanged. The
// returned bool reports whether the body was modified.
func AppendRelated(body, selfStem string, targets []string, heading string) (string, bool) {
	existing := parser.ExtractLinks(body)

	var missing []string
	for _, t := range targets {
		if t == "" || strings.EqualFold(t, selfStem) {
			continue
		}
		linked := false
		for _, e := range existing {
			if strings.EqualFold(e, t) {
				linked = true
				break
			}
		}
		if !linked {
			missing = append(missing, t)
		}
	}
	if len(missing) == 0 {
		return body, false
	}

	entries := make([]string, len(missing))
	for i, t := range missing {
		entries[i] = "- [[" + t + "]]"
	}

	lines := strings.Split(body, "\n")
	if at, ok := sectionEnd(lines, heading); ok {
		out := make([]string, 0, len(lines)+len(entries))
		out = append(out, lines[:at]...)
		out = append(out, entries...)
		out = append(out, lines[at:]...)
		return strings.Join(out, "\n"), true
	}

	var b strings.Builder
	b.WriteString(strings.TrimRight(body, "\n"))
	if b.Len() > 0 {
		b.WriteString("\n\n")
	}
	b.WriteString(heading)
	b.WriteString("\n\n")
	for _, e := range entries {
		b.WriteString(e)
		b.WriteString("\n")
	}
	return b.String(), true
}

// sectionEnd locates the insertion point inside an existing section:
// just past its last non-blank line, before any following heading.
func sectionEnd(lines []string, heading string) (int, bool) {
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == heading {
			start = i
			break
		}
	}
	if start < 0 {
		return 0, false
	}
	end := len(lines)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), "#") {
			end = i
			break
		}
	}
	// Back over trailing blank lines so entries stay grouped.
	for end > start+1 && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return end, true
}
