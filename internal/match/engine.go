// Package match computes which notes in a vault should reference each
// other, based on their extracted MatchKey sets.
package match

import (
	"fmt"
	"sort"
	"unicode/utf8"

	"github.com/starford/gebo/internal/matchkey"
	"github.com/starford/gebo/internal/models"
)

// Mode selects how a run is scoped. The active-note designation comes
// from the caller (the host editor); it is never inferred here.
type Mode int

const (
	// ModeWholeVault pairs every two distinct notes with intersecting
	// key sets, source = lexicographic min of the pair.
	ModeWholeVault Mode = iota
	// ModeSingleNote pairs one designated note against the rest of the
	// vault, with the active note always the source.
	ModeSingleNote
)

// Engine holds matching configuration.
type Engine struct {
	// AcronymMinLength gates acronym-kind matches; shorter acronyms are
	// too ambiguous to link on.
	AcronymMinLength int
}

// NewEngine returns an Engine with the given acronym threshold.
func NewEngine(acronymMinLength int) *Engine {
	return &Engine{AcronymMinLength: acronymMinLength}
}

// keyHolder records that a note owns a key value with a given kind.
type keyHolder struct {
	note *models.Note
	kind models.MatchKind
}

// Run computes link candidates for the vault. In single-note mode the
// active path must name a note present in notes. Candidates are sorted
// by (source, target) so repeated runs on an unchanged vault produce
// identical output.
func (e *Engine) Run(notes []*models.Note, mode Mode, activePath string) ([]models.LinkCandidate, error) {
	var active *models.Note
	if mode == ModeSingleNote {
		for _, n := range notes {
			if n.Path == activePath {
				active = n
				break
			}
		}
		if active == nil {
			return nil, fmt.Errorf("match: active note not in vault: %s", activePath)
		}
	}

	// Inverted index: key value → notes holding it.
	index := make(map[string][]keyHolder)
	for _, n := range notes {
		for _, k := range matchkey.Extract(n) {
			index[k.Value] = append(index[k.Value], keyHolder{note: n, kind: k.Kind})
		}
	}

	type pairKey struct{ source, target string }
	best := make(map[pairKey]models.LinkCandidate)

	record := func(a, b keyHolder, value string) {
		if a.note.Path == b.note.Path {
			return
		}
		// A match is acronym-kind only when neither side holds the key
		// more strongly; those are gated by length.
		kind := a.kind
		if b.kind.StrongerThan(kind) {
			kind = b.kind
		}
		if kind == models.MatchAcronym && utf8.RuneCountInString(value) < e.AcronymMinLength {
			return
		}

		src, dst := a.note, b.note
		switch mode {
		case ModeSingleNote:
			if src.Path != active.Path {
				src, dst = dst, src
			}
			if src.Path != active.Path {
				return
			}
		case ModeWholeVault:
			if src.Path > dst.Path {
				src, dst = dst, src
			}
		}

		pk := pairKey{source: src.Path, target: dst.Path}
		if prev, ok := best[pk]; ok {
			if prev.Kind.StrongerThan(kind) {
				return
			}
			// Same strength: keep the lexicographically smaller key so
			// output does not depend on map iteration order.
			if prev.Kind == kind && prev.Key <= value {
				return
			}
		}
		best[pk] = models.LinkCandidate{
			Source: src.Path,
			Target: dst.Path,
			Key:    value,
			Kind:   kind,
		}
	}

	for value, holders := range index {
		if len(holders) < 2 {
			continue
		}
		for i := 0; i < len(holders); i++ {
			for j := i + 1; j < len(holders); j++ {
				record(holders[i], holders[j], value)
			}
		}
	}

	out := make([]models.LinkCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Source != out[j].Source {
			return out[i].Source < out[j].Source
		}
		return out[i].Target < out[j].Target
	})
	return out, nil
}
