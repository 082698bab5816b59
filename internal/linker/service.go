// Package linker runs a full linking pass over a vault: read, extract
// keys, match, rewrite.
package linker

import (
	"context"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/starford/gebo/internal/checksum"
	"github.com/starford/gebo/internal/match"
	"github.com/starford/gebo/internal/matchkey"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/parser"
	"github.com/starford/gebo/internal/rewrite"
	"github.com/starford/gebo/internal/storage"
)

// Options holds the rewrite-relevant configuration for a run.
type Options struct {
	AcronymMinLength int
	SectionHeading   string
	Inline           bool
}

// Service coordinates storage, matching, and rewriting.
type Service struct {
	store  storage.Provider
	engine *match.Engine
	opts   Options
	logger *slog.Logger
}

// NewService creates a new linking service.
func NewService(store storage.Provider, opts Options, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		engine: match.NewEngine(opts.AcronymMinLength),
		opts:   opts,
		logger: logger,
	}
}

// Change is a pending write to a single note. BaseChecksum is the
// digest of the content the rewrite was computed from; Apply refuses
// to overwrite a note that changed on disk after planning.
type Change struct {
	Path         string
	Content      []byte
	BaseChecksum string
}

// Plan is the computed outcome of a run before anything touches disk.
// Mutation is deferred so a backup can be taken (or a dry run reported)
// between planning and applying.
type Plan struct {
	Changes  []Change
	Skipped  int
	Warnings []models.NoteFailure
}

// KeyReport lists the match keys derived for one note.
type KeyReport struct {
	Path  string
	Title string
	Keys  []models.MatchKey
}

// loadNotes reads and parses every Markdown file in the vault. Files
// that cannot be read or are not valid UTF-8 are excluded and recorded
// as warnings; they never fail the run.
func (s *Service) loadNotes() ([]*models.Note, []models.NoteFailure, error) {
	entries, err := s.store.List()
	if err != nil {
		return nil, nil, err
	}

	notes := make([]*models.Note, 0, len(entries))
	var warnings []models.NoteFailure
	for _, e := range entries {
		data, err := s.store.Read(e.Path)
		if err != nil {
			s.logger.Warn("skipping unreadable note",
				slog.String("path", e.Path), slog.String("error", err.Error()))
			warnings = append(warnings, models.NoteFailure{Path: e.Path, Reason: err.Error()})
			continue
		}
		if !utf8.Valid(data) {
			s.logger.Warn("skipping undecodable note", slog.String("path", e.Path))
			warnings = append(warnings, models.NoteFailure{Path: e.Path, Reason: "not valid UTF-8"})
			continue
		}
		res, err := parser.Parse(data)
		if err != nil {
			warnings = append(warnings, models.NoteFailure{Path: e.Path, Reason: err.Error()})
			continue
		}
		title := res.Title
		if title == "" {
			title = e.Stem
		}
		notes = append(notes, &models.Note{
			Path:        e.Path,
			Stem:        e.Stem,
			Title:       title,
			Content:     data,
			Body:        res.Body,
			Frontmatter: res.Frontmatter,
			Links:       res.Links,
			Keywords:    res.Keywords,
			Checksum:    checksum.Sum(data),
		})
	}
	return notes, warnings, nil
}

// PlanLink computes every rewrite a linking run would perform. In
// single-note mode only the active note is rewritten; the rest of the
// vault contributes match keys.
func (s *Service) PlanLink(_ context.Context, mode match.Mode, activePath string) (*Plan, error) {
	notes, warnings, err := s.loadNotes()
	if err != nil {
		return nil, err
	}

	candidates, err := s.engine.Run(notes, mode, activePath)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("matching complete",
		slog.Int("notes", len(notes)), slog.Int("candidates", len(candidates)))

	targetsBySource := make(map[string][]string)
	stems := make(map[string]string, len(notes))
	for _, n := range notes {
		stems[n.Path] = n.Stem
	}
	for _, c := range candidates {
		targetsBySource[c.Source] = append(targetsBySource[c.Source], stems[c.Target])
		s.logger.Debug("match",
			slog.String("source", c.Source),
			slog.String("target", c.Target),
			slog.String("key", c.Key),
			slog.String("kind", c.Kind.String()))
	}

	var inlineTargets []rewrite.Target
	if s.opts.Inline {
		for _, n := range notes {
			inlineTargets = append(inlineTargets, rewrite.Target{
				Stem:    n.Stem,
				Title:   n.Title,
				Acronym: matchkey.Acronym(n.Title),
			})
		}
	}

	plan := &Plan{Warnings: warnings}
	for _, n := range notes {
		if mode == match.ModeSingleNote && n.Path != activePath {
			plan.Skipped++
			continue
		}

		body := n.Body
		changed := false
		if s.opts.Inline {
			lk := rewrite.NewLinkifier(inlineTargets, n.Stem, s.opts.AcronymMinLength)
			if out, ch := lk.Apply(body); ch {
				body, changed = out, true
			}
		}
		if out, ch := rewrite.AppendRelated(body, n.Stem, targetsBySource[n.Path], s.opts.SectionHeading); ch {
			body, changed = out, true
		}

		if !changed {
			plan.Skipped++
			continue
		}
		plan.Changes = append(plan.Changes, Change{
			Path:         n.Path,
			Content:      spliceBody(n, body),
			BaseChecksum: n.Checksum,
		})
	}
	return plan, nil
}

// PlanUnlink computes the writes that strip wikilink markup from the
// notes in scope.
func (s *Service) PlanUnlink(_ context.Context, mode match.Mode, activePath string) (*Plan, error) {
	notes, warnings, err := s.loadNotes()
	if err != nil {
		return nil, err
	}
	if mode == match.ModeSingleNote {
		found := false
		for _, n := range notes {
			if n.Path == activePath {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("linker: active note not in vault: %s", activePath)
		}
	}

	plan := &Plan{Warnings: warnings}
	for _, n := range notes {
		if mode == match.ModeSingleNote && n.Path != activePath {
			plan.Skipped++
			continue
		}
		body, changed := rewrite.Unlink(n.Body)
		if !changed {
			plan.Skipped++
			continue
		}
		plan.Changes = append(plan.Changes, Change{
			Path:         n.Path,
			Content:      spliceBody(n, body),
			BaseChecksum: n.Checksum,
		})
	}
	return plan, nil
}

// Apply writes every planned change. Write failures are isolated per
// note: the run continues and the failure surfaces in the summary.
func (s *Service) Apply(_ context.Context, plan *Plan) models.Summary {
	sum := models.Summary{
		Skipped:  plan.Skipped,
		Warnings: plan.Warnings,
	}
	for _, ch := range plan.Changes {
		if current, err := s.store.Read(ch.Path); err == nil && checksum.Sum(current) != ch.BaseChecksum {
			s.logger.Warn("note changed since scan, not overwriting", slog.String("path", ch.Path))
			sum.Failed++
			sum.Failures = append(sum.Failures, models.NoteFailure{Path: ch.Path, Reason: "changed since scan"})
			continue
		}
		if err := s.store.Write(ch.Path, ch.Content); err != nil {
			s.logger.Warn("write failed",
				slog.String("path", ch.Path), slog.String("error", err.Error()))
			sum.Failed++
			sum.Failures = append(sum.Failures, models.NoteFailure{Path: ch.Path, Reason: err.Error()})
			continue
		}
		s.logger.Info("note updated", slog.String("path", ch.Path))
		sum.Modified++
	}
	return sum
}

// Keys reports the derived match keys of every note, in vault order.
func (s *Service) Keys(_ context.Context) ([]KeyReport, []models.NoteFailure, error) {
	notes, warnings, err := s.loadNotes()
	if err != nil {
		return nil, nil, err
	}
	out := make([]KeyReport, 0, len(notes))
	for _, n := range notes {
		out = append(out, KeyReport{Path: n.Path, Title: n.Title, Keys: matchkey.Extract(n)})
	}
	return out, warnings, nil
}

// spliceBody rebuilds the raw file content around a rewritten body.
// The parser guarantees Body is a suffix of Content, so everything
// before it (frontmatter, leading blank lines) is preserved verbatim.
func spliceBody(n *models.Note, newBody string) []byte {
	prefix := n.Content[:len(n.Content)-len(n.Body)]
	out := make([]byte, 0, len(prefix)+len(newBody))
	out = append(out, prefix...)
	out = append(out, newBody...)
	return out
}
