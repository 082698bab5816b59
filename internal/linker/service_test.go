package linker

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/gebo/internal/match"
	"github.com/starford/gebo/internal/testutil"
)

func newService(t *testing.T, opts Options) (string, *Service) {
	t.Helper()
	dir, store := testutil.TestVault(t)
	if opts.SectionHeading == "" {
		opts.SectionHeading = "## Related"
	}
	if opts.AcronymMinLength == 0 {
		opts.AcronymMinLength = 3
	}
	return dir, NewService(store, opts, testutil.Logger())
}

func TestPlanLink_KeywordScenario(t *testing.T) {
	// B declares keyword "DL" in its leading metadata block; A's title
	// "Deep Learning" yields acronym "dl". The pair links through the
	// keyword kind, with the lexicographically smaller path as source.
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "A - Deep Learning.md", "# Deep Learning\n\nNotes on nets.\n")
	testutil.WriteNote(t, dir, "B - DL Notes.md", "DL\n\nScratch notes.\n")

	plan, err := svc.PlanLink(context.Background(), match.ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(plan.Changes))
	}
	if plan.Changes[0].Path != "A - Deep Learning.md" {
		t.Errorf("source = %q", plan.Changes[0].Path)
	}

	sum := svc.Apply(context.Background(), plan)
	if sum.Modified != 1 || sum.Failed != 0 {
		t.Errorf("summary = %+v", sum)
	}
	got := testutil.ReadNote(t, dir, "A - Deep Learning.md")
	if !strings.Contains(got, "## Related") || !strings.Contains(got, "- [[B - DL Notes]]") {
		t.Errorf("rewritten note:\n%s", got)
	}
}

func TestPlanLink_Idempotent(t *testing.T) {
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "a.md", "# Shared Topic\ntext\n")
	testutil.WriteNote(t, dir, "b.md", "# Shared Topic\nother\n")

	ctx := context.Background()
	plan, err := svc.PlanLink(ctx, match.ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if sum := svc.Apply(ctx, plan); sum.Modified == 0 {
		t.Fatal("first run modified nothing")
	}
	first := testutil.ReadNote(t, dir, "a.md")

	again, err := svc.PlanLink(ctx, match.ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Changes) != 0 {
		t.Errorf("second run planned %d changes", len(again.Changes))
	}
	if got := testutil.ReadNote(t, dir, "a.md"); got != first {
		t.Errorf("content drifted:\n%q\nvs\n%q", got, first)
	}
}

func TestPlanLink_SingleNoteNoMatches(t *testing.T) {
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "a.md", "# Alpha\n")
	testutil.WriteNote(t, dir, "b.md", "# Beta\n")
	testutil.WriteNote(t, dir, "c.md", "# Gamma\n")

	plan, err := svc.PlanLink(context.Background(), match.ModeSingleNote, "c.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Changes) != 0 {
		t.Errorf("changes = %v, want none", plan.Changes)
	}
	if plan.Skipped != 3 {
		t.Errorf("skipped = %d, want 3", plan.Skipped)
	}
}

func TestPlanLink_SingleNoteOnlyRewritesActive(t *testing.T) {
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "a.md", "# Topic\n")
	testutil.WriteNote(t, dir, "b.md", "# Topic\n")

	ctx := context.Background()
	plan, err := svc.PlanLink(ctx, match.ModeSingleNote, "b.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Changes) != 1 || plan.Changes[0].Path != "b.md" {
		t.Fatalf("changes = %v, want only b.md", plan.Changes)
	}
	svc.Apply(ctx, plan)
	if got := testutil.ReadNote(t, dir, "a.md"); strings.Contains(got, "[[") {
		t.Errorf("non-active note was rewritten:\n%s", got)
	}
	if got := testutil.ReadNote(t, dir, "b.md"); !strings.Contains(got, "- [[a]]") {
		t.Errorf("active note missing link:\n%s", got)
	}
}

func TestPlanLink_PreservesFrontmatter(t *testing.T) {
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "a.md", "---\ntitle: Topic\nkeywords:\n  - shared\n---\n\nSome prose.\n")
	testutil.WriteNote(t, dir, "b.md", "---\nkeywords:\n  - shared\n---\n\nOther prose.\n")

	ctx := context.Background()
	plan, err := svc.PlanLink(ctx, match.ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	svc.Apply(ctx, plan)

	got := testutil.ReadNote(t, dir, "a.md")
	if !strings.HasPrefix(got, "---\ntitle: Topic\nkeywords:\n  - shared\n---\n") {
		t.Errorf("frontmatter corrupted:\n%s", got)
	}
	if !strings.Contains(got, "- [[b]]") {
		t.Errorf("link missing:\n%s", got)
	}
}

func TestPlanLink_UndecodableFileWarned(t *testing.T) {
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "good.md", "# Good\n")
	if err := os.WriteFile(filepath.Join(dir, "bad.md"), []byte{0xff, 0xfe, 0xfd}, 0o644); err != nil {
		t.Fatal(err)
	}

	plan, err := svc.PlanLink(context.Background(), match.ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Warnings) != 1 || plan.Warnings[0].Path != "bad.md" {
		t.Errorf("warnings = %v", plan.Warnings)
	}
}

func TestPlanLink_UnreadableFileWarned(t *testing.T) {
	// One unreadable note (a dangling symlink) is skipped with a
	// warning; the rest of the vault still links.
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "a.md", "# Topic\n")
	testutil.WriteNote(t, dir, "b.md", "# Topic\n")
	if err := os.Symlink(filepath.Join(dir, "missing-target"), filepath.Join(dir, "locked.md")); err != nil {
		t.Skipf("symlink not supported: %v", err)
	}

	plan, err := svc.PlanLink(context.Background(), match.ModeWholeVault, "")
	if err != nil {
		t.Fatalf("PlanLink: %v", err)
	}
	if len(plan.Warnings) != 1 || plan.Warnings[0].Path != "locked.md" {
		t.Errorf("warnings = %v", plan.Warnings)
	}
	if len(plan.Changes) != 1 || plan.Changes[0].Path != "a.md" {
		t.Errorf("changes = %v, want a.md linked despite the bad file", plan.Changes)
	}
}

func TestPlanLink_InlineMode(t *testing.T) {
	dir, svc := newService(t, Options{Inline: true})
	testutil.WriteNote(t, dir, "Vector.md", "# Vector\nA quantity with direction.\n")
	testutil.WriteNote(t, dir, "Physics.md", "# Physics\nVectors appear everywhere.\n")

	ctx := context.Background()
	plan, err := svc.PlanLink(ctx, match.ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	svc.Apply(ctx, plan)

	got := testutil.ReadNote(t, dir, "Physics.md")
	if !strings.Contains(got, "[[Vector]]s appear") {
		t.Errorf("inline linkify missing:\n%s", got)
	}
}

func TestPlanUnlink(t *testing.T) {
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "a.md", "# A\nSee [[b|the b note]] and [[c]].\n")
	testutil.WriteNote(t, dir, "plain.md", "# Plain\nNothing here.\n")

	ctx := context.Background()
	plan, err := svc.PlanUnlink(ctx, match.ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(plan.Changes) != 1 {
		t.Fatalf("changes = %d, want 1", len(plan.Changes))
	}
	if plan.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", plan.Skipped)
	}
	svc.Apply(ctx, plan)
	got := testutil.ReadNote(t, dir, "a.md")
	if got != "# A\nSee the b note and c.\n" {
		t.Errorf("got %q", got)
	}
}

func TestApply_RefusesStaleWrite(t *testing.T) {
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "a.md", "# Topic\n")
	testutil.WriteNote(t, dir, "b.md", "# Topic\n")

	ctx := context.Background()
	plan, err := svc.PlanLink(ctx, match.ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	// The note changes between planning and applying.
	testutil.WriteNote(t, dir, "a.md", "# Topic\nedited meanwhile\n")

	sum := svc.Apply(ctx, plan)
	if sum.Failed != 1 || sum.Modified != 0 {
		t.Errorf("summary = %+v", sum)
	}
	if got := testutil.ReadNote(t, dir, "a.md"); got != "# Topic\nedited meanwhile\n" {
		t.Errorf("stale plan overwrote the note: %q", got)
	}
}

func TestKeys(t *testing.T) {
	dir, svc := newService(t, Options{})
	testutil.WriteNote(t, dir, "dlb.md", "# Deep Learning Basics\n")

	reports, _, err := svc.Keys(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("reports = %v", reports)
	}
	values := make(map[string]bool)
	for _, k := range reports[0].Keys {
		values[k.Value] = true
	}
	if !values["deep_learning_basics"] || !values["dlb"] {
		t.Errorf("keys = %v", reports[0].Keys)
	}
}
