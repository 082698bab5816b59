package match

import (
	"testing"

	"github.com/starford/gebo/internal/models"
)

func note(path, title string, keywords ...string) *models.Note {
	return &models.Note{
		Path:     path,
		Stem:     title,
		Title:    title,
		Keywords: keywords,
	}
}

func TestWholeVault_ExactTitleMatch(t *testing.T) {
	e := NewEngine(3)
	notes := []*models.Note{
		note("b.md", "Deep Learning"),
		note("a.md", "Deep Learning"),
		note("c.md", "Unrelated"),
	}
	got, err := e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %v, want 1", got)
	}
	c := got[0]
	if c.Source != "a.md" || c.Target != "b.md" {
		t.Errorf("pair = %s→%s, want a.md→b.md", c.Source, c.Target)
	}
	if c.Kind != models.MatchExactTitle {
		t.Errorf("kind = %v, want exact-title", c.Kind)
	}
}

func TestWholeVault_KeywordBeatsAcronym(t *testing.T) {
	// "Deep Learning" yields acronym "dl", which also matches B's
	// keyword "DL". The keyword kind outranks acronym, so the pair is
	// recorded as a keyword match and the 3-char acronym gate does not
	// suppress it.
	e := NewEngine(3)
	notes := []*models.Note{
		note("A - Deep Learning.md", "Deep Learning"),
		note("B - DL Notes.md", "B DL Notes", "DL"),
	}
	got, err := e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %v, want 1", got)
	}
	c := got[0]
	if c.Source != "A - Deep Learning.md" || c.Target != "B - DL Notes.md" {
		t.Errorf("pair = %s→%s", c.Source, c.Target)
	}
	if c.Kind != models.MatchKeyword {
		t.Errorf("kind = %v, want keyword", c.Kind)
	}
	if c.Key != "dl" {
		t.Errorf("key = %q, want dl", c.Key)
	}
}

func TestWholeVault_ShortAcronymGated(t *testing.T) {
	// Both titles produce acronym "dl"; with the default minimum of 3
	// a pure acronym-to-acronym match is rejected.
	e := NewEngine(3)
	notes := []*models.Note{
		note("a.md", "Deep Learning"),
		note("b.md", "Dark Lord"),
	}
	got, err := e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %v, want none", got)
	}

	// Lowering the threshold admits it.
	e = NewEngine(2)
	got, err = e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind != models.MatchAcronym {
		t.Errorf("candidates = %v, want one acronym match", got)
	}
}

func TestWholeVault_AcronymGateCountsRunes(t *testing.T) {
	// Both titles produce the acronym "мо", two runes but four bytes.
	// The minimum length is measured in runes, so the default of 3
	// still gates the pair.
	e := NewEngine(3)
	notes := []*models.Note{
		note("a.md", "Машинное обучение"),
		note("b.md", "Мирное общество"),
	}
	got, err := e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %v, want none", got)
	}

	e = NewEngine(2)
	got, err = e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Kind != models.MatchAcronym {
		t.Errorf("candidates = %v, want one acronym match", got)
	}
}

func TestWholeVault_NoSelfLinks(t *testing.T) {
	e := NewEngine(3)
	notes := []*models.Note{
		note("a.md", "Alpha", "Alpha"),
	}
	got, err := e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	for _, c := range got {
		if c.Source == c.Target {
			t.Errorf("self link: %v", c)
		}
	}
	if len(got) != 0 {
		t.Errorf("candidates = %v, want none", got)
	}
}

func TestWholeVault_PairDedupKeepsStrongestKind(t *testing.T) {
	// The pair matches twice: identical titles (exact) and a shared
	// keyword. Exactly one candidate survives, with the stronger kind.
	e := NewEngine(3)
	notes := []*models.Note{
		note("a.md", "Graphs", "topology"),
		note("b.md", "Graphs", "topology"),
	}
	got, err := e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %v, want 1", got)
	}
	if got[0].Kind != models.MatchExactTitle {
		t.Errorf("kind = %v, want exact-title", got[0].Kind)
	}
}

func TestWholeVault_Deterministic(t *testing.T) {
	notes := []*models.Note{
		note("c.md", "Gamma", "shared"),
		note("a.md", "Alpha", "shared"),
		note("b.md", "Beta", "shared"),
	}
	e := NewEngine(3)
	first, err := e.Run(notes, ModeWholeVault, "")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := e.Run(notes, ModeWholeVault, "")
		if err != nil {
			t.Fatal(err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: %d candidates, want %d", i, len(again), len(first))
		}
		for j := range again {
			if again[j] != first[j] {
				t.Fatalf("run %d: candidate %d = %v, want %v", i, j, again[j], first[j])
			}
		}
	}
	// Source is always the lexicographic minimum.
	for _, c := range first {
		if c.Source >= c.Target {
			t.Errorf("source %q not < target %q", c.Source, c.Target)
		}
	}
}

func TestSingleNote_ActiveIsAlwaysSource(t *testing.T) {
	e := NewEngine(3)
	notes := []*models.Note{
		note("a.md", "Alpha", "shared"),
		note("z.md", "Zeta", "shared"),
	}
	got, err := e.Run(notes, ModeSingleNote, "z.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %v, want 1", got)
	}
	if got[0].Source != "z.md" || got[0].Target != "a.md" {
		t.Errorf("pair = %s→%s, want z.md→a.md", got[0].Source, got[0].Target)
	}
}

func TestSingleNote_UnrelatedPairsExcluded(t *testing.T) {
	e := NewEngine(3)
	notes := []*models.Note{
		note("a.md", "Alpha", "shared"),
		note("b.md", "Beta", "shared"),
		note("c.md", "Lonely"),
	}
	got, err := e.Run(notes, ModeSingleNote, "c.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("candidates = %v, want none", got)
	}
}

func TestSingleNote_MissingActive(t *testing.T) {
	e := NewEngine(3)
	if _, err := e.Run(nil, ModeSingleNote, "ghost.md"); err == nil {
		t.Error("expected error for missing active note")
	}
}
