// Package models defines the domain types for Gebo.
package models

// Note represents a parsed Markdown file in the vault.
type Note struct {
	// Path is the vault-relative file path and the note's identifier.
	Path    string
	Stem    string // filename without extension
	Title   string
	Content []byte // raw file bytes, frontmatter included
	// Body is the Markdown after frontmatter; always a suffix of Content.
	Body        string
	Frontmatter map[string]interface{}
	// Links holds existing outbound wikilink targets, deduplicated.
	Links    []string
	Keywords []string
	Checksum string
}

// MatchKind classifies how two notes were matched, strongest first.
type MatchKind int

const (
	MatchExactTitle MatchKind = iota
	MatchKeyword
	MatchAcronym
)

// String returns the human-readable name of the match kind.
func (k MatchKind) String() string {
	switch k {
	case MatchExactTitle:
		return "exact-title"
	case MatchKeyword:
		return "keyword"
	case MatchAcronym:
		return "acronym"
	}
	return "unknown"
}

// StrongerThan reports whether k takes precedence over other when the
// same pair of notes matches through multiple keys.
func (k MatchKind) StrongerThan(other MatchKind) bool {
	return k < other
}

// MatchKey is a normalized string used to detect relatedness between notes.
type MatchKey struct {
	Value string
	Kind  MatchKind
}

// LinkCandidate is a proposed link from Source to Target, carrying the
// key that produced it and the strongest kind it matched through.
type LinkCandidate struct {
	Source string
	Target string
	Key    string
	Kind   MatchKind
}

// NoteFailure records a per-note error surfaced in the run summary.
type NoteFailure struct {
	Path   string
	Reason string
}

// Summary is the end-of-run report.
type Summary struct {
	Modified int
	Skipped  int
	Failed   int
	Failures []NoteFailure
	// Warnings lists files excluded from the run (e.g. undecodable).
	Warnings []NoteFailure
	// BackupPath is the snapshot directory, empty when safe mode is off.
	BackupPath string
}

// Snapshot describes a completed vault backup.
type Snapshot struct {
	Path  string
	Files int
}
