// Package storage defines the vault file-system abstraction.
package storage

// Entry is a Markdown file discovered during a vault walk. Content is
// not read at walk time: an unreadable file must not fail the walk,
// only the later per-note read.
type Entry struct {
	Path string // vault-relative
	Stem string // filename without extension
}

// Provider is the interface for vault file operations.
type Provider interface {
	// Root returns the absolute path of the vault root.
	Root() string
	// List walks the vault and returns an Entry for every .md file,
	// skipping dot directories and configured ignore names.
	List() ([]Entry, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to vault root).
	Write(path string, content []byte) error
}
