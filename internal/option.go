package internal

import (
	"io"
	"log/slog"
)

// Option is a functional option for configuring a run.
type Option func(*application)

type application struct {
	config     *Config
	logger     *slog.Logger
	out        io.Writer
	activeNote string
	dryRun     bool
	verbose    bool
}

// WithConfig sets the run configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithLogger overrides the default logger (used by tests).
func WithLogger(l *slog.Logger) Option {
	return func(a *application) {
		a.logger = l
	}
}

// WithOutput sets the writer for the end-of-run report.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithActiveNote selects single-note mode for the given vault-relative
// path. The designation comes from the host editor, never inferred.
func WithActiveNote(path string) Option {
	return func(a *application) {
		a.activeNote = path
	}
}

// WithDryRun computes and reports changes without backup or writes.
func WithDryRun(dry bool) Option {
	return func(a *application) {
		a.dryRun = dry
	}
}

// WithVerbose switches to human-readable debug logging.
func WithVerbose(v bool) Option {
	return func(a *application) {
		a.verbose = v
	}
}
