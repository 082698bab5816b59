// Package apperr defines the error taxonomy for a linking run.
//
// ErrVaultAccess and ErrBackup are fatal: the run aborts before any
// note is mutated. ErrNoteDecode and ErrNoteWrite are recoverable and
// isolated per note; they only appear in the end-of-run summary.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrVaultAccess = errors.New("vault root not accessible")
	ErrBackup      = errors.New("backup failed")
	ErrNoteDecode  = errors.New("note not decodable")
	ErrNoteWrite   = errors.New("note write failed")
)

// NoteError ties a recoverable error to the note it occurred on.
type NoteError struct {
	Path string
	Err  error
}

func (e *NoteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *NoteError) Unwrap() error {
	return e.Err
}
