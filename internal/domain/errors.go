package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the client core, the transports and the server.
var (
	ErrNotFound        = errors.New("not found")
	ErrSession         = errors.New("session error")
	ErrNoActiveSession = errors.New("no active session")
	ErrLoad            = errors.New("failed to load notes")
	ErrCreate          = errors.New("failed to create note")
	ErrSave            = errors.New("failed to save note")
	ErrDelete          = errors.New("failed to delete note")
	ErrTitleTooLong    = errors.New("title too long")

	// ErrAlreadyExists is returned by repositories when a record with the
	// same unique key was stored first.
	ErrAlreadyExists = errors.New("already exists")

	// ErrSuperseded marks a result discarded because a logout or a newer
	// session started while the call was in flight.
	ErrSuperseded = errors.New("superseded by a newer session")
)

// OpError wraps a failure of a remote operation with its category.
// errors.Is matches both the category (ErrLoad, ErrSave, ...) and the cause.
type OpError struct {
	Kind   error
	NoteID string
	Err    error
}

func (e *OpError) Error() string {
	if e.NoteID != "" {
		return fmt.Sprintf("%v (note %s): %v", e.Kind, e.NoteID, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func NewOpError(kind error, noteID string, err error) *OpError {
	return &OpError{Kind: kind, NoteID: noteID, Err: err}
}
