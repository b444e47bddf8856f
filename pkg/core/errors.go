package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotFound   = errors.New("record not found")
	ErrClosed     = errors.New("store is closed")
	ErrReadOnly   = errors.New("store is in read-only mode")
	ErrNotEditing = errors.New("no note is being edited")
	ErrEmptyNote  = errors.New("note cannot be empty")
)

// OpenError reports that the database could not be opened or upgraded.
// It is fatal: no collection may be assumed to exist afterwards.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("failed to open database %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// ReadError reports a failed read of a collection or of the singleton record.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed create, update, delete or clear.
type WriteError struct {
	Op  string
	ID  int64
	Err error
}

func (e *WriteError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("failed to %s note %d: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ValidationError is returned before any storage call when input is rejected.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
