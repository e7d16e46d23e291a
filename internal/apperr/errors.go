// Package apperr defines the error kinds shared by the engine, the catalog
// and the transports.
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")

	// ErrTypeMismatch: an id exists but its record is not of the requested type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnresolvedReference: a record points at an id that is not stored.
	ErrUnresolvedReference = errors.New("unresolved reference")
	// ErrInvalid: input text is not a well-formed exchange file.
	ErrInvalid = errors.New("invalid")
)
