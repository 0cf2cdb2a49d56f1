package models

import "errors"

// Failure kinds returned by the service layer. Every service error wraps one
// of these so controllers can map them to a status in one place.
var (
	// ErrNotFound indicates the resource or membership does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the caller's role is insufficient for the action.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation, e.g. duplicate membership.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition indicates a task status precondition was unmet.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrUnavailable indicates a persistence-layer fault. Not retried here.
	ErrUnavailable = errors.New("unavailable")
)
