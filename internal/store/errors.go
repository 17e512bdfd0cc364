package store

import "errors"

var (
	// ErrNotFound is returned by update/delete operations on ids that do not
	// exist. Reads return nil instead.
	ErrNotFound = errors.New("not found")

	// ErrFutureDay is returned when creating or toggling a completion record
	// for a day strictly after today.
	ErrFutureDay = errors.New("completion day is in the future")
)
