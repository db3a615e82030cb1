package repositories

import "errors"

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("record not found")
	// ErrVersionConflict is returned by conditional writes that lost a race.
	ErrVersionConflict = errors.New("version conflict")
)
