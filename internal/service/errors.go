package service

import "errors"

var (
	// ErrInvalidInput marks requests the caller can fix: missing titles,
	// malformed dates, out-of-range minutes.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict marks requests that collide with existing state, such as
	// duplicate names or overlapping time windows.
	ErrConflict = errors.New("conflict")
)
