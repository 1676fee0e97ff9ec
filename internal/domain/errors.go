package domain

import "errors"

var (
	// ErrIndexOutOfRange is returned when removing an index outside [0, N).
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrEmptyCatalog is returned by Process when the catalog has no observations
	// to anchor the sampling grid.
	ErrEmptyCatalog = errors.New("catalog is empty")

	// ErrUnsortedCatalog is returned by Process when observations are not in
	// ascending time order.
	ErrUnsortedCatalog = errors.New("catalog is not sorted by time")

	// ErrInvalidOptions is returned by Process for a non-positive window or step.
	ErrInvalidOptions = errors.New("invalid process options")
)
