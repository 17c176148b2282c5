package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when a demand series or policy parameter
	// cannot produce a well-defined result.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDataUnavailable is returned by demand sources when the backing data
	// cannot be reached (missing file, object, table...).
	ErrDataUnavailable = errors.New("demand data unavailable")

	// ErrItemNotFound is returned when a source is reachable but has no
	// demand for the requested item.
	ErrItemNotFound = fmt.Errorf("item not found: %w", ErrDataUnavailable)
)

// InvalidInputf wraps ErrInvalidInput with a formatted detail message.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
