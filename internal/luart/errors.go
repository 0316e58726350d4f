package luart

import "errors"

// Errors for runtime state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("luart: state is closed")
)
