package wrap

import "errors"

var (
	// ErrUnknownWrapper indicates a wrapper name outside the catalog.
	ErrUnknownWrapper = errors.New("wrap: unknown wrapper")

	// ErrBadParam indicates a wrapper parameter that is missing or of the
	// wrong type.
	ErrBadParam = errors.New("wrap: bad wrapper parameter")
)
