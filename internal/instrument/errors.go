package instrument

import "errors"

// Instrumentation errors.
var (
	// ErrSourceNotFound indicates a registered target file is missing.
	ErrSourceNotFound = errors.New("instrument: source file not found")

	// ErrUnboundName indicates a call binding references a name absent
	// from the execution context.
	ErrUnboundName = errors.New("instrument: unbound name")
)
