package debugger

import "errors"

// Debugger errors.
var (
	// ErrUnsupported is returned when a registration names an unknown
	// debugger.
	ErrUnsupported = errors.New("debugger: unsupported debugger")

	// ErrQuit is returned when the operator quits the session, aborting
	// the instrumented run.
	ErrQuit = errors.New("debugger: session quit")
)
