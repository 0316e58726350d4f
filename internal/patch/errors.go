package patch

import "errors"

var (
	// ErrModuleNotFound indicates a patch path whose leading container
	// does not exist in the target scope.
	ErrModuleNotFound = errors.New("patch: module not found")

	// ErrNotFunction indicates a patch target that resolved to a
	// non-function value.
	ErrNotFunction = errors.New("patch: target is not a function")
)
