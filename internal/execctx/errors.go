package execctx

import "errors"

// Errors for context capture.
var (
	// ErrNoFrame is returned when no Lua frame is found above the hook.
	ErrNoFrame = errors.New("execctx: no lua frame to capture")
)
