package engine

import (
	"io"

	"go.uber.org/zap"
)

// Option configures an Engine during creation.
type Option func(*Engine)

// WithLogger sets the logger behind log actions and call logging. The
// default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithStdout redirects target-program output: the Lua print() builtin and
// print actions without a file destination. The default is os.Stdout.
func WithStdout(w io.Writer) Option {
	return func(e *Engine) {
		if w != nil {
			e.stdout = w
		}
	}
}

// WithSafeLibraries restricts the Lua state to side-effect-free standard
// libraries.
func WithSafeLibraries() Option {
	return func(e *Engine) {
		e.safeLibs = true
	}
}
