// Package logging builds the zap loggers behind log actions and call
// logging, and maps user-facing level names onto zap levels.
package logging

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrBadLevel indicates an unrecognized level name.
var ErrBadLevel = errors.New("logging: unknown level")

// ParseLevel maps a level name to its zap level, case-insensitively. An
// empty name means info. critical and fatal clamp to error: a log action
// firing inside a target program must never terminate the process.
func ParseLevel(s string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error", "critical", "fatal":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("%w: %q", ErrBadLevel, s)
	}
}

// New builds the process logger: console encoding on stderr, gated at
// level.
func New(level zapcore.Level) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.Encoding = "console"
	cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// NewWriter builds a logger over an arbitrary writer. Used by tests and by
// log actions directed at a capture buffer.
func NewWriter(w io.Writer, level zapcore.Level) *zap.Logger {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	return zap.New(core)
}
