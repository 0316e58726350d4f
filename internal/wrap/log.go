package wrap

import (
	"strconv"
	"time"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/gumshoe/internal/format"
)

// Default templates for call logging. callTime renders as seconds with
// four decimal places.
const (
	DefaultEnterFormat     = "[{callNumber}] Calling {funcName}()"
	DefaultExitFormat      = "[{callNumber}] Exiting {funcName}()\t[{callTime} seconds]"
	DefaultExceptionFormat = "Exception raised in {funcName}(): '{exception}'"
)

// LogCallsConfig configures the LogCalls wrapper. Zero-value fields take
// defaults: the templates above, a nop logger, and the wrapped function's
// name as the logger name. Note the zero Level is InfoLevel.
type LogCallsConfig struct {
	EnterFormat string
	ExitFormat  string
	Level       zapcore.Level
	LogName     string
	Logger      *zap.Logger
	Now         func() time.Time
}

// LogCalls emits a log line when the wrapped function is entered and
// another, carrying the elapsed time, when it returns. Calls are numbered
// per wrapped instance starting at 1. A call that raises logs only its
// entry; the error propagates unchanged.
//
// Templates may reference {callNumber}, {funcName}, and (exit only)
// {callTime}.
func LogCalls(cfg LogCallsConfig) Wrapper {
	if cfg.EnterFormat == "" {
		cfg.EnterFormat = DefaultEnterFormat
	}
	if cfg.ExitFormat == "" {
		cfg.ExitFormat = DefaultExitFormat
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		logName := cfg.LogName
		if logName == "" {
			logName = name
		}
		log := cfg.Logger.Named(logName)
		calls := 0

		return L.NewFunction(func(L *lua.LState) int {
			calls++
			vars := map[string]string{
				"callNumber": strconv.Itoa(calls),
				"funcName":   name,
			}
			emit(log, cfg.Level, cfg.EnterFormat, vars)

			args := collectArgs(L)
			start := cfg.Now()
			rets, err := call(L, fn, args)
			if err != nil {
				raise(L, err)
			}
			elapsed := cfg.Now().Sub(start)
			vars["callTime"] = strconv.FormatFloat(elapsed.Seconds(), 'f', 4, 64)
			emit(log, cfg.Level, cfg.ExitFormat, vars)
			return push(L, rets)
		})
	})
}

// LogOnExceptionConfig configures the LogOnException wrapper.
type LogOnExceptionConfig struct {
	Format   string
	Level    zapcore.Level
	LogName  string
	Match    ErrorMatcher
	Suppress bool
	Logger   *zap.Logger
}

// LogOnException logs errors raised by the wrapped function. Matched
// errors are logged and then re-raised unless Suppress is set; unmatched
// errors propagate silently. The template may reference {funcName} and
// {exception}.
func LogOnException(cfg LogOnExceptionConfig) Wrapper {
	if cfg.Format == "" {
		cfg.Format = DefaultExceptionFormat
	}
	if cfg.Match == nil {
		cfg.Match = MatchAny()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		logName := cfg.LogName
		if logName == "" {
			logName = name
		}
		log := cfg.Logger.Named(logName)

		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			rets, err := call(L, fn, args)
			if err != nil {
				if !cfg.Match(err) {
					raise(L, err)
				}
				vars := map[string]string{
					"funcName":  name,
					"exception": errValue(err).String(),
				}
				emit(log, cfg.Level, cfg.Format, vars)
				if cfg.Suppress {
					return 0
				}
				raise(L, err)
			}
			return push(L, rets)
		})
	})
}

// emit renders tmpl against vars and writes the line at level. A broken
// template is a registration bug; it surfaces as an error-level line
// rather than killing the target call.
func emit(log *zap.Logger, level zapcore.Level, tmpl string, vars map[string]string) {
	msg, err := format.Render(tmpl, format.FromMap(vars))
	if err != nil {
		log.Error("bad call-log template", zap.Error(err))
		return
	}
	if ce := log.Check(level, msg); ce != nil {
		ce.Write()
	}
}
