package wrap

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/gumshoe/internal/debugger"
	"github.com/dshills/gumshoe/internal/logging"
)

// Params carries a wrapper's declarative arguments: values bridged from a
// configuration script's table or converted from a JSON plan.
type Params map[string]lua.LValue

// Deps are the runtime services wrappers draw on.
type Deps struct {
	Logger *zap.Logger
}

// Build constructs a catalog wrapper by name. Unknown names fail with
// ErrUnknownWrapper, missing or mistyped parameters with ErrBadParam.
func Build(name string, p Params, deps Deps) (Wrapper, error) {
	switch name {
	case "logCalls":
		return buildLogCalls(p, deps)
	case "logOnException":
		return buildLogOnException(p, deps)
	case "breakOnEnter":
		dbg, err := debuggerParam(p)
		if err != nil {
			return nil, err
		}
		return BreakOnEnter(dbg), nil
	case "breakOnExit":
		dbg, err := debuggerParam(p)
		if err != nil {
			return nil, err
		}
		return BreakOnExit(dbg), nil
	case "breakOnResult":
		cmp, err := predicateParam(p, "compare")
		if err != nil {
			return nil, err
		}
		dbg, err := debuggerParam(p)
		if err != nil {
			return nil, err
		}
		return BreakOnResult(cmp, dbg), nil
	case "breakOnException":
		match, err := matcherParam(p)
		if err != nil {
			return nil, err
		}
		dbg, err := debuggerParam(p)
		if err != nil {
			return nil, err
		}
		return BreakOnException(match, dbg), nil
	case "callOnEnter":
		cb, err := callbackParam(p, "callback")
		if err != nil {
			return nil, err
		}
		return CallOnEnter(cb), nil
	case "callOnExit":
		cb, err := callbackParam(p, "callback")
		if err != nil {
			return nil, err
		}
		return CallOnExit(cb), nil
	case "callOnResult":
		cmp, err := predicateParam(p, "compare")
		if err != nil {
			return nil, err
		}
		cb, err := callbackParam(p, "callback")
		if err != nil {
			return nil, err
		}
		return CallOnResult(cmp, cb), nil
	case "callOnException":
		return buildCallOnException(p)
	case "skip":
		return Skip(p["returnValue"]), nil
	case "substitute":
		repl, ok := p["replacement"]
		if !ok || repl == lua.LNil {
			return nil, fmt.Errorf("%w: substitute requires replacement", ErrBadParam)
		}
		return Substitute(repl), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownWrapper, name)
	}
}

func buildLogCalls(p Params, deps Deps) (Wrapper, error) {
	enter, err := stringParam(p, "enterFormat")
	if err != nil {
		return nil, err
	}
	exit, err := stringParam(p, "exitFormat")
	if err != nil {
		return nil, err
	}
	logName, err := stringParam(p, "logName")
	if err != nil {
		return nil, err
	}
	level, err := levelParam(p, zapcore.DebugLevel)
	if err != nil {
		return nil, err
	}
	return LogCalls(LogCallsConfig{
		EnterFormat: enter,
		ExitFormat:  exit,
		Level:       level,
		LogName:     logName,
		Logger:      deps.Logger,
	}), nil
}

func buildLogOnException(p Params, deps Deps) (Wrapper, error) {
	tmpl, err := stringParam(p, "format")
	if err != nil {
		return nil, err
	}
	logName, err := stringParam(p, "logName")
	if err != nil {
		return nil, err
	}
	level, err := levelParam(p, zapcore.ErrorLevel)
	if err != nil {
		return nil, err
	}
	match, err := matcherParam(p)
	if err != nil {
		return nil, err
	}
	suppress, err := boolParam(p, "suppress")
	if err != nil {
		return nil, err
	}
	return LogOnException(LogOnExceptionConfig{
		Format:   tmpl,
		Level:    level,
		LogName:  logName,
		Match:    match,
		Suppress: suppress,
		Logger:   deps.Logger,
	}), nil
}

func buildCallOnException(p Params) (Wrapper, error) {
	match, err := matcherParam(p)
	if err != nil {
		return nil, err
	}
	var cb ExceptionCallback
	if v, ok := p["callback"]; ok && v != lua.LNil {
		cb = LuaExceptionCallback(v)
	} else {
		// No handler: matched errors are observed by nobody and re-raised.
		cb = func(*lua.LState, *lua.LFunction, lua.LValue) (bool, error) {
			return false, nil
		}
	}
	return CallOnException(match, cb), nil
}

func stringParam(p Params, key string) (string, error) {
	v, ok := p[key]
	if !ok || v == lua.LNil {
		return "", nil
	}
	s, ok := v.(lua.LString)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %s", ErrBadParam, key, v.Type())
	}
	return string(s), nil
}

func boolParam(p Params, key string) (bool, error) {
	v, ok := p[key]
	if !ok || v == lua.LNil {
		return false, nil
	}
	b, ok := v.(lua.LBool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean, got %s", ErrBadParam, key, v.Type())
	}
	return bool(b), nil
}

func levelParam(p Params, def zapcore.Level) (zapcore.Level, error) {
	s, err := stringParam(p, "level")
	if err != nil {
		return def, err
	}
	if s == "" {
		return def, nil
	}
	level, err := logging.ParseLevel(s)
	if err != nil {
		return def, fmt.Errorf("%w: %v", ErrBadParam, err)
	}
	return level, nil
}

// matcherParam reads the exceptions parameter: a substring, or a list of
// substrings, matched against error messages. Absent means match all.
func matcherParam(p Params) (ErrorMatcher, error) {
	v, ok := p["exceptions"]
	if !ok || v == lua.LNil {
		return MatchAny(), nil
	}
	switch val := v.(type) {
	case lua.LString:
		return MatchContains(string(val)), nil
	case *lua.LTable:
		var subs []string
		var bad error
		val.ForEach(func(_, item lua.LValue) {
			s, ok := item.(lua.LString)
			if !ok {
				bad = fmt.Errorf("%w: exceptions entries must be strings, got %s", ErrBadParam, item.Type())
				return
			}
			subs = append(subs, string(s))
		})
		if bad != nil {
			return nil, bad
		}
		return MatchContains(subs...), nil
	default:
		return nil, fmt.Errorf("%w: exceptions must be a string or list, got %s", ErrBadParam, v.Type())
	}
}

func debuggerParam(p Params) (debugger.Debugger, error) {
	name, err := stringParam(p, "debugger")
	if err != nil {
		return nil, err
	}
	return debugger.Lookup(name)
}

func predicateParam(p Params, key string) (Predicate, error) {
	v, ok := p[key]
	if !ok || v == lua.LNil {
		return nil, fmt.Errorf("%w: %s is required", ErrBadParam, key)
	}
	return LuaPredicate(v), nil
}

func callbackParam(p Params, key string) (Callback, error) {
	v, ok := p[key]
	if !ok || v == lua.LNil {
		return nil, fmt.Errorf("%w: %s is required", ErrBadParam, key)
	}
	return LuaCallback(v), nil
}
