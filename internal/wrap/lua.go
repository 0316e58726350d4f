package wrap

import (
	lua "github.com/yuin/gopher-lua"
)

// LuaCallback adapts a Lua callable to a Callback. The callable receives
// the wrapped function followed by the boundary values; its return values
// become the replacement results.
func LuaCallback(cb lua.LValue) Callback {
	return func(L *lua.LState, fn *lua.LFunction, args []lua.LValue) ([]lua.LValue, error) {
		cargs := make([]lua.LValue, 0, len(args)+1)
		cargs = append(cargs, fn)
		cargs = append(cargs, args...)
		return call(L, cb, cargs)
	}
}

// LuaExceptionCallback adapts a Lua callable to an ExceptionCallback. The
// callable receives the wrapped function and the error value; a truthy
// return suppresses propagation.
func LuaExceptionCallback(cb lua.LValue) ExceptionCallback {
	return func(L *lua.LState, fn *lua.LFunction, errVal lua.LValue) (bool, error) {
		rets, err := call(L, cb, []lua.LValue{fn, errVal})
		if err != nil {
			return false, err
		}
		return !lua.LVIsFalse(firstResult(rets)), nil
	}
}

// LuaPredicate adapts a Lua callable to a Predicate; the callable receives
// the result value and a truthy return fires the trigger.
func LuaPredicate(p lua.LValue) Predicate {
	return func(L *lua.LState, result lua.LValue) (bool, error) {
		rets, err := call(L, p, []lua.LValue{result})
		if err != nil {
			return false, err
		}
		return !lua.LVIsFalse(firstResult(rets)), nil
	}
}
