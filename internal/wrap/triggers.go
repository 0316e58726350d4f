package wrap

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gumshoe/internal/debugger"
)

// BreakOnEnter suspends into dbg before the wrapped function's body runs.
// The session sees the call arguments as arg1..argN.
func BreakOnEnter(dbg debugger.Debugger) Wrapper {
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			env := newCallEnv(L, name, "enter", args)
			if err := dbg.Break(env); err != nil {
				raise(L, err)
			}
			rets, err := call(L, fn, args)
			if err != nil {
				raise(L, err)
			}
			return push(L, rets)
		})
	})
}

// BreakOnExit suspends into dbg after the wrapped function returns. The
// session additionally sees the first return value as result.
func BreakOnExit(dbg debugger.Debugger) Wrapper {
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			rets, err := call(L, fn, args)
			if err != nil {
				raise(L, err)
			}
			env := newCallEnv(L, name, "exit", args)
			env.bind("result", firstResult(rets))
			if err := dbg.Break(env); err != nil {
				raise(L, err)
			}
			return push(L, rets)
		})
	})
}

// BreakOnResult suspends into dbg when compare accepts the first return
// value. Non-matching calls pass through untouched.
func BreakOnResult(compare Predicate, dbg debugger.Debugger) Wrapper {
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			rets, err := call(L, fn, args)
			if err != nil {
				raise(L, err)
			}
			hit, perr := compare(L, firstResult(rets))
			if perr != nil {
				raise(L, perr)
			}
			if hit {
				env := newCallEnv(L, name, "result", args)
				env.bind("result", firstResult(rets))
				if err := dbg.Break(env); err != nil {
					raise(L, err)
				}
			}
			return push(L, rets)
		})
	})
}

// BreakOnException suspends into dbg when the wrapped function raises a
// matching error, with the error value bound as exception. The error is
// consumed by the session: the call returns nothing instead of
// propagating. Unmatched errors propagate untouched.
func BreakOnException(match ErrorMatcher, dbg debugger.Debugger) Wrapper {
	if match == nil {
		match = MatchAny()
	}
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			rets, err := call(L, fn, args)
			if err != nil {
				if !match(err) {
					raise(L, err)
				}
				env := newCallEnv(L, name, "exception", args)
				env.bind("exception", errValue(err))
				if berr := dbg.Break(env); berr != nil {
					raise(L, berr)
				}
				return 0
			}
			return push(L, rets)
		})
	})
}

// CallOnEnter invokes cb with the call arguments before the wrapped
// function runs. The callback's returns are ignored.
func CallOnEnter(cb Callback) Wrapper {
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			if _, err := cb(L, fn, args); err != nil {
				raise(L, err)
			}
			rets, err := call(L, fn, args)
			if err != nil {
				raise(L, err)
			}
			return push(L, rets)
		})
	})
}

// CallOnExit invokes cb with the wrapped function's return values. A
// non-nil callback return replaces them.
func CallOnExit(cb Callback) Wrapper {
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			rets, err := call(L, fn, args)
			if err != nil {
				raise(L, err)
			}
			replaced, cerr := cb(L, fn, rets)
			if cerr != nil {
				raise(L, cerr)
			}
			if replaced != nil {
				rets = replaced
			}
			return push(L, rets)
		})
	})
}

// CallOnResult invokes cb only when compare accepts the first return
// value; a non-nil callback return replaces the results.
func CallOnResult(compare Predicate, cb Callback) Wrapper {
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			rets, err := call(L, fn, args)
			if err != nil {
				raise(L, err)
			}
			hit, perr := compare(L, firstResult(rets))
			if perr != nil {
				raise(L, perr)
			}
			if hit {
				replaced, cerr := cb(L, fn, rets)
				if cerr != nil {
					raise(L, cerr)
				}
				if replaced != nil {
					rets = replaced
				}
			}
			return push(L, rets)
		})
	})
}

// CallOnException invokes cb with the error value when the wrapped
// function raises a matching error. The callback is invoked exactly once
// per raise; a true suppress return swallows the error, otherwise it is
// re-raised. Unmatched errors propagate untouched.
func CallOnException(match ErrorMatcher, cb ExceptionCallback) Wrapper {
	if match == nil {
		match = MatchAny()
	}
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			rets, err := call(L, fn, args)
			if err != nil {
				if !match(err) {
					raise(L, err)
				}
				suppress, cerr := cb(L, fn, errValue(err))
				if cerr != nil {
					raise(L, cerr)
				}
				if suppress {
					return 0
				}
				raise(L, err)
			}
			return push(L, rets)
		})
	})
}
