package wrap

import (
	"errors"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Wrapper builds a wrapped function around fn. name is the simple name the
// function is bound under at its patch site; wrappers use it for logging
// and session banners.
type Wrapper interface {
	Wrap(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction
}

// WrapperFunc adapts a function to the Wrapper interface.
type WrapperFunc func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction

// Wrap implements Wrapper.
func (f WrapperFunc) Wrap(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
	return f(L, name, fn)
}

// Callback observes or replaces a call boundary. It receives the wrapped
// function and, depending on the trigger, the call arguments or return
// values; its returns replace them where the trigger's contract allows.
type Callback func(L *lua.LState, fn *lua.LFunction, args []lua.LValue) ([]lua.LValue, error)

// Predicate decides whether a trigger fires for a result value.
type Predicate func(L *lua.LState, result lua.LValue) (bool, error)

// ExceptionCallback handles an intercepted error value. Returning
// suppress=true stops propagation; the default contract is to re-raise.
type ExceptionCallback func(L *lua.LState, fn *lua.LFunction, errVal lua.LValue) (suppress bool, err error)

// ErrorMatcher selects which errors a wrapper intercepts.
type ErrorMatcher func(err error) bool

// MatchAny intercepts every error.
func MatchAny() ErrorMatcher {
	return func(error) bool { return true }
}

// MatchContains intercepts errors whose message contains any of the given
// substrings. Lua errors are values, usually strings; substring matching
// is the closest analog to matching on exception type.
func MatchContains(subs ...string) ErrorMatcher {
	return func(err error) bool {
		msg := err.Error()
		for _, s := range subs {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

// collectArgs copies the wrapped call's arguments off the stack.
func collectArgs(L *lua.LState) []lua.LValue {
	n := L.GetTop()
	args := make([]lua.LValue, n)
	for i := 1; i <= n; i++ {
		args[i-1] = L.Get(i)
	}
	return args
}

// call invokes fn with args under a protected call and collects every
// return value.
func call(L *lua.LState, fn lua.LValue, args []lua.LValue) ([]lua.LValue, error) {
	top := L.GetTop()
	if err := L.CallByParam(lua.P{Fn: fn, NRet: lua.MultRet, Protect: true}, args...); err != nil {
		return nil, err
	}
	nret := L.GetTop() - top
	if nret <= 0 {
		return nil, nil
	}
	rets := make([]lua.LValue, nret)
	for i := 0; i < nret; i++ {
		rets[i] = L.Get(top + i + 1)
	}
	L.Pop(nret)
	return rets, nil
}

// push returns values to the wrapped call's caller.
func push(L *lua.LState, rets []lua.LValue) int {
	for _, r := range rets {
		L.Push(r)
	}
	return len(rets)
}

// raise rethrows err into the Lua call stack, preserving the original
// error value where one exists.
func raise(L *lua.LState, err error) {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		L.Error(apiErr.Object, 1)
		return
	}
	L.RaiseError("%v", err)
}

// errValue extracts the Lua error value carried by err, falling back to
// its message.
func errValue(err error) lua.LValue {
	var apiErr *lua.ApiError
	if errors.As(err, &apiErr) {
		return apiErr.Object
	}
	return lua.LString(err.Error())
}

// firstResult returns the first return value, or nil for a bare return.
func firstResult(rets []lua.LValue) lua.LValue {
	if len(rets) == 0 {
		return lua.LNil
	}
	return rets[0]
}

// Skip replaces the call entirely with a constant: the original body never
// runs and every call returns returnValue (nil when not given).
func Skip(returnValue lua.LValue) Wrapper {
	if returnValue == nil {
		returnValue = lua.LNil
	}
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			L.Push(returnValue)
			return 1
		})
	})
}

// Substitute replaces the call with a call to replacement using the same
// arguments.
func Substitute(replacement lua.LValue) Wrapper {
	return WrapperFunc(func(L *lua.LState, name string, fn *lua.LFunction) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			args := collectArgs(L)
			rets, err := call(L, replacement, args)
			if err != nil {
				raise(L, err)
			}
			return push(L, rets)
		})
	})
}
