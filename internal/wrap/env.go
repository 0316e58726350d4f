package wrap

import (
	"fmt"
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// callEnv is the variable scope a break wrapper exposes to its debugger:
// the call's arguments bound as arg1..argN, plus trigger-specific bindings
// such as result or exception, with globals behind them.
type callEnv struct {
	l     *lua.LState
	where string
	vars  map[string]lua.LValue
}

func newCallEnv(L *lua.LState, name, phase string, args []lua.LValue) *callEnv {
	env := &callEnv{
		l:     L,
		where: fmt.Sprintf("%s (%s)", name, phase),
		vars:  make(map[string]lua.LValue, len(args)+1),
	}
	for i, a := range args {
		env.vars[fmt.Sprintf("arg%d", i+1)] = a
	}
	return env
}

func (e *callEnv) bind(name string, v lua.LValue) {
	e.vars[name] = v
}

// State implements execctx.Environment.
func (e *callEnv) State() *lua.LState { return e.l }

// Lookup implements execctx.Environment. Call bindings shadow globals.
func (e *callEnv) Lookup(name string) (lua.LValue, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	if v := e.l.GetGlobal(name); v != lua.LNil {
		return v, true
	}
	return lua.LNil, false
}

// Set implements execctx.Environment. Writes to a call binding stay in the
// session; everything else lands in globals.
func (e *callEnv) Set(name string, v lua.LValue) {
	if _, ok := e.vars[name]; ok {
		e.vars[name] = v
		return
	}
	e.l.SetGlobal(name, v)
}

// Names implements execctx.Environment.
func (e *callEnv) Names() []string {
	return e.LocalNames()
}

// LocalNames returns the call bindings, sorted.
func (e *callEnv) LocalNames() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Where implements execctx.Environment.
func (e *callEnv) Where() string { return e.where }
