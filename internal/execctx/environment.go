package execctx

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// Environment is the abstract variable scope that debuggers and injected
// code evaluate against. Context implements it for instrumented frames;
// wrappers supply lighter implementations for call boundaries.
type Environment interface {
	// State returns the Lua state the environment belongs to.
	State() *lua.LState

	// Lookup resolves a visible name.
	Lookup(name string) (lua.LValue, bool)

	// Set rebinds a name so the change outlives the evaluation.
	Set(name string, v lua.LValue)

	// Names returns the visible names, sorted.
	Names() []string

	// Where describes the environment's origin for display.
	Where() string
}

// Where implements Environment.
func (c *Context) Where() string {
	return fmt.Sprintf("%s:%d", c.source, c.line)
}

// NewEnvTable builds an empty proxy table whose reads and writes are routed
// through env. Installing it as a chunk's function environment makes the
// chunk see, and mutate, the live bindings.
func NewEnvTable(L *lua.LState, env Environment) *lua.LTable {
	proxy := L.NewTable()
	mt := L.NewTable()

	mt.RawSetString("__index", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(2)
		if v, ok := env.Lookup(name); ok {
			L.Push(v)
		} else {
			L.Push(lua.LNil)
		}
		return 1
	}))
	mt.RawSetString("__newindex", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(2)
		env.Set(name, L.Get(3))
		return 0
	}))

	L.SetMetatable(proxy, mt)
	return proxy
}

// Eval compiles src under the given chunk name and runs it with env as its
// variable scope, returning any results. Used by the debugger REPL and by
// injected code fragments.
func Eval(L *lua.LState, env Environment, src, name string) ([]lua.LValue, error) {
	fn, err := L.Load(strings.NewReader(src), name)
	if err != nil {
		return nil, err
	}
	return Run(L, env, fn)
}

// Run executes an already-compiled chunk with env as its variable scope.
func Run(L *lua.LState, env Environment, fn *lua.LFunction) ([]lua.LValue, error) {
	L.SetFEnv(fn, NewEnvTable(L, env))

	top := L.GetTop()
	L.Push(fn)
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		return nil, err
	}
	nret := L.GetTop() - top
	if nret <= 0 {
		return nil, nil
	}
	results := make([]lua.LValue, nret)
	for i := 0; i < nret; i++ {
		results[i] = L.Get(top + i + 1)
	}
	L.Pop(nret)
	return results, nil
}
