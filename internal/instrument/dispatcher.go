package instrument

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gumshoe/internal/execctx"
)

// Dispatcher is the runtime half of instrumentation. Installed into the
// Lua state under HookGlobal, it is invoked with (file, line) every time
// execution reaches an instrumented line, and runs that location's actions
// in registration order against the captured execution context.
type Dispatcher struct {
	reg *Registry
}

// NewDispatcher creates a dispatcher over the registry.
func NewDispatcher(reg *Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Install binds the hook function into the state under HookGlobal.
func (d *Dispatcher) Install(L *lua.LState) {
	L.SetGlobal(HookGlobal, L.NewFunction(d.hook))
}

// hook fires the actions for one instrumented line. With the gate closed
// it returns after a single boolean check. Action errors are raised as Lua
// errors so they propagate into the target's call stack unmodified, never
// swallowed.
func (d *Dispatcher) hook(L *lua.LState) int {
	if !d.reg.Enabled() {
		return 0
	}

	file := L.CheckString(1)
	line := L.CheckInt(2)

	actions := d.reg.At(file, line)
	if len(actions) == 0 {
		return 0
	}

	ctx, err := execctx.Capture(L, file, line)
	if err != nil {
		L.RaiseError("%v", err)
		return 0
	}

	for _, a := range actions {
		if err := a.Apply(ctx); err != nil {
			L.RaiseError("%v", err)
			return 0
		}
	}
	return 0
}
