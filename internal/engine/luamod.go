package engine

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gumshoe/internal/wrap"
)

// ModuleName is the global table configuration scripts use.
const ModuleName = "gumshoe"

// installModule binds the registration surface into the state:
//
//	gumshoe.break_at(file, line [, debugger])
//	gumshoe.print_at(file, line, fmt [, path])
//	gumshoe.log_at(file, line, fmt [, level [, logName]])
//	gumshoe.call_at(file, line, fn [, args [, kwargs]])
//	gumshoe.inject_at(file, line, code)
//	gumshoe.comment_at(file, start [, stop])
//	gumshoe.tap(path, wrapper [, params])
//	gumshoe.enable() / gumshoe.disable()
//
// Registration errors are raised as Lua errors so a broken configuration
// script fails loudly at setup.
func (e *Engine) installModule() {
	e.state.RegisterModule(ModuleName, map[string]lua.LGFunction{
		"break_at":   e.luaBreakAt,
		"print_at":   e.luaPrintAt,
		"log_at":     e.luaLogAt,
		"call_at":    e.luaCallAt,
		"inject_at":  e.luaInjectAt,
		"comment_at": e.luaCommentAt,
		"tap":        e.luaTap,
		"enable":     e.luaEnable,
		"disable":    e.luaDisable,
	})
}

func (e *Engine) luaBreakAt(L *lua.LState) int {
	file := L.CheckString(1)
	line := L.CheckInt(2)
	dbg := L.OptString(3, "")
	if err := e.RegisterBreak(file, line, dbg); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (e *Engine) luaPrintAt(L *lua.LState) int {
	file := L.CheckString(1)
	line := L.CheckInt(2)
	tmpl := L.CheckString(3)
	path := L.OptString(4, "")
	if path != "" {
		e.RegisterPrintFile(file, line, tmpl, path)
	} else {
		e.RegisterPrint(file, line, tmpl)
	}
	return 0
}

func (e *Engine) luaLogAt(L *lua.LState) int {
	file := L.CheckString(1)
	line := L.CheckInt(2)
	tmpl := L.CheckString(3)
	level := L.OptString(4, "")
	logName := L.OptString(5, "")
	if err := e.RegisterLog(file, line, tmpl, level, logName); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (e *Engine) luaCallAt(L *lua.LState) int {
	file := L.CheckString(1)
	line := L.CheckInt(2)
	fn := L.CheckAny(3)

	var pos []string
	if t := L.OptTable(4, nil); t != nil {
		t.ForEach(func(_, v lua.LValue) {
			if s, ok := v.(lua.LString); ok {
				pos = append(pos, string(s))
			}
		})
	}
	var kw map[string]string
	if t := L.OptTable(5, nil); t != nil {
		kw = make(map[string]string)
		t.ForEach(func(k, v lua.LValue) {
			ks, kok := k.(lua.LString)
			vs, vok := v.(lua.LString)
			if kok && vok {
				kw[string(ks)] = string(vs)
			}
		})
	}

	if err := e.RegisterCall(file, line, fn, pos, kw); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (e *Engine) luaInjectAt(L *lua.LState) int {
	file := L.CheckString(1)
	line := L.CheckInt(2)
	code := L.CheckString(3)
	if err := e.RegisterInject(file, line, code); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (e *Engine) luaCommentAt(L *lua.LState) int {
	file := L.CheckString(1)
	start := L.CheckInt(2)
	stop := L.OptInt(3, start)
	e.RegisterComment(file, start, stop)
	return 0
}

func (e *Engine) luaTap(L *lua.LState) int {
	path := L.CheckString(1)
	wrapper := L.CheckString(2)
	params := tableParams(L.OptTable(3, nil))
	if _, err := e.PatchNamed(path, wrapper, params); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (e *Engine) luaEnable(L *lua.LState) int {
	e.Enable()
	return 0
}

func (e *Engine) luaDisable(L *lua.LState) int {
	e.Disable()
	return 0
}

// tableParams flattens a params table's string-keyed slots.
func tableParams(t *lua.LTable) wrap.Params {
	if t == nil {
		return nil
	}
	p := make(wrap.Params)
	t.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			p[string(ks)] = v
		}
	})
	return p
}
