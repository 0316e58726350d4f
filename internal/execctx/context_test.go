package execctx_test

import (
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gumshoe/internal/execctx"
)

// probeState runs src with a probe() global that captures the live frame
// and hands it to fn while the frame is still on the stack.
func probeState(t *testing.T, src string, fn func(L *lua.LState, ctx *execctx.Context)) *lua.LState {
	t.Helper()

	L := lua.NewState()
	t.Cleanup(L.Close)

	called := false
	L.SetGlobal("probe", L.NewFunction(func(L *lua.LState) int {
		called = true
		ctx, err := execctx.Capture(L, "job.lua", 3)
		if err != nil {
			t.Fatalf("Capture returned error: %v", err)
		}
		fn(L, ctx)
		return 0
	}))

	if err := L.DoString(src); err != nil {
		t.Fatalf("DoString returned error: %v", err)
	}
	if !called {
		t.Fatal("probe never fired")
	}
	return L
}

func TestCaptureSeesLocalsAndGlobals(t *testing.T) {
	src := `
g = "global"
local x = 7
probe()
`
	probeState(t, src, func(L *lua.LState, ctx *execctx.Context) {
		v, ok := ctx.Lookup("x")
		if !ok || v != lua.LNumber(7) {
			t.Errorf("x: got %v (bound=%v)", v, ok)
		}
		v, ok = ctx.Lookup("g")
		if !ok || v != lua.LString("global") {
			t.Errorf("g: got %v (bound=%v)", v, ok)
		}
		if _, ok := ctx.Lookup("absent"); ok {
			t.Error("expected absent name to be unbound")
		}
	})
}

func TestLocalsShadowGlobals(t *testing.T) {
	src := `
x = "global"
local x = "local"
probe()
`
	probeState(t, src, func(L *lua.LState, ctx *execctx.Context) {
		v, _ := ctx.Lookup("x")
		if v != lua.LString("local") {
			t.Errorf("expected local binding to shadow global, got %v", v)
		}
	})
}

func TestSetWritesBack(t *testing.T) {
	src := `
local x = 7
probe()
result = x
`
	L := probeState(t, src, func(L *lua.LState, ctx *execctx.Context) {
		ctx.Set("x", lua.LNumber(41))
		ctx.Set("flag", lua.LTrue)
	})

	if got := L.GetGlobal("result"); got != lua.LNumber(41) {
		t.Errorf("expected local write-back to persist, got %v", got)
	}
	if got := L.GetGlobal("flag"); got != lua.LTrue {
		t.Errorf("expected global write for unknown name, got %v", got)
	}
}

func TestEvalReadsAndMutatesFrame(t *testing.T) {
	src := `
local x = 10
probe()
result = x
`
	L := probeState(t, src, func(L *lua.LState, ctx *execctx.Context) {
		results, err := execctx.Eval(L, ctx, "return x + 1", "=(test)")
		if err != nil {
			t.Fatalf("Eval returned error: %v", err)
		}
		if len(results) != 1 || results[0] != lua.LNumber(11) {
			t.Errorf("expected 11, got %v", results)
		}

		if _, err := execctx.Eval(L, ctx, "x = x * 2", "=(test)"); err != nil {
			t.Fatalf("Eval statement returned error: %v", err)
		}
	})

	if got := L.GetGlobal("result"); got != lua.LNumber(20) {
		t.Errorf("expected mutation to persist, got %v", got)
	}
}

func TestFormatLookup(t *testing.T) {
	src := `
local msg = "Hello"
probe()
`
	probeState(t, src, func(L *lua.LState, ctx *execctx.Context) {
		lookup := ctx.FormatLookup()
		got, ok := lookup("msg")
		if !ok || got != "Hello" {
			t.Errorf("msg: got %q (bound=%v)", got, ok)
		}
		if _, ok := lookup("nope"); ok {
			t.Error("expected unbound name")
		}
	})
}

func TestLocalNamesOrder(t *testing.T) {
	src := `
local a = 1
local b = 2
probe()
`
	probeState(t, src, func(L *lua.LState, ctx *execctx.Context) {
		names := ctx.LocalNames()
		if len(names) < 2 || names[0] != "a" || names[1] != "b" {
			t.Errorf("expected declaration order [a b], got %v", names)
		}
	})
}

func TestCaptureOutsideLuaFrame(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if _, err := execctx.Capture(L, "job.lua", 1); err == nil {
		t.Fatal("expected error with no Lua frame on the stack")
	}
}
