package debugger_test

import (
	"bytes"
	"errors"
	"sort"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gumshoe/internal/debugger"
)

// stubEnv is a map-backed environment over a real Lua state.
type stubEnv struct {
	l    *lua.LState
	vars map[string]lua.LValue
}

func newStubEnv(t *testing.T) *stubEnv {
	t.Helper()
	L := lua.NewState()
	t.Cleanup(L.Close)
	return &stubEnv{l: L, vars: map[string]lua.LValue{}}
}

func (e *stubEnv) State() *lua.LState { return e.l }

func (e *stubEnv) Lookup(name string) (lua.LValue, bool) {
	v, ok := e.vars[name]
	if !ok {
		return lua.LNil, false
	}
	return v, true
}

func (e *stubEnv) Set(name string, v lua.LValue) { e.vars[name] = v }

func (e *stubEnv) Names() []string {
	names := make([]string, 0, len(e.vars))
	for name := range e.vars {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *stubEnv) Where() string { return "job.lua:3" }

func session(t *testing.T, env *stubEnv, input string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	repl := debugger.NewREPL(
		debugger.WithInput(strings.NewReader(input)),
		debugger.WithOutput(&out),
	)
	err := repl.Break(env)
	return out.String(), err
}

func TestREPLContinue(t *testing.T) {
	env := newStubEnv(t)
	out, err := session(t, env, "c\n")
	if err != nil {
		t.Fatalf("Break returned error: %v", err)
	}
	if !strings.Contains(out, "break at job.lua:3") {
		t.Errorf("expected break banner, got %q", out)
	}
}

func TestREPLQuit(t *testing.T) {
	env := newStubEnv(t)
	_, err := session(t, env, "q\n")
	if !errors.Is(err, debugger.ErrQuit) {
		t.Fatalf("expected ErrQuit, got %v", err)
	}
}

func TestREPLEOFResumes(t *testing.T) {
	env := newStubEnv(t)
	if _, err := session(t, env, ""); err != nil {
		t.Fatalf("expected EOF to resume, got %v", err)
	}
}

func TestREPLEvalExpression(t *testing.T) {
	env := newStubEnv(t)
	env.vars["x"] = lua.LNumber(7)

	out, err := session(t, env, "p x + 1\nc\n")
	if err != nil {
		t.Fatalf("Break returned error: %v", err)
	}
	if !strings.Contains(out, "8") {
		t.Errorf("expected evaluated result in output, got %q", out)
	}
}

func TestREPLStatementMutates(t *testing.T) {
	env := newStubEnv(t)
	env.vars["x"] = lua.LNumber(1)

	if _, err := session(t, env, "! x = 5\nc\n"); err != nil {
		t.Fatalf("Break returned error: %v", err)
	}
	if env.vars["x"] != lua.LNumber(5) {
		t.Errorf("expected statement to mutate binding, got %v", env.vars["x"])
	}
}

func TestREPLWhereAndLocals(t *testing.T) {
	env := newStubEnv(t)
	env.vars["total"] = lua.LNumber(9)

	out, err := session(t, env, "where\nlocals\nc\n")
	if err != nil {
		t.Fatalf("Break returned error: %v", err)
	}
	if !strings.Contains(out, "job.lua:3") {
		t.Errorf("expected location in output, got %q", out)
	}
	if !strings.Contains(out, "total = 9") {
		t.Errorf("expected locals listing, got %q", out)
	}
}

func TestREPLBadExpression(t *testing.T) {
	env := newStubEnv(t)
	out, err := session(t, env, "p )(\nc\n")
	if err != nil {
		t.Fatalf("Break returned error: %v", err)
	}
	if !strings.Contains(out, "error:") {
		t.Errorf("expected error report, got %q", out)
	}
}

func TestLookupUnknownDebugger(t *testing.T) {
	if _, err := debugger.Lookup("holodeck"); !errors.Is(err, debugger.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestLookupDefault(t *testing.T) {
	d, err := debugger.Lookup("")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if d == nil {
		t.Fatal("expected default debugger")
	}
}
