package scope_test

import (
	"errors"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gumshoe/internal/scope"
)

func setupGraph(t *testing.T) (*lua.LState, *lua.LTable, *lua.LFunction) {
	t.Helper()

	L := lua.NewState()
	t.Cleanup(L.Close)

	if err := L.DoString(`
utils = {
  work = function() return 1 end,
  inner = {
    helper = function() return 2 end,
  },
}
top = function() return 3 end
`); err != nil {
		t.Fatalf("DoString returned error: %v", err)
	}

	root := L.Get(lua.GlobalsIndex).(*lua.LTable)
	work := root.RawGetString("utils").(*lua.LTable).RawGetString("work").(*lua.LFunction)
	return L, root, work
}

func TestResolveFastPath(t *testing.T) {
	_, root, work := setupGraph(t)
	r := scope.NewResolver()

	container, key, err := r.Resolve(root, work, "utils.work")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if key != "work" {
		t.Errorf("expected key work, got %q", key)
	}
	if container.RawGetString("work") != work {
		t.Error("expected container to hold the target")
	}
}

func TestResolvePathOnly(t *testing.T) {
	_, root, _ := setupGraph(t)
	r := scope.NewResolver()

	container, key, err := r.Resolve(root, nil, "utils.inner.helper")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if key != "helper" {
		t.Errorf("expected key helper, got %q", key)
	}
	if container.RawGetString(key).Type() != lua.LTFunction {
		t.Error("expected resolved slot to hold a function")
	}
}

func TestResolvePathToNonFunction(t *testing.T) {
	_, root, _ := setupGraph(t)
	r := scope.NewResolver()

	if _, _, err := r.Resolve(root, nil, "utils.inner"); !errors.Is(err, scope.ErrAmbiguous) {
		t.Fatalf("expected ErrAmbiguous, got %v", err)
	}
}

func TestResolveBySearch(t *testing.T) {
	_, root, _ := setupGraph(t)
	r := scope.NewResolver()

	helper := root.RawGetString("utils").(*lua.LTable).
		RawGetString("inner").(*lua.LTable).
		RawGetString("helper").(*lua.LFunction)

	container, key, err := r.Resolve(root, helper, "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if key != "helper" {
		t.Errorf("expected key helper, got %q", key)
	}
	if container.RawGetString(key) != helper {
		t.Error("expected container slot to hold target")
	}
}

func TestResolveStalePathFallsBackToSearch(t *testing.T) {
	_, root, work := setupGraph(t)
	r := scope.NewResolver()

	// The hint is wrong but the function value is known, so the search
	// still locates its real container.
	container, key, err := r.Resolve(root, work, "wrong.place")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if key != "work" || container.RawGetString(key) != work {
		t.Errorf("expected fallback search to find work, got key %q", key)
	}
}

func TestResolveTopLevel(t *testing.T) {
	_, root, _ := setupGraph(t)
	r := scope.NewResolver()

	top := root.RawGetString("top").(*lua.LFunction)
	container, key, err := r.Resolve(root, top, "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if key != "top" || container != root {
		t.Errorf("expected root container with key top, got %q", key)
	}
}

func TestResolveNotFound(t *testing.T) {
	L, root, _ := setupGraph(t)
	r := scope.NewResolver()

	orphan := L.NewFunction(func(L *lua.LState) int { return 0 })
	if _, _, err := r.Resolve(root, orphan, ""); !errors.Is(err, scope.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolveDepthLimit(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`
deep = { a = { b = { c = { fn = function() return 1 end } } } }
`); err != nil {
		t.Fatalf("DoString returned error: %v", err)
	}
	root := L.Get(lua.GlobalsIndex).(*lua.LTable)
	fn := root.RawGetString("deep").(*lua.LTable).
		RawGetString("a").(*lua.LTable).
		RawGetString("b").(*lua.LTable).
		RawGetString("c").(*lua.LTable).
		RawGetString("fn").(*lua.LFunction)

	shallow := scope.NewResolver(scope.WithDepthLimit(2))
	if _, _, err := shallow.Resolve(root, fn, ""); !errors.Is(err, scope.ErrNotFound) {
		t.Fatalf("expected ErrNotFound under shallow cap, got %v", err)
	}

	deep := scope.NewResolver(scope.WithDepthLimit(10))
	if _, key, err := deep.Resolve(root, fn, ""); err != nil || key != "fn" {
		t.Fatalf("expected deep resolver to find fn, got key %q err %v", key, err)
	}
}

func TestResolveSurvivesCycles(t *testing.T) {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoString(`
a = {}
b = { back = a }
a.forward = b
a.fn = function() return 1 end
`); err != nil {
		t.Fatalf("DoString returned error: %v", err)
	}
	root := L.Get(lua.GlobalsIndex).(*lua.LTable)
	fn := root.RawGetString("a").(*lua.LTable).RawGetString("fn").(*lua.LFunction)

	r := scope.NewResolver()
	container, key, err := r.Resolve(root, fn, "")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if key != "fn" || container.RawGetString(key) != fn {
		t.Errorf("expected fn in table a, got key %q", key)
	}
}
