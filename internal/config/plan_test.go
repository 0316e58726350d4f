package config_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
	"github.com/tidwall/gjson"

	"github.com/dshills/gumshoe/internal/config"
	"github.com/dshills/gumshoe/internal/engine"
)

func newEngine(t *testing.T) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.WithStdout(&bytes.Buffer{}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestApplyPlan(t *testing.T) {
	eng := newEngine(t)

	plan := `{
  "actions": [
    {"kind": "print", "file": "job.lua", "line": 3, "format": "{total}"},
    {"kind": "log", "file": "job.lua", "line": 5, "format": "done", "level": "info"},
    {"kind": "inject", "file": "job.lua", "line": 5, "code": "x = 1"},
    {"kind": "break", "file": "job.lua", "line": 7},
    {"kind": "comment", "file": "job.lua", "start": 10, "stop": 12}
  ]
}`
	if err := config.Apply(eng, []byte(plan)); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	reg := eng.Registry()
	if reg.Count() != 4 {
		t.Errorf("expected 4 actions, got %d", reg.Count())
	}
	if !reg.Enabled() {
		t.Error("expected registrations to open the gate")
	}
	if !reg.IsCommented("job.lua", 11) {
		t.Error("expected commented range")
	}
}

func TestApplyPlanDisabled(t *testing.T) {
	eng := newEngine(t)

	plan := `{
  "enabled": false,
  "actions": [{"kind": "print", "file": "job.lua", "line": 1, "format": "x"}]
}`
	if err := config.Apply(eng, []byte(plan)); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}
	if eng.Registry().Enabled() {
		t.Error("expected explicit enabled=false to close the gate")
	}
}

func TestApplyPlanTap(t *testing.T) {
	eng := newEngine(t)
	if err := eng.State().DoString(`utils = { work = function(x) return x end }`); err != nil {
		t.Fatalf("DoString returned error: %v", err)
	}

	plan := `{
  "taps": [{"path": "utils.work", "wrapper": "skip", "params": {"returnValue": "off"}}]
}`
	if err := config.Apply(eng, []byte(plan)); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	if err := eng.State().DoString(`r = utils.work(1)`); err != nil {
		t.Fatalf("DoString returned error: %v", err)
	}
	if got := eng.State().GetGlobal("r"); got != lua.LString("off") {
		t.Errorf("expected tap applied from plan, got %v", got)
	}
}

func TestApplyPlanRejectsInvalidJSON(t *testing.T) {
	eng := newEngine(t)
	if err := config.Apply(eng, []byte(`{nope`)); !errors.Is(err, config.ErrBadPlan) {
		t.Fatalf("expected ErrBadPlan, got %v", err)
	}
}

func TestApplyPlanRejectsUnknownKind(t *testing.T) {
	eng := newEngine(t)
	plan := `{"actions": [{"kind": "teleport", "file": "job.lua", "line": 1}]}`
	if err := config.Apply(eng, []byte(plan)); !errors.Is(err, config.ErrBadPlan) {
		t.Fatalf("expected ErrBadPlan, got %v", err)
	}
}

func TestApplyPlanRejectsCallKind(t *testing.T) {
	eng := newEngine(t)
	plan := `{"actions": [{"kind": "call", "file": "job.lua", "line": 1}]}`
	err := config.Apply(eng, []byte(plan))
	if !errors.Is(err, config.ErrBadPlan) {
		t.Fatalf("expected ErrBadPlan, got %v", err)
	}
	if !strings.Contains(err.Error(), "configuration script") {
		t.Errorf("expected hint toward the script surface, got %v", err)
	}
}

func TestApplyPlanValidatesLocation(t *testing.T) {
	eng := newEngine(t)
	plan := `{"actions": [{"kind": "print", "format": "x", "line": 1}]}`
	if err := config.Apply(eng, []byte(plan)); !errors.Is(err, config.ErrBadPlan) {
		t.Fatalf("expected ErrBadPlan for missing file, got %v", err)
	}
}

func TestDumpRoundTrip(t *testing.T) {
	eng := newEngine(t)

	plan := `{
  "actions": [
    {"kind": "print", "file": "job.lua", "line": 3, "format": "{total}", "path": "trace.out"},
    {"kind": "log", "file": "job.lua", "line": 5, "format": "done", "level": "warn", "logName": "jobs"},
    {"kind": "inject", "file": "job.lua", "line": 6, "code": "x = 1"},
    {"kind": "break", "file": "job.lua", "line": 7},
    {"kind": "comment", "file": "job.lua", "start": 10, "stop": 12}
  ]
}`
	if err := config.Apply(eng, []byte(plan)); err != nil {
		t.Fatalf("Apply returned error: %v", err)
	}

	out, err := config.Dump(eng)
	if err != nil {
		t.Fatalf("Dump returned error: %v", err)
	}

	doc := gjson.ParseBytes(out)
	if !doc.Get("enabled").Bool() {
		t.Error("expected enabled=true in dump")
	}
	actions := doc.Get("actions").Array()
	if len(actions) != 5 {
		t.Fatalf("expected 5 dumped actions, got %d:\n%s", len(actions), out)
	}

	kinds := map[string]bool{}
	for _, a := range actions {
		kinds[a.Get("kind").String()] = true
	}
	for _, want := range []string{"print", "log", "inject", "break", "comment"} {
		if !kinds[want] {
			t.Errorf("expected dumped kind %q in %s", want, out)
		}
	}

	// Spot-check field fidelity.
	for _, a := range actions {
		switch a.Get("kind").String() {
		case "log":
			if a.Get("level").String() != "warn" || a.Get("logName").String() != "jobs" {
				t.Errorf("log entry lost fields: %s", a.Raw)
			}
		case "print":
			if a.Get("path").String() != "trace.out" {
				t.Errorf("print entry lost path: %s", a.Raw)
			}
		case "comment":
			if a.Get("start").Int() != 10 || a.Get("stop").Int() != 12 {
				t.Errorf("comment entry lost range: %s", a.Raw)
			}
		case "break":
			if a.Get("debugger").String() != "repl" {
				t.Errorf("break entry lost debugger: %s", a.Raw)
			}
		}
	}

	// A dumped plan applies cleanly to a fresh engine.
	fresh := newEngine(t)
	if err := config.Apply(fresh, out); err != nil {
		t.Fatalf("re-Apply returned error: %v", err)
	}
	if fresh.Registry().Count() != eng.Registry().Count() {
		t.Errorf("expected identical counts after round trip")
	}
}
