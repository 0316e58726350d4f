package instrument_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/gumshoe/internal/instrument"
)

func TestRewriteInsertsHookBeforeLine(t *testing.T) {
	reg := instrument.NewRegistry()
	reg.Add(instrument.NewLocation("job.lua", 2), &markAction{})
	rw := instrument.NewRewriter(reg)

	src := "local x = 1\nx = x + 1\nprint(x)\n"
	got := rw.Rewrite(src, "job.lua")

	want := "local x = 1\n" +
		instrument.HookGlobal + "(\"job.lua\", 2)\n" +
		"x = x + 1\nprint(x)\n"
	if got != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, got)
	}
}

func TestRewriteKeepsIndentation(t *testing.T) {
	reg := instrument.NewRegistry()
	reg.Add(instrument.NewLocation("job.lua", 2), &markAction{})
	rw := instrument.NewRewriter(reg)

	src := "for i = 1, 3 do\n\t\ttotal = total + i\nend\n"
	got := rw.Rewrite(src, "job.lua")

	if !strings.Contains(got, "\t\t"+instrument.HookGlobal+"(\"job.lua\", 2)\n\t\ttotal") {
		t.Errorf("expected hook at line indentation, got:\n%q", got)
	}
}

func TestRewriteUntouchedWithoutRegistrations(t *testing.T) {
	reg := instrument.NewRegistry()
	rw := instrument.NewRewriter(reg)

	src := "local x = 1\n  x = x + 1\nprint(x)"
	if got := rw.Rewrite(src, "job.lua"); got != src {
		t.Errorf("expected byte-identical output, got:\n%q", got)
	}
}

func TestRewriteCommentsOutLines(t *testing.T) {
	reg := instrument.NewRegistry()
	reg.CommentOut("job.lua", 2, 3)
	rw := instrument.NewRewriter(reg)

	src := "a()\n  b()\nc()\nd()\n"
	got := rw.Rewrite(src, "job.lua")

	want := "a()\n  -- b()\n-- c()\nd()\n"
	if got != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, got)
	}
}

func TestRewriteIgnoresRegistrationsPastEOF(t *testing.T) {
	reg := instrument.NewRegistry()
	reg.Add(instrument.NewLocation("job.lua", 99), &markAction{})
	rw := instrument.NewRewriter(reg)

	src := "print(1)\n"
	if got := rw.Rewrite(src, "job.lua"); got != src {
		t.Errorf("expected stale registration to be ignored, got:\n%q", got)
	}
}

func TestRewriteQuotesFilePath(t *testing.T) {
	file := `dir\job.lua`
	reg := instrument.NewRegistry()
	reg.Add(instrument.NewLocation(file, 1), &markAction{})
	rw := instrument.NewRewriter(reg)

	got := rw.Rewrite("print(1)\n", file)
	if !strings.Contains(got, `"dir\\job.lua"`) {
		t.Errorf("expected escaped path in hook call, got:\n%q", got)
	}
}

func TestRewriteFileMissing(t *testing.T) {
	rw := instrument.NewRewriter(instrument.NewRegistry())
	_, err := rw.RewriteFile("does/not/exist.lua")
	if !errors.Is(err, instrument.ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestRewritePreservesMissingTrailingNewline(t *testing.T) {
	reg := instrument.NewRegistry()
	reg.Add(instrument.NewLocation("job.lua", 1), &markAction{})
	rw := instrument.NewRewriter(reg)

	got := rw.Rewrite("print(1)", "job.lua")
	want := instrument.HookGlobal + "(\"job.lua\", 1)\nprint(1)"
	if got != want {
		t.Errorf("expected:\n%q\ngot:\n%q", want, got)
	}
}
