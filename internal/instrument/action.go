package instrument

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/gumshoe/internal/debugger"
	"github.com/dshills/gumshoe/internal/execctx"
	"github.com/dshills/gumshoe/internal/format"
)

// Action is a behavior attached to an instrumented line. Apply runs against
// the live execution context; errors propagate into the target's call stack
// rather than being swallowed, so instrumentation bugs stay visible.
type Action interface {
	// Kind names the variant for plan dumps and diagnostics.
	Kind() string

	// Apply executes the action against the live context.
	Apply(ctx *execctx.Context) error
}

// BreakAction suspends the target into an interactive debug session.
type BreakAction struct {
	name string
	dbg  debugger.Debugger
}

// NewBreak resolves the named debugger at registration time; an unknown
// name aborts setup with debugger.ErrUnsupported.
func NewBreak(debuggerName string) (*BreakAction, error) {
	dbg, err := debugger.Lookup(debuggerName)
	if err != nil {
		return nil, err
	}
	if debuggerName == "" {
		debuggerName = debugger.DefaultName
	}
	return &BreakAction{name: debuggerName, dbg: dbg}, nil
}

func (a *BreakAction) Kind() string { return "break" }

// DebuggerName returns the debugger this action breaks into.
func (a *BreakAction) DebuggerName() string { return a.name }

// Apply blocks the executing goroutine until the session resumes.
func (a *BreakAction) Apply(ctx *execctx.Context) error {
	return a.dbg.Break(ctx)
}

// PrintAction renders a template against the context and writes one line.
type PrintAction struct {
	tmpl string
	w    io.Writer
	path string
}

// NewPrint writes rendered lines to w.
func NewPrint(tmpl string, w io.Writer) *PrintAction {
	return &PrintAction{tmpl: tmpl, w: w}
}

// NewPrintFile appends rendered lines to the file at path, opening and
// closing it on every firing so output survives an aborted run.
func NewPrintFile(tmpl, path string) *PrintAction {
	return &PrintAction{tmpl: tmpl, path: path}
}

func (a *PrintAction) Kind() string { return "print" }

// Template returns the print template.
func (a *PrintAction) Template() string { return a.tmpl }

// FilePath returns the destination path, or "" for a stream destination.
func (a *PrintAction) FilePath() string { return a.path }

func (a *PrintAction) Apply(ctx *execctx.Context) error {
	msg, err := format.Render(a.tmpl, ctx.FormatLookup())
	if err != nil {
		return err
	}

	if a.path != "" {
		f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = fmt.Fprintln(f, msg)
		return err
	}

	_, err = fmt.Fprintln(a.w, msg)
	return err
}

// LogAction renders a template and emits it through a named zap logger.
type LogAction struct {
	tmpl   string
	level  zapcore.Level
	name   string
	logger *zap.Logger
}

// NewLog creates a log action. An empty name defaults, per firing, to the
// base name of the instrumented source file.
func NewLog(tmpl string, logger *zap.Logger, level zapcore.Level, name string) *LogAction {
	return &LogAction{tmpl: tmpl, level: level, name: name, logger: logger}
}

func (a *LogAction) Kind() string { return "log" }

// Template returns the log template.
func (a *LogAction) Template() string { return a.tmpl }

// Level returns the emission level.
func (a *LogAction) Level() zapcore.Level { return a.level }

// LoggerName returns the configured logger name, or "" for the default.
func (a *LogAction) LoggerName() string { return a.name }

func (a *LogAction) Apply(ctx *execctx.Context) error {
	msg, err := format.Render(a.tmpl, ctx.FormatLookup())
	if err != nil {
		return err
	}

	name := a.name
	if name == "" {
		name = sourceLogName(ctx.Source())
	}
	if ce := a.logger.Named(name).Check(a.level, msg); ce != nil {
		ce.Write()
	}
	return nil
}

// sourceLogName derives the default logger name from the target source
// path, the module-name analog.
func sourceLogName(source string) string {
	base := filepath.Base(source)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CallAction invokes a callable with arguments resolved by name from the
// context. Keyword bindings are delivered as a trailing table.
type CallAction struct {
	fn  lua.LValue
	pos []string
	kw  map[string]string
}

// NewCall creates a call action. pos lists context names bound in order;
// kw maps table keys to context names.
func NewCall(fn lua.LValue, pos []string, kw map[string]string) *CallAction {
	return &CallAction{fn: fn, pos: pos, kw: kw}
}

func (a *CallAction) Kind() string { return "call" }

func (a *CallAction) Apply(ctx *execctx.Context) error {
	L := ctx.State()

	args := make([]lua.LValue, 0, len(a.pos)+1)
	for _, name := range a.pos {
		v, ok := ctx.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnboundName, name)
		}
		args = append(args, v)
	}

	if len(a.kw) > 0 {
		kwargs := L.NewTable()
		for key, name := range a.kw {
			v, ok := ctx.Lookup(name)
			if !ok {
				return fmt.Errorf("%w: %q", ErrUnboundName, name)
			}
			kwargs.RawSetString(key, v)
		}
		args = append(args, kwargs)
	}

	// Result is discarded by contract.
	return L.CallByParam(lua.P{Fn: a.fn, NRet: 0, Protect: true}, args...)
}

// InjectAction executes a code fragment against the live context. The
// fragment is compiled once at registration; at firing it runs with the
// frame's bindings as its scope, so assignments persist into the
// continuing program.
type InjectAction struct {
	src string
	fn  *lua.LFunction
}

// NewInject compiles the fragment immediately so syntax errors abort setup.
func NewInject(L *lua.LState, src string) (*InjectAction, error) {
	fn, err := L.Load(strings.NewReader(src), "=(inject)")
	if err != nil {
		return nil, err
	}
	return &InjectAction{src: src, fn: fn}, nil
}

func (a *InjectAction) Kind() string { return "inject" }

// Source returns the original fragment text.
func (a *InjectAction) Source() string { return a.src }

func (a *InjectAction) Apply(ctx *execctx.Context) error {
	_, err := execctx.Run(ctx.State(), ctx, a.fn)
	return err
}
