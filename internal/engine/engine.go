package engine

import (
	"fmt"
	"io"
	"os"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/gumshoe/internal/instrument"
	"github.com/dshills/gumshoe/internal/logging"
	"github.com/dshills/gumshoe/internal/luart"
	"github.com/dshills/gumshoe/internal/patch"
	"github.com/dshills/gumshoe/internal/wrap"
)

// Engine owns one instrumentation run end to end.
type Engine struct {
	state    *luart.State
	reg      *instrument.Registry
	rewriter *instrument.Rewriter
	patcher  *patch.Patcher
	logger   *zap.Logger
	stdout   io.Writer
	safeLibs bool
}

// New creates an engine with a fresh Lua state, installs the dispatcher
// hook, and registers the gumshoe module for configuration scripts.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		logger: zap.NewNop(),
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}

	stateOpts := []luart.StateOption{luart.WithStdout(e.stdout)}
	if e.safeLibs {
		stateOpts = append(stateOpts, luart.WithSafeLibraries())
	}
	state, err := luart.NewState(stateOpts...)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	e.state = state
	e.reg = instrument.NewRegistry()
	e.rewriter = instrument.NewRewriter(e.reg)
	e.patcher = patch.New(state.LuaState())

	instrument.NewDispatcher(e.reg).Install(state.LuaState())
	e.installModule()
	return e, nil
}

// Close releases the Lua state.
func (e *Engine) Close() error {
	return e.state.Close()
}

// State returns the underlying Lua runtime.
func (e *Engine) State() *luart.State {
	return e.state
}

// Registry returns the run's instrumentation registry.
func (e *Engine) Registry() *instrument.Registry {
	return e.reg
}

// Enable opens the dispatch gate.
func (e *Engine) Enable() { e.reg.Enable() }

// Disable closes the dispatch gate; hooks become single-check no-ops.
func (e *Engine) Disable() { e.reg.Disable() }

// RegisterBreak attaches an interactive break to (file, line). The
// debugger name is resolved immediately; unknown names fail here, not
// mid-run. Registering any action opens the dispatch gate.
func (e *Engine) RegisterBreak(file string, line int, debuggerName string) error {
	a, err := instrument.NewBreak(debuggerName)
	if err != nil {
		return err
	}
	e.add(file, line, a)
	return nil
}

// RegisterPrint attaches a template print writing to the engine's stdout.
func (e *Engine) RegisterPrint(file string, line int, tmpl string) {
	e.add(file, line, instrument.NewPrint(tmpl, e.stdout))
}

// RegisterPrintFile attaches a template print appending to the file at
// path.
func (e *Engine) RegisterPrintFile(file string, line int, tmpl, path string) {
	e.add(file, line, instrument.NewPrintFile(tmpl, path))
}

// RegisterLog attaches a template log emission. An empty level means
// debug; an empty logName derives per firing from the source file name.
func (e *Engine) RegisterLog(file string, line int, tmpl, level, logName string) error {
	lv := zapcore.DebugLevel
	if level != "" {
		parsed, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		lv = parsed
	}
	e.add(file, line, instrument.NewLog(tmpl, e.logger, lv, logName))
	return nil
}

// RegisterCall attaches a callable invocation. pos names context variables
// bound as positional arguments; kw maps table keys to context names,
// delivered as a trailing table.
func (e *Engine) RegisterCall(file string, line int, fn lua.LValue, pos []string, kw map[string]string) error {
	if fn == nil || fn == lua.LNil {
		return fmt.Errorf("engine: call action requires a callable")
	}
	e.add(file, line, instrument.NewCall(fn, pos, kw))
	return nil
}

// RegisterInject attaches a code fragment executed in the frame's scope.
// The fragment is compiled now so syntax errors abort setup.
func (e *Engine) RegisterInject(file string, line int, src string) error {
	a, err := instrument.NewInject(e.state.LuaState(), src)
	if err != nil {
		return err
	}
	e.add(file, line, a)
	return nil
}

// RegisterComment marks lines start..end of file as commented out in the
// rewrite. end below start means the single line start.
func (e *Engine) RegisterComment(file string, start, end int) {
	e.reg.CommentOut(file, start, end)
	e.reg.Enable()
}

func (e *Engine) add(file string, line int, a instrument.Action) {
	e.reg.Add(instrument.NewLocation(file, line), a)
	e.reg.Enable()
}

// Patch wraps the function at the dotted path from module scope.
func (e *Engine) Patch(path string, w wrap.Wrapper) (string, error) {
	return e.patcher.Apply(patch.Target{Path: path}, w)
}

// PatchFunc wraps a function value, locating its container by search.
func (e *Engine) PatchFunc(fn *lua.LFunction, w wrap.Wrapper) (string, error) {
	return e.patcher.Apply(patch.Target{Fn: fn}, w)
}

// PatchNamed builds a catalog wrapper by name and applies it at path.
func (e *Engine) PatchNamed(path, wrapperName string, params wrap.Params) (string, error) {
	w, err := wrap.Build(wrapperName, params, wrap.Deps{Logger: e.logger})
	if err != nil {
		return "", err
	}
	return e.Patch(path, w)
}

// Rewrite returns the instrumented text of the target source file. The
// file on disk is never modified.
func (e *Engine) Rewrite(path string) (string, error) {
	return e.rewriter.RewriteFile(path)
}

// RunConfig executes a configuration script. The script sees the gumshoe
// module and shares globals with the target it configures.
func (e *Engine) RunConfig(path string) error {
	return e.state.DoFile(path)
}

// RunScript rewrites the target source and executes it. args become the
// script's arg table, with the script path at index 0 in the usual Lua
// convention. The gate closes when the run ends, so post-run evaluation in
// the shared state is not instrumented.
func (e *Engine) RunScript(path string, args []string) error {
	src, err := e.Rewrite(path)
	if err != nil {
		return err
	}
	defer e.reg.Disable()

	L := e.state.LuaState()
	argT := L.NewTable()
	argT.RawSetInt(0, lua.LString(path))
	for i, a := range args {
		argT.RawSetInt(i+1, lua.LString(a))
	}
	e.state.SetGlobal("arg", argT)

	return e.state.DoChunk(src, path)
}
