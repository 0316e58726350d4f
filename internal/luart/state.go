package luart

import (
	"fmt"
	"io"
	"os"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// State wraps a gopher-lua LState for use as the target-program runtime.
//
// Unlike a plugin sandbox, the full standard library is open by default:
// target scripts are ordinary programs and are expected to use io, os, and
// require. WithSafeLibraries restricts the state to the side-effect-free
// base libraries for callers that run untrusted configuration.
type State struct {
	L *lua.LState

	stdout   io.Writer
	safeLibs bool
	closed   bool
}

// StateOption configures a State.
type StateOption func(*State)

// WithStdout redirects the Lua print() builtin to w. The default is
// os.Stdout.
func WithStdout(w io.Writer) StateOption {
	return func(s *State) {
		s.stdout = w
	}
}

// WithSafeLibraries opens only the base, table, string, and math libraries,
// leaving out io, os, debug, and package.
func WithSafeLibraries() StateOption {
	return func(s *State) {
		s.safeLibs = true
	}
}

// NewState creates a new Lua state for running target programs.
func NewState(opts ...StateOption) (*State, error) {
	state := &State{
		stdout: os.Stdout,
	}
	for _, opt := range opts {
		opt(state)
	}

	if state.safeLibs {
		L := lua.NewState(lua.Options{SkipOpenLibs: true})
		lua.OpenBase(L)
		lua.OpenTable(L)
		lua.OpenString(L)
		lua.OpenMath(L)
		state.L = L
	} else {
		state.L = lua.NewState()
	}

	state.installPrint()
	return state, nil
}

// installPrint rebinds print() to the configured stdout writer.
func (s *State) installPrint() {
	L := s.L
	L.SetGlobal("print", L.NewFunction(func(L *lua.LState) int {
		top := L.GetTop()
		parts := make([]string, top)
		for i := 1; i <= top; i++ {
			parts[i-1] = L.ToStringMeta(L.Get(i)).String()
		}
		fmt.Fprintln(s.stdout, strings.Join(parts, "\t"))
		return 0
	}))
}

// Stdout returns the writer print() is bound to.
func (s *State) Stdout() io.Writer {
	return s.stdout
}

// DoFile executes a Lua file. Execution is synchronous.
func (s *State) DoFile(path string) error {
	if s.closed {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua source string. Execution is synchronous.
func (s *State) DoString(code string) error {
	if s.closed {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// DoChunk compiles src under the given chunk name and executes it. The
// chunk name appears in Lua error messages and stack traces, so callers
// running rewritten source pass the original file path.
func (s *State) DoChunk(src, name string) error {
	if s.closed {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		fn, err := s.L.Load(strings.NewReader(src), name)
		if err != nil {
			return err
		}
		s.L.Push(fn)
		return s.L.PCall(0, lua.MultRet, nil)
	})
}

// doWithRecovery executes fn with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	if s.closed {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	if s.closed {
		return
	}
	s.L.SetGlobal(name, value)
}

// Globals returns the global table.
func (s *State) Globals() *lua.LTable {
	return s.L.Get(lua.GlobalsIndex).(*lua.LTable)
}

// RegisterModule installs a table of Go functions as a global module.
func (s *State) RegisterModule(name string, funcs map[string]lua.LGFunction) *lua.LTable {
	if s.closed {
		return nil
	}
	mod := s.L.SetFuncs(s.L.NewTable(), funcs)
	s.L.SetGlobal(name, mod)
	return mod
}

// LuaState returns the underlying gopher-lua state.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// IsClosed reports whether the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed
}

// Close releases all resources associated with the Lua state.
func (s *State) Close() error {
	if s.closed {
		return nil
	}
	s.L.Close()
	s.closed = true
	return nil
}
