package execctx

import (
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gumshoe/internal/format"
)

// maxLocals bounds local enumeration. gopher-lua reports internal register
// slots past the named locals, so the walk needs a hard stop.
const maxLocals = 250

// maxFrameDepth bounds the search for the first Lua frame above the hook.
const maxFrameDepth = 8

// Context is the merged, mutable view of the variables visible at the
// moment a hook fires.
type Context struct {
	l       *lua.LState
	dbg     *lua.Debug
	globals *lua.LTable

	// Ordered local bindings. A name shadowed by an inner scope appears
	// more than once; the last occurrence is the visible one.
	localNames []string
	localIdx   map[string]int // name -> register number of visible binding

	source string
	line   int
}

// Capture builds a Context for the nearest Lua frame above the calling Go
// function. Source and line identify the instrumented location and are
// carried for diagnostics and logger naming.
func Capture(L *lua.LState, source string, line int) (*Context, error) {
	dbg, err := findLuaFrame(L)
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		l:        L,
		dbg:      dbg,
		globals:  L.Get(lua.GlobalsIndex).(*lua.LTable),
		localIdx: make(map[string]int),
		source:   source,
		line:     line,
	}

	for i := 1; i <= maxLocals; i++ {
		name, _ := L.GetLocal(dbg, i)
		if name == "" {
			break
		}
		if strings.HasPrefix(name, "(") {
			continue // internal slot
		}
		if _, seen := ctx.localIdx[name]; !seen {
			ctx.localNames = append(ctx.localNames, name)
		}
		ctx.localIdx[name] = i
	}

	return ctx, nil
}

// findLuaFrame walks up the stack past Go function frames.
func findLuaFrame(L *lua.LState) (*lua.Debug, error) {
	for level := 1; level <= maxFrameDepth; level++ {
		dbg, ok := L.GetStack(level)
		if !ok {
			break
		}
		fn, err := L.GetInfo("f", dbg, lua.LNil)
		if err != nil {
			continue
		}
		if lf, ok := fn.(*lua.LFunction); ok && !lf.IsG {
			return dbg, nil
		}
	}
	return nil, ErrNoFrame
}

// State returns the Lua state the context was captured from.
func (c *Context) State() *lua.LState {
	return c.l
}

// Source returns the instrumented file path.
func (c *Context) Source() string {
	return c.source
}

// Line returns the instrumented line number in the original source.
func (c *Context) Line() int {
	return c.line
}

// Lookup resolves a name against the context: locals first, then globals.
// A nil-valued binding is indistinguishable from an absent one, as in Lua
// itself.
func (c *Context) Lookup(name string) (lua.LValue, bool) {
	if no, ok := c.localIdx[name]; ok {
		_, v := c.l.GetLocal(c.dbg, no)
		return v, true
	}
	v := c.globals.RawGetString(name)
	if v == lua.LNil {
		return lua.LNil, false
	}
	return v, true
}

// Set binds name to v: through the existing local when one is visible,
// otherwise in the global table. This is the write-back path for injected
// code, so mutations outlive the hook.
func (c *Context) Set(name string, v lua.LValue) {
	if no, ok := c.localIdx[name]; ok {
		c.l.SetLocal(c.dbg, no, v)
		return
	}
	c.globals.RawSetString(name, v)
}

// LocalNames returns the visible local names in declaration order.
func (c *Context) LocalNames() []string {
	out := make([]string, len(c.localNames))
	copy(out, c.localNames)
	return out
}

// Names returns all visible names, locals and globals merged, sorted.
func (c *Context) Names() []string {
	seen := make(map[string]bool, len(c.localNames))
	var names []string
	for _, n := range c.localNames {
		seen[n] = true
		names = append(names, n)
	}
	c.globals.ForEach(func(k, _ lua.LValue) {
		if ks, ok := k.(lua.LString); ok && !seen[string(ks)] {
			names = append(names, string(ks))
		}
	})
	sort.Strings(names)
	return names
}

// Snapshot returns a merged copy of the visible bindings, locals shadowing
// globals. The copy is detached: writing to it does not affect the frame.
func (c *Context) Snapshot() map[string]lua.LValue {
	vars := make(map[string]lua.LValue)
	c.globals.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok {
			vars[string(ks)] = v
		}
	})
	for name, no := range c.localIdx {
		_, v := c.l.GetLocal(c.dbg, no)
		vars[name] = v
	}
	return vars
}

// FormatLookup adapts the context for template rendering. Values render via
// Lua tostring semantics, honoring __tostring metamethods.
func (c *Context) FormatLookup() format.Lookup {
	return func(name string) (string, bool) {
		v, ok := c.Lookup(name)
		if !ok {
			return "", false
		}
		return c.l.ToStringMeta(v).String(), true
	}
}
