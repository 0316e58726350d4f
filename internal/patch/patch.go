package patch

import (
	"fmt"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/gumshoe/internal/scope"
	"github.com/dshills/gumshoe/internal/wrap"
)

// Patcher applies wrappers to functions reachable from a scope root.
type Patcher struct {
	l        *lua.LState
	resolver *scope.Resolver
}

// Option configures a Patcher.
type Option func(*Patcher)

// WithResolver overrides the scope resolver.
func WithResolver(r *scope.Resolver) Option {
	return func(p *Patcher) {
		if r != nil {
			p.resolver = r
		}
	}
}

// New creates a patcher over the state.
func New(L *lua.LState, opts ...Option) *Patcher {
	p := &Patcher{l: L, resolver: scope.NewResolver()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Target names a function to patch. Fn is the function value when the
// caller holds one; Path is a dotted hint from Root. At least one must be
// set. A nil Root means module scope (globals).
type Target struct {
	Root *lua.LTable
	Path string
	Fn   *lua.LFunction
}

func (t Target) describe() string {
	if t.Path != "" {
		return t.Path
	}
	return fmt.Sprintf("function %p", t.Fn)
}

// Apply resolves the target's container, wraps the function, and rebinds
// the container's slot to the wrapped version. It returns the simple name
// the function was bound under.
func (p *Patcher) Apply(t Target, w wrap.Wrapper) (string, error) {
	root := t.Root
	if root == nil {
		root = p.l.Get(lua.GlobalsIndex).(*lua.LTable)
	}

	if i := strings.IndexByte(t.Path, '.'); i >= 0 {
		head := t.Path[:i]
		if _, ok := root.RawGetString(head).(*lua.LTable); !ok {
			return "", fmt.Errorf("%w: %q", ErrModuleNotFound, head)
		}
	}

	var target lua.LValue
	if t.Fn != nil {
		target = t.Fn
	}
	container, key, err := p.resolver.Resolve(root, target, t.Path)
	if err != nil {
		return "", fmt.Errorf("patch %s: %w", t.describe(), err)
	}

	fn := t.Fn
	if fn == nil {
		var ok bool
		fn, ok = container.RawGetString(key).(*lua.LFunction)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrNotFunction, t.describe())
		}
	}

	container.RawSetString(key, w.Wrap(p.l, key, fn))
	return key, nil
}
