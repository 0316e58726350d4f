package scope

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
)

// DefaultDepthLimit caps the deepening search. Raising it trades cost for
// completeness on very deep graphs.
const DefaultDepthLimit = 100

// Resolution errors.
var (
	// ErrNotFound indicates no path to the function exists within the
	// depth cap.
	ErrNotFound = errors.New("scope: function not found")

	// ErrAmbiguous indicates a qualified path landed on something other
	// than the target function.
	ErrAmbiguous = errors.New("scope: path does not resolve to target function")
)

// Resolver finds the parent container of a function within a module graph.
type Resolver struct {
	limit int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithDepthLimit overrides the search depth cap.
func WithDepthLimit(limit int) Option {
	return func(r *Resolver) {
		if limit > 0 {
			r.limit = limit
		}
	}
}

// NewResolver creates a resolver with the default depth cap.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{limit: DefaultDepthLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the table holding target and the key it is bound under.
//
// When path is non-empty it is tried first: a dotted walk from root whose
// final step must yield the target (or, with a nil target, any function —
// anything else is ErrAmbiguous). A failed walk with a known target falls
// through to the bounded search. The search result is the parent of the
// discovered root-to-function path; ErrNotFound when the cap is exhausted.
func (r *Resolver) Resolve(root *lua.LTable, target lua.LValue, path string) (*lua.LTable, string, error) {
	if root == nil {
		return nil, "", ErrNotFound
	}

	if path != "" {
		container, key, err := walkPath(root, target, path)
		if err == nil {
			return container, key, nil
		}
		if target == nil || target == lua.LNil {
			// Nothing to search for without a function value.
			return nil, "", err
		}
	}

	if target == nil || target == lua.LNil {
		return nil, "", ErrNotFound
	}
	return r.search(root, target)
}

// walkPath follows a dotted path with raw table lookups. Raw access cannot
// raise, so a broken link is simply a missing child.
func walkPath(root *lua.LTable, target lua.LValue, path string) (*lua.LTable, string, error) {
	segs := strings.Split(path, ".")
	node := root
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node.RawGetString(seg).(*lua.LTable)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q has no container %q", ErrNotFound, path, seg)
		}
		node = child
	}

	last := segs[len(segs)-1]
	v := node.RawGetString(last)
	if target != nil && target != lua.LNil {
		if v != target {
			return nil, "", fmt.Errorf("%w: %q", ErrAmbiguous, path)
		}
		return node, last, nil
	}
	if v.Type() != lua.LTFunction {
		return nil, "", fmt.Errorf("%w: %q is %s", ErrAmbiguous, path, v.Type())
	}
	return node, last, nil
}

// search runs iterative-deepening DFS from root. Each pass carries its own
// visited set keyed on table identity, so cyclic and self-referential
// graphs terminate.
func (r *Resolver) search(root *lua.LTable, target lua.LValue) (*lua.LTable, string, error) {
	for depth := 1; depth <= r.limit; depth++ {
		seen := map[*lua.LTable]bool{root: true}
		if container, key, found := dfs(root, target, depth, seen); found {
			return container, key, nil
		}
	}
	return nil, "", fmt.Errorf("%w: depth limit %d exceeded", ErrNotFound, r.limit)
}

// dfs checks node's children for the target, then descends into child
// tables while depth remains. Keys are visited in sorted order so results
// are deterministic regardless of table iteration order.
func dfs(node *lua.LTable, target lua.LValue, depth int, seen map[*lua.LTable]bool) (*lua.LTable, string, bool) {
	type entry struct {
		key   string
		value lua.LValue
	}
	var children []entry
	node.ForEach(func(k, v lua.LValue) {
		ks, ok := k.(lua.LString)
		if !ok {
			return // only named slots can be rebound
		}
		children = append(children, entry{key: string(ks), value: v})
	})
	sort.Slice(children, func(i, j int) bool { return children[i].key < children[j].key })

	for _, child := range children {
		if child.value == target {
			return node, child.key, true
		}
	}

	if depth <= 1 {
		return nil, "", false
	}
	for _, child := range children {
		tbl, ok := child.value.(*lua.LTable)
		if !ok || seen[tbl] {
			continue
		}
		seen[tbl] = true
		if container, key, found := dfs(tbl, target, depth-1, seen); found {
			return container, key, true
		}
	}
	return nil, "", false
}
