package debugger

import (
	"fmt"
	"sort"

	"github.com/dshills/gumshoe/internal/execctx"
)

// Debugger suspends execution into an interactive session rooted at the
// given environment. Break returns when the session is resumed; ErrQuit
// aborts the run.
type Debugger interface {
	Break(env execctx.Environment) error
}

// Factory constructs a debugger instance.
type Factory func() Debugger

// DefaultName is the debugger used when a registration does not name one.
const DefaultName = "repl"

var factories = map[string]Factory{}

func init() {
	Register(DefaultName, func() Debugger { return NewREPL() })
}

// Register makes a debugger available under the given name. Registering a
// duplicate name replaces the earlier factory.
func Register(name string, f Factory) {
	factories[name] = f
}

// Lookup resolves a debugger by name. An empty name selects the default.
// Unknown names fail with ErrUnsupported so bad registrations abort setup.
func Lookup(name string) (Debugger, error) {
	if name == "" {
		name = DefaultName
	}
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, name)
	}
	return f(), nil
}

// Names returns the registered debugger names, sorted.
func Names() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
