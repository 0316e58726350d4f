// Package format renders the brace templates used by print, log, and
// call-logging actions. A template references live variables by name:
//
//	"{message} {magic_number}"
//
// Doubled braces escape literals ("{{" renders as "{"). Referencing a name
// the lookup cannot resolve is a user-facing error, never silently dropped.
package format

import (
	"fmt"
	"strings"
)

// Lookup resolves a template name to its rendered value. The second return
// reports whether the name is bound.
type Lookup func(name string) (string, bool)

// Error reports a template that references an unbound name or is
// syntactically malformed.
type Error struct {
	Template string
	Name     string
	Reason   string
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("format: unbound name %q in template %q", e.Name, e.Template)
	}
	return fmt.Sprintf("format: bad template %q: %s", e.Template, e.Reason)
}

// FromMap adapts a plain map to a Lookup.
func FromMap(vars map[string]string) Lookup {
	return func(name string) (string, bool) {
		v, ok := vars[name]
		return v, ok
	}
}

// Render expands every {name} placeholder in tmpl using lookup.
func Render(tmpl string, lookup Lookup) (string, error) {
	var b strings.Builder
	b.Grow(len(tmpl))

	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &Error{Template: tmpl, Reason: "unterminated placeholder"}
			}
			name := tmpl[i+1 : i+1+end]
			if name == "" {
				return "", &Error{Template: tmpl, Reason: "empty placeholder"}
			}
			val, ok := lookup(name)
			if !ok {
				return "", &Error{Template: tmpl, Name: name}
			}
			b.WriteString(val)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
