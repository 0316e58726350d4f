package instrument

import (
	"fmt"
	"os"
	"strings"
)

// HookGlobal is the stable global name the rewritten source calls. The
// Dispatcher installs a function under this name before the target runs.
const HookGlobal = "__gumshoe_hook"

// Rewriter embeds hook invocations into target source text according to a
// registry. It is a pure transform: the file on disk is never modified.
type Rewriter struct {
	reg  *Registry
	hook string
}

// NewRewriter creates a rewriter over the registry.
func NewRewriter(reg *Registry) *Rewriter {
	return &Rewriter{reg: reg, hook: HookGlobal}
}

// RewriteFile reads the target source and returns the instrumented text.
// A missing file is ErrSourceNotFound.
func (rw *Rewriter) RewriteFile(path string) (string, error) {
	path = NormalizePath(path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return "", err
	}
	return rw.Rewrite(string(data), path), nil
}

// Rewrite transforms src, attributed to file, line by line:
//
//   - a line with registered actions is immediately preceded by one hook
//     statement at the line's own indentation;
//   - a commented-out line keeps its indentation and gains a "-- " prefix;
//   - every other line is emitted byte-identical.
//
// Registrations past end-of-file are silently ignored, tolerating drift
// between a stale plan and the source. Lines inside multi-line statements
// are not supported; instrumenting them is undefined.
func (rw *Rewriter) Rewrite(src, file string) string {
	file = NormalizePath(file)

	var b strings.Builder
	b.Grow(len(src) + len(src)/4)

	lineno := 0
	for _, line := range splitAfterLines(src) {
		lineno++
		indent := leadingIndent(line)

		if len(rw.reg.At(file, lineno)) > 0 {
			b.WriteString(indent)
			b.WriteString(rw.hook)
			b.WriteString(fmt.Sprintf("(%s, %d)\n", luaQuote(file), lineno))
		}

		if rw.reg.IsCommented(file, lineno) {
			b.WriteString(indent)
			b.WriteString("-- ")
			b.WriteString(line[len(indent):])
			continue
		}

		b.WriteString(line)
	}
	return b.String()
}

// splitAfterLines splits src into lines, each keeping its own terminator.
func splitAfterLines(src string) []string {
	if src == "" {
		return nil
	}
	lines := strings.SplitAfter(src, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// leadingIndent returns the leading run of spaces and tabs.
func leadingIndent(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}

// luaQuote renders s as a Lua double-quoted string literal.
func luaQuote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}
