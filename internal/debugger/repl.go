package debugger

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dshills/gumshoe/internal/execctx"
)

// REPL is a pdb-style line debugger. It reads commands from its input until
// the session is resumed:
//
//	p <expr>      evaluate an expression and print the result
//	! <stmt>      execute a statement against the live bindings
//	locals        list the local bindings
//	where         print the break location
//	c, continue   resume execution
//	q, quit       abort the run
//
// A bare line is treated as a statement. End of input resumes execution, so
// a break in a non-interactive run does not hang.
type REPL struct {
	in     io.Reader
	out    io.Writer
	prompt string
}

// REPLOption configures a REPL.
type REPLOption func(*REPL)

// WithInput sets the command source. The default is os.Stdin.
func WithInput(r io.Reader) REPLOption {
	return func(d *REPL) {
		d.in = r
	}
}

// WithOutput sets the session output. The default is os.Stdout.
func WithOutput(w io.Writer) REPLOption {
	return func(d *REPL) {
		d.out = w
	}
}

// NewREPL creates a line-oriented debugger session handler.
func NewREPL(opts ...REPLOption) *REPL {
	d := &REPL{
		in:     os.Stdin,
		out:    os.Stdout,
		prompt: "(gumshoe) ",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Break implements Debugger. It blocks the executing goroutine until the
// operator resumes the session.
func (d *REPL) Break(env execctx.Environment) error {
	fmt.Fprintf(d.out, "break at %s\n", env.Where())

	interactive := d.isInteractive()
	scanner := bufio.NewScanner(d.in)
	for {
		if interactive {
			fmt.Fprint(d.out, d.prompt)
		}
		if !scanner.Scan() {
			return scanner.Err() // EOF resumes
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest := splitCommand(line)
		switch cmd {
		case "c", "cont", "continue":
			return nil
		case "q", "quit":
			return ErrQuit
		case "where", "w":
			fmt.Fprintln(d.out, env.Where())
		case "locals":
			d.printLocals(env)
		case "p":
			d.eval(env, "return "+rest)
		case "!":
			d.eval(env, rest)
		default:
			d.eval(env, line)
		}
	}
}

// isInteractive reports whether the session reads from a terminal.
func (d *REPL) isInteractive() bool {
	f, ok := d.in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// splitCommand separates the command word from its argument text.
func splitCommand(line string) (string, string) {
	if strings.HasPrefix(line, "!") {
		return "!", strings.TrimSpace(line[1:])
	}
	cmd, rest, found := strings.Cut(line, " ")
	if !found {
		return cmd, ""
	}
	return cmd, strings.TrimSpace(rest)
}

// printLocals lists local bindings when the environment exposes them,
// otherwise all visible names.
func (d *REPL) printLocals(env execctx.Environment) {
	names := env.Names()
	if lp, ok := env.(interface{ LocalNames() []string }); ok {
		names = lp.LocalNames()
	}
	if len(names) == 0 {
		fmt.Fprintln(d.out, "no locals")
		return
	}
	L := env.State()
	for _, name := range names {
		v, _ := env.Lookup(name)
		fmt.Fprintf(d.out, "%s = %s\n", name, L.ToStringMeta(v).String())
	}
}

// eval runs a fragment against the live environment and prints any results.
func (d *REPL) eval(env execctx.Environment, src string) {
	L := env.State()
	results, err := execctx.Eval(L, env, src, "=(debugger)")
	if err != nil {
		fmt.Fprintf(d.out, "error: %v\n", err)
		return
	}
	for _, r := range results {
		fmt.Fprintln(d.out, L.ToStringMeta(r).String())
	}
}

var _ Debugger = (*REPL)(nil)
