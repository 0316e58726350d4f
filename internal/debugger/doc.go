// Package debugger provides the interactive break sessions triggered by
// break actions and break-on wrappers.
//
// Debuggers are registered under a name; registrations referencing an
// unknown name fail at setup time with ErrUnsupported. The built-in "repl"
// debugger is a pdb-style line REPL: it suspends the executing goroutine,
// evaluates expressions and statements against the live execution
// environment, and resumes on continue. There is no timeout; a break blocks
// until the operator resumes or quits.
package debugger
