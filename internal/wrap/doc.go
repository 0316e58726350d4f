// Package wrap is the catalog of composable call-interception behaviors
// applied by the patcher. Each wrapper is built from declarative
// parameters and produces a function that preserves the original's call
// signature: every argument is forwarded and every return value passed
// through, except where the behavior's contract says otherwise (skip,
// substitute, suppressed exceptions).
//
// Wrappers divide into call logging (LogCalls), exception interception
// (LogOnException, BreakOnException, CallOnException), call-boundary
// triggers (BreakOnEnter/Exit/Result, CallOnEnter/Exit/Result), and call
// replacement (Skip, Substitute). Callbacks and predicates are Go
// functions; Lua callables from configuration scripts are adapted with
// LuaCallback, LuaExceptionCallback, and LuaPredicate. Build constructs
// wrappers by name from a parameter map, backing the config-script and
// JSON-plan surfaces.
package wrap
