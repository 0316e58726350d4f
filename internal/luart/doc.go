// Package luart hosts the Lua runtime that executes target scripts and
// configuration scripts.
//
// It wraps gopher-lua with the small amount of policy the engine needs:
// library selection, an overridable stdout for print(), chunk execution
// under a caller-supplied name (so diagnostics reference the original
// source path), and panic recovery around interpreter entry points.
//
// IMPORTANT: gopher-lua's LState is not goroutine-safe. The engine runs a
// single target on a single goroutine; all State methods must be called
// from that goroutine.
package luart
