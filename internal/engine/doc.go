// Package engine is the facade tying the instrumentation pipeline
// together: one Lua state, one registry of line actions, the rewriter and
// dispatcher that connect them, and the patcher for function-level taps.
//
// A run has three phases. Setup populates the registry and applies
// patches, either through the Go registration API or by executing a
// configuration script that calls the gumshoe Lua module. Rewrite embeds
// hook calls into the target source in memory. Execute runs the rewritten
// chunk; each hook firing dispatches that line's actions against the live
// frame.
//
// The engine is single-threaded by contract: setup, rewrite, and execution
// all happen on the goroutine that owns the Lua state. Debug sessions and
// injected code run inline in the target's stack, so every mutation they
// make is visible to the continuing program.
package engine
