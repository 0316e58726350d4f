// Package instrument implements source-injection instrumentation: the
// location registry, the source rewriter that embeds hook calls, the
// runtime dispatcher those hooks invoke, and the action variants that run
// against the live execution context.
//
// A Location keys on the original source path and 1-based line number;
// rewriting never changes a location's identity. The Registry maps each
// location to an ordered action list (registration order is firing order)
// plus a set of commented-out lines and a global enable gate. The Rewriter
// is a pure text transform over that table; the Dispatcher is the runtime
// half, installed into the Lua state as a global hook function.
//
// The registry is read-only during a run by convention. The gate flip is
// the only runtime mutation and is not synchronized; targets are assumed
// single-threaded, as is the hosting LState itself.
package instrument
