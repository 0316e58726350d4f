// Package patch rebinds functions in a live Lua environment to wrapped
// versions of themselves. A patch resolves the target function's container
// through the scope resolver, builds the wrapped function, and swaps
// exactly one table slot: callers that reach the function through that
// slot see the new behavior, while aliases bound elsewhere keep the
// original.
package patch
