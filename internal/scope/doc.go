// Package scope locates the container holding a target function inside a
// live Lua object graph: the table (module or class analog) whose slot the
// patcher must rebind.
//
// Resolution has two paths. When a dotted path from module scope is known,
// it is walked with successive table lookups and verified against the
// target. Otherwise, or when verification fails, a bounded
// iterative-deepening depth-first search runs over the table graph:
// descending only into tables, tracking visited nodes per pass to survive
// cyclic module graphs, and raising its depth bound from 1 until the
// function is found or the cap is hit. Shallow targets resolve cheaply;
// pathological graphs terminate deterministically.
package scope
