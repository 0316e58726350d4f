// Package execctx captures the live variable bindings visible at an
// instrumented point: the merged view of the firing frame's locals and the
// module-level (global) bindings. Actions read the context to render
// templates and resolve call arguments; code injection writes through it so
// mutations persist into the continuing program.
//
// Lookup order is locals first, then globals, matching what the running
// code itself would see. Writes go to an existing local when one is bound,
// otherwise to the global table.
package execctx
