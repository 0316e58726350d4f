package instrument

import "sort"

// Registry stores the instrumentation table for a run: each location's
// ordered action list, the commented-out lines, and the global enable gate.
//
// The registry is populated before the target runs and treated as
// read-only for the run's duration. It is not safe for concurrent use; the
// engine owns one registry per run and drives it from a single goroutine,
// matching the LState it feeds.
type Registry struct {
	actions   map[string]map[int][]Action
	commented map[string]map[int]bool
	enabled   bool
}

// NewRegistry creates an empty, disabled registry.
func NewRegistry() *Registry {
	return &Registry{
		actions:   make(map[string]map[int][]Action),
		commented: make(map[string]map[int]bool),
	}
}

// Add appends an action at the location. Actions fire in registration
// order; adding the same action twice makes it fire twice.
func (r *Registry) Add(loc Location, a Action) {
	lines, ok := r.actions[loc.File]
	if !ok {
		lines = make(map[int][]Action)
		r.actions[loc.File] = lines
	}
	lines[loc.Line] = append(lines[loc.Line], a)
}

// At returns the ordered actions registered for (file, line). The path is
// normalized before lookup. The returned slice is the registry's own;
// callers must not mutate it.
func (r *Registry) At(file string, line int) []Action {
	return r.actions[NormalizePath(file)][line]
}

// CommentOut marks lines start..end of file as commented. An end below
// start is treated as a single line.
func (r *Registry) CommentOut(file string, start, end int) {
	if end < start {
		end = start
	}
	file = NormalizePath(file)
	lines, ok := r.commented[file]
	if !ok {
		lines = make(map[int]bool)
		r.commented[file] = lines
	}
	for line := start; line <= end; line++ {
		lines[line] = true
	}
}

// IsCommented reports whether (file, line) is marked commented.
func (r *Registry) IsCommented(file string, line int) bool {
	return r.commented[NormalizePath(file)][line]
}

// Enable opens the gate: hooks fire their actions.
func (r *Registry) Enable() {
	r.enabled = true
}

// Disable closes the gate. Takes effect at the next hook point.
func (r *Registry) Disable() {
	r.enabled = false
}

// Enabled reports the gate state. O(1); this is the dispatcher's fast path.
func (r *Registry) Enabled() bool {
	return r.enabled
}

// Files returns every file with a registration or commented line, sorted.
func (r *Registry) Files() []string {
	seen := make(map[string]bool, len(r.actions))
	for file := range r.actions {
		seen[file] = true
	}
	for file := range r.commented {
		seen[file] = true
	}
	files := make([]string, 0, len(seen))
	for file := range seen {
		files = append(files, file)
	}
	sort.Strings(files)
	return files
}

// Lines returns the registered line numbers for file, sorted.
func (r *Registry) Lines(file string) []int {
	byLine := r.actions[NormalizePath(file)]
	lines := make([]int, 0, len(byLine))
	for line := range byLine {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// CommentedLines returns the commented line numbers for file, sorted.
func (r *Registry) CommentedLines(file string) []int {
	byLine := r.commented[NormalizePath(file)]
	lines := make([]int, 0, len(byLine))
	for line := range byLine {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// Count returns the total number of registered actions.
func (r *Registry) Count() int {
	n := 0
	for _, lines := range r.actions {
		for _, acts := range lines {
			n += len(acts)
		}
	}
	return n
}
