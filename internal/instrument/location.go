package instrument

import (
	"fmt"
	"path/filepath"
)

// Location identifies an instrumentation point: a normalized file path and
// a 1-based line number in the original, unrewritten source. Identity is
// path+line and never changes when the source text is rewritten.
type Location struct {
	File string
	Line int
}

// NewLocation builds a Location with a normalized path.
func NewLocation(file string, line int) Location {
	return Location{File: NormalizePath(file), Line: line}
}

// NormalizePath canonicalizes a target path so registration, rewriting,
// and dispatch all agree on the key.
func NormalizePath(path string) string {
	return filepath.Clean(path)
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}
