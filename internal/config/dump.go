package config

import (
	"github.com/tidwall/sjson"

	"github.com/dshills/gumshoe/internal/engine"
	"github.com/dshills/gumshoe/internal/instrument"
)

// Dump renders the engine's registry back into plan JSON. Call actions
// and taps hold live callables and are omitted; a dumped plan reproduces
// the declarative subset of the run.
func Dump(e *engine.Engine) ([]byte, error) {
	reg := e.Registry()

	out := []byte(`{}`)
	out, err := sjson.SetBytes(out, "enabled", reg.Enabled())
	if err != nil {
		return nil, err
	}

	for _, file := range reg.Files() {
		for _, line := range reg.Lines(file) {
			for _, a := range reg.At(file, line) {
				entry := map[string]interface{}{
					"kind": a.Kind(),
					"file": file,
					"line": line,
				}
				dumpDetails(entry, a)
				out, err = sjson.SetBytes(out, "actions.-1", entry)
				if err != nil {
					return nil, err
				}
			}
		}

		for _, r := range lineRanges(reg.CommentedLines(file)) {
			entry := map[string]interface{}{
				"kind":  "comment",
				"file":  file,
				"start": r[0],
				"stop":  r[1],
			}
			out, err = sjson.SetBytes(out, "actions.-1", entry)
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func dumpDetails(entry map[string]interface{}, a instrument.Action) {
	switch act := a.(type) {
	case *instrument.PrintAction:
		entry["format"] = act.Template()
		if path := act.FilePath(); path != "" {
			entry["path"] = path
		}
	case *instrument.LogAction:
		entry["format"] = act.Template()
		entry["level"] = act.Level().String()
		if name := act.LoggerName(); name != "" {
			entry["logName"] = name
		}
	case *instrument.BreakAction:
		entry["debugger"] = act.DebuggerName()
	case *instrument.InjectAction:
		entry["code"] = act.Source()
	}
}

// lineRanges compresses sorted line numbers into inclusive [start, stop]
// runs.
func lineRanges(lines []int) [][2]int {
	var ranges [][2]int
	for _, line := range lines {
		if n := len(ranges); n > 0 && ranges[n-1][1] == line-1 {
			ranges[n-1][1] = line
			continue
		}
		ranges = append(ranges, [2]int{line, line})
	}
	return ranges
}
