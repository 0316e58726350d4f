package config

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/dshills/gumshoe/internal/engine"
	"github.com/dshills/gumshoe/internal/luart"
	"github.com/dshills/gumshoe/internal/wrap"
)

// LoadFile reads a plan file and applies it to the engine.
func LoadFile(e *engine.Engine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := Apply(e, data); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

// Apply registers everything the plan names. Entries apply in document
// order; the first bad entry aborts with nothing guaranteed rolled back,
// so callers treat a failed apply as fatal to the run.
func Apply(e *engine.Engine, data []byte) error {
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("%w: invalid JSON", ErrBadPlan)
	}
	root := gjson.ParseBytes(data)

	for i, entry := range root.Get("actions").Array() {
		if err := applyAction(e, entry); err != nil {
			return fmt.Errorf("actions[%d]: %w", i, err)
		}
	}
	for i, entry := range root.Get("taps").Array() {
		if err := applyTap(e, entry); err != nil {
			return fmt.Errorf("taps[%d]: %w", i, err)
		}
	}

	if en := root.Get("enabled"); en.Exists() && !en.Bool() {
		e.Disable()
	}
	return nil
}

func applyAction(e *engine.Engine, entry gjson.Result) error {
	kind := entry.Get("kind").String()
	file := entry.Get("file").String()
	if file == "" {
		return fmt.Errorf("%w: action needs a file", ErrBadPlan)
	}

	if kind == "comment" {
		start := int(entry.Get("start").Int())
		if start <= 0 {
			start = int(entry.Get("line").Int())
		}
		if start <= 0 {
			return fmt.Errorf("%w: comment needs a start line", ErrBadPlan)
		}
		stop := int(entry.Get("stop").Int())
		if stop <= 0 {
			stop = start
		}
		e.RegisterComment(file, start, stop)
		return nil
	}

	line := int(entry.Get("line").Int())
	if line <= 0 {
		return fmt.Errorf("%w: %s needs a line", ErrBadPlan, kind)
	}

	switch kind {
	case "print":
		tmpl := entry.Get("format").String()
		if path := entry.Get("path").String(); path != "" {
			e.RegisterPrintFile(file, line, tmpl, path)
			return nil
		}
		e.RegisterPrint(file, line, tmpl)
		return nil
	case "log":
		return e.RegisterLog(file, line,
			entry.Get("format").String(),
			entry.Get("level").String(),
			entry.Get("logName").String())
	case "break":
		return e.RegisterBreak(file, line, entry.Get("debugger").String())
	case "inject":
		code := entry.Get("code").String()
		if code == "" {
			return fmt.Errorf("%w: inject needs code", ErrBadPlan)
		}
		return e.RegisterInject(file, line, code)
	case "call":
		return fmt.Errorf("%w: call actions need a live callable; use a configuration script", ErrBadPlan)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrBadPlan, kind)
	}
}

func applyTap(e *engine.Engine, entry gjson.Result) error {
	path := entry.Get("path").String()
	wrapper := entry.Get("wrapper").String()
	if path == "" || wrapper == "" {
		return fmt.Errorf("%w: tap needs path and wrapper", ErrBadPlan)
	}

	var params wrap.Params
	if p := entry.Get("params"); p.IsObject() {
		params = make(wrap.Params)
		L := e.State().LuaState()
		p.ForEach(func(k, v gjson.Result) bool {
			params[k.String()] = luart.ToLua(L, v.Value())
			return true
		})
	}

	_, err := e.PatchNamed(path, wrapper, params)
	return err
}
