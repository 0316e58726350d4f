// Package main is the entry point for the gumshoe instrumentation runner.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/gumshoe/internal/config"
	"github.com/dshills/gumshoe/internal/debugger"
	"github.com/dshills/gumshoe/internal/engine"
	"github.com/dshills/gumshoe/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type options struct {
	configPath   string
	planPath     string
	logLevel     string
	printRewrite bool
	dumpPlan     bool
	safeLibs     bool
}

func main() {
	os.Exit(run())
}

func run() int {
	var opts options

	root := &cobra.Command{
		Use:   "gumshoe [flags] script.lua [args...]",
		Short: "Instrument and run Lua programs without editing their source",
		Long: `gumshoe runs a Lua program with instrumentation woven in at load
time: breakpoints, template prints, log emissions, injected code, and
function taps, all declared in a configuration script or a JSON plan
while the program's source stays untouched on disk.`,
		Example: `  gumshoe -c probes.lua job.lua input.csv
  gumshoe --plan probes.json job.lua
  gumshoe -c probes.lua --print-rewrite job.lua`,
		Version: fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runScript(cmd, opts, args)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "configuration script to execute before the target")
	flags.StringVar(&opts.planPath, "plan", "", "JSON instrumentation plan to apply before the target")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.printRewrite, "print-rewrite", false, "print the instrumented source instead of running it")
	flags.BoolVar(&opts.dumpPlan, "dump-plan", false, "print the registered plan as JSON instead of running")
	flags.BoolVar(&opts.safeLibs, "safe-libs", false, "restrict the target to side-effect-free Lua libraries")

	if err := root.Execute(); err != nil {
		if isDebuggerQuit(err) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runScript(cmd *cobra.Command, opts options, args []string) error {
	level, err := logging.ParseLevel(opts.logLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(level)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stderr sync failure is unactionable

	engOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.safeLibs {
		engOpts = append(engOpts, engine.WithSafeLibraries())
	}
	eng, err := engine.New(engOpts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	if opts.configPath != "" {
		if err := eng.RunConfig(opts.configPath); err != nil {
			return fmt.Errorf("config %s: %w", opts.configPath, err)
		}
	}
	if opts.planPath != "" {
		if err := config.LoadFile(eng, opts.planPath); err != nil {
			return err
		}
	}

	script := args[0]

	if opts.dumpPlan {
		plan, err := config.Dump(eng)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(plan))
		return nil
	}

	if opts.printRewrite {
		src, err := eng.Rewrite(script)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), src)
		return nil
	}

	return eng.RunScript(script, args[1:])
}

// isDebuggerQuit reports whether the run ended because the operator quit a
// debug session. The quit crosses the Lua boundary as an error value, so
// match on the sentinel's message as well as its identity.
func isDebuggerQuit(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), debugger.ErrQuit.Error())
}
