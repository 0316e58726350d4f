// Package config loads and dumps JSON instrumentation plans. A plan is
// the declarative counterpart of a configuration script: line actions,
// function taps by catalog name, and the gate state.
//
//	{
//	  "enabled": true,
//	  "actions": [
//	    {"kind": "print", "file": "job.lua", "line": 12, "format": "{total}"},
//	    {"kind": "log", "file": "job.lua", "line": 30, "format": "hit", "level": "info"},
//	    {"kind": "comment", "file": "job.lua", "start": 40, "stop": 44}
//	  ],
//	  "taps": [
//	    {"path": "utils.work", "wrapper": "logCalls", "params": {"level": "debug"}}
//	  ]
//	}
//
// Call actions and wrapper callbacks need live callables, so they exist
// only on the script surface; a plan that names them is rejected.
package config
