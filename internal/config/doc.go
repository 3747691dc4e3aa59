// Package config provides configuration management for companion.
//
// This package implements a simple configuration system that loads
// configuration from a single directory. The default configuration
// directory is ~/.config/companion, but users can specify a custom
// directory using the --config-path flag in commands.
//
// # Configuration File
//
// Configuration is loaded from config.yaml inside the configuration
// directory. Values present in the file override the built-in defaults
// from GetDefaultConfig; a missing file simply yields the defaults.
//
// # Durations
//
// All tunable durations are Go duration strings:
//
//	engine:
//	  normalDelay: 750ms
//	  minInterval: 250ms
//
// Empty values fall back to the defaults of the consuming package, so a
// partially filled config stays valid.
//
// # Pollers
//
// The pollers list declares periodic commands whose JSON output feeds
// sections:
//
//	pollers:
//	  - section: pipelines
//	    command: workflow-status
//	    args: ["--format", "json", "--user", "{{ .user }}"]
//	    interval: 30s
//	    priority: background
//
// Arguments are template-expanded on every tick with the base context
// (home, hostname, user) and the sprig function set.
package config
