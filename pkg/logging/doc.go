// Package logging provides the structured logging system for companion with
// unified log handling and level filtering.
//
// This package is built on Go's standard slog package and gives every
// subsystem the same call shape: a short subsystem name, a printf-style
// message, and an optional error.
//
// # Log Levels
//
//   - **Debug**: engine internals (fingerprints, timer arming, gate decisions)
//   - **Info**: lifecycle events (startup, shutdown, client connects)
//   - **Warn**: degraded-but-running conditions (lock contention, slow client)
//   - **Error**: failures that cost a cycle or a message
//
// # Usage
//
//	import "github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
//
//	// Daemon mode: full logging at the configured level.
//	logging.Init(logging.LevelInfo, false, os.Stderr)
//
//	// CLI mode: warnings and errors only unless --debug.
//	logging.InitForCLI(debug)
//
//	logging.Info("Daemon", "Listening on %s", socketPath)
//	logging.Debug("Scheduler", "Armed %v timer for %d sections", delay, n)
//	logging.Warn("FileLock", "Lock busy, skipping cycle: %s", path)
//	logging.Error("Poller", err, "Command %q failed", name)
//
// # Subsystem Organization
//
// Logs are categorized by subsystem so they can be filtered downstream:
//
//   - **Bootstrap**: application initialization and configuration
//   - **Engine**: section updates and dispatch decisions
//   - **Scheduler**: coalescing and debounce timers
//   - **Gate**: dispatch spacing and exclusivity
//   - **FileLock**: cross-process lock acquisition
//   - **Notify**: shared notification file plumbing
//   - **Poller**: backend command pollers
//   - **Daemon**: socket server and client sessions
//
// # Thread Safety
//
// All logging functions are safe for concurrent use from multiple
// goroutines; filtering happens at the handler level so suppressed
// messages cost no allocation.
package logging
