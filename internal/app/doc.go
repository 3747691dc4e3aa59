// Package app provides application bootstrap and lifecycle management
// for the companion daemon.
//
// It follows a two-phase pattern: NewApplication performs all wiring
// without side effects beyond logging setup, Run starts the services
// and blocks until the context ends.
//
// # Architecture Overview
//
// The app package has four components:
//
// 1. **Configuration (`config.go`)**: Runtime flags handed in by the CLI
// 2. **Bootstrap (`bootstrap.go`)**: Configuration loading and logging setup
// 3. **Services (`services.go`)**: Construction and wiring of all services
// 4. **Run (`run.go`)**: Startup order, systemd notification, shutdown order
//
// # Service Wiring
//
// InitializeServices assembles the daemon around the synchronization
// engine:
//
//   - **Engine**: coalesces partial section updates into frames
//   - **Server**: the Unix socket surface; it is both the engine's sink
//     (flushed frames fan out to subscribers) and a producer (update
//     requests from clients feed the engine)
//   - **Store / Watcher**: the shared notification document and the
//     filesystem watcher draining it into the engine
//   - **Pollers**: periodic commands whose JSON output feeds sections
//
// The server is created after the engine yet acts as its sink; a small
// closure defers that binding until both exist.
//
// # Lifecycle
//
// Run starts the server, then the watcher, then the pollers, notifies
// systemd readiness, and blocks. On context cancellation it notifies
// systemd, closes the socket so clients observe the shutdown first,
// waits for the pollers, stops the watcher, and stops the engine last
// so every producer has a live target while winding down.
//
// # Usage
//
//	cfg := app.NewConfig(debug, configPath, socketPath, version)
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//		return err
//	}
//	return application.Run(ctx)
package app
