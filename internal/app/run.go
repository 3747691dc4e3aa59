package app

import (
	"context"
	"fmt"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// Run starts the daemon surface, the notification watcher, and the
// pollers, then blocks until the context ends. Shutdown closes the
// socket first so clients see the daemon go away before the producers
// drain, and stops the engine last so every producer still has a live
// target while it winds down.
func (a *Application) Run(ctx context.Context) error {
	if err := a.services.Server.Start(ctx); err != nil {
		return fmt.Errorf("failed to start daemon server: %w", err)
	}

	if err := a.services.Watcher.Start(ctx); err != nil {
		a.services.Server.Stop()
		return fmt.Errorf("failed to start notification watcher: %w", err)
	}

	pollCtx, cancelPollers := context.WithCancel(ctx)
	pollersDone := make(chan struct{})
	go func() {
		defer close(pollersDone)
		a.services.Pollers.Run(pollCtx)
	}()

	notifyReady()
	go watchdogLoop(ctx)
	logging.Info("App", "companion %s ready", a.config.Version)

	<-ctx.Done()

	notifyStopping()
	logging.Info("App", "Shutting down")

	if err := a.services.Server.Stop(); err != nil {
		logging.Error("App", err, "Error stopping daemon server")
	}
	cancelPollers()
	<-pollersDone
	if err := a.services.Watcher.Stop(); err != nil {
		logging.Error("App", err, "Error stopping notification watcher")
	}
	a.services.Engine.Stop()

	logging.Info("App", "Shutdown complete")
	return nil
}
