package app

import (
	"context"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// notifyReady tells systemd the daemon is accepting connections. Outside
// a systemd unit the notification socket is absent and this is a no-op.
func notifyReady() {
	sent, err := sd.SdNotify(false, sd.SdNotifyReady)
	if err != nil {
		logging.Warn("App", "Failed to notify systemd readiness: %v", err)
		return
	}
	if !sent {
		logging.Debug("App", "Not running under systemd, skipping readiness notification")
	}
}

// notifyStopping tells systemd shutdown has begun.
func notifyStopping() {
	if _, err := sd.SdNotify(false, sd.SdNotifyStopping); err != nil {
		logging.Warn("App", "Failed to notify systemd stop: %v", err)
	}
}

// watchdogLoop pings the systemd watchdog at half the configured
// interval until the context ends. Returns immediately when no watchdog
// is armed for this service.
func watchdogLoop(ctx context.Context) {
	interval, err := sd.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}

	logging.Debug("App", "systemd watchdog armed, pinging every %s", interval/2)

	ticker := time.NewTicker(interval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := sd.SdNotify(false, sd.SdNotifyWatchdog); err != nil {
				logging.Warn("App", "Failed to ping systemd watchdog: %v", err)
			}
		}
	}
}
