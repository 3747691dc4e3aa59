package config

import (
	"time"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// CompanionConfig is the top-level configuration structure for companion.
type CompanionConfig struct {
	Engine  EngineConfig   `yaml:"engine,omitempty"`
	Lock    LockConfig     `yaml:"lock,omitempty"`
	Notify  NotifyConfig   `yaml:"notify,omitempty"`
	Daemon  DaemonConfig   `yaml:"daemon,omitempty"`
	Pollers []PollerConfig `yaml:"pollers,omitempty"`
}

// EngineConfig tunes the synchronization engine. Durations are Go
// duration strings ("750ms", "2s"); empty values fall back to the
// engine's defaults.
type EngineConfig struct {
	BackgroundDelay  string `yaml:"backgroundDelay,omitempty"`  // Coalescing delay for background updates (default: 2s)
	NormalDelay      string `yaml:"normalDelay,omitempty"`      // Coalescing delay for normal updates (default: 750ms)
	InteractiveDelay string `yaml:"interactiveDelay,omitempty"` // Coalescing delay for interactive updates (default: 150ms)
	MinInterval      string `yaml:"minInterval,omitempty"`      // Minimum spacing between dispatches (default: 250ms)
}

// LockConfig tunes the advisory file lock around the notification
// document.
type LockConfig struct {
	Timeout       string `yaml:"timeout,omitempty"`       // How long to keep retrying (default: 2s)
	RetryInterval string `yaml:"retryInterval,omitempty"` // Pause between attempts (default: 50ms)
	StaleAfter    string `yaml:"staleAfter,omitempty"`    // Marker age treated as crashed owner (default: 10s)
}

// NotifyConfig locates the shared notification document.
type NotifyConfig struct {
	Path     string `yaml:"path,omitempty"`     // Document path (default: ~/.local/share/companion/notifications.json)
	Debounce string `yaml:"debounce,omitempty"` // Settle time after a change before draining (default: 100ms)
}

// DaemonConfig configures the daemon surface.
type DaemonConfig struct {
	SocketPath string `yaml:"socketPath,omitempty"` // Unix socket path (default: per-user under the temp dir)
	PidPath    string `yaml:"pidPath,omitempty"`    // Pid file path (default: next to the socket)
	LogLevel   string `yaml:"logLevel,omitempty"`   // debug, info, warn, error (default: info)
	JSONLog    bool   `yaml:"jsonLog,omitempty"`    // Emit JSON log lines instead of text
}

// PollerConfig declares one periodic command feeding a section. Command
// arguments may use templates, e.g. {{ .home }} or {{ env "USER" }}.
type PollerConfig struct {
	Section  string   `yaml:"section"`            // Section the output updates
	Command  string   `yaml:"command"`            // Executable to run
	Args     []string `yaml:"args,omitempty"`     // Arguments, template-expanded each tick
	Interval string   `yaml:"interval,omitempty"` // Tick interval (default: 30s)
	Priority string   `yaml:"priority,omitempty"` // Update priority (default: background)
	Timeout  string   `yaml:"timeout,omitempty"`  // Per-run command timeout (default: 10s)
}

// Duration parses a configured duration string. Empty strings and
// unparsable values yield zero so the consuming package applies its own
// default; unparsable values are additionally logged.
func Duration(value string) time.Duration {
	if value == "" {
		return 0
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		logging.Warn("Config", "Invalid duration %q, using default: %v", value, err)
		return 0
	}
	return d
}
