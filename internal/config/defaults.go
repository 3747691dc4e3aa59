package config

import (
	"os"
	"path/filepath"
)

const (
	// DefaultLogLevel is used when the daemon config does not set one.
	DefaultLogLevel = "info"

	// notifyRelPath is where the notification document lives relative to
	// the user's home directory.
	notifyRelPath = ".local/share/companion/notifications.json"
)

// DefaultNotifyPath returns the default notification document location.
// Falls back to the system temp directory when the home directory
// cannot be determined.
func DefaultNotifyPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "companion", "notifications.json")
	}
	return filepath.Join(homeDir, notifyRelPath)
}

// GetDefaultConfig returns the default configuration for companion.
func GetDefaultConfig() CompanionConfig {
	return CompanionConfig{
		Engine: EngineConfig{
			BackgroundDelay:  "2s",
			NormalDelay:      "750ms",
			InteractiveDelay: "150ms",
			MinInterval:      "250ms",
		},
		Lock: LockConfig{
			Timeout:       "2s",
			RetryInterval: "50ms",
			StaleAfter:    "10s",
		},
		Notify: NotifyConfig{
			Path:     DefaultNotifyPath(),
			Debounce: "100ms",
		},
		Daemon: DaemonConfig{
			LogLevel: DefaultLogLevel,
		},
	}
}
