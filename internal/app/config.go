package app

import (
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/config"
)

// Config holds the application configuration
type Config struct {
	// Debug forces debug-level logging regardless of the config file
	Debug bool

	// Custom configuration file path (optional)
	ConfigPath string

	// SocketPath overrides the configured daemon socket when set
	SocketPath string

	// Version is the build version reported by the status request
	Version string

	// Loaded companion configuration
	CompanionConfig *config.CompanionConfig
}

// NewConfig creates a new application configuration
func NewConfig(debug bool, configPath, socketPath, version string) *Config {
	return &Config{
		Debug:      debug,
		ConfigPath: configPath,
		SocketPath: socketPath,
		Version:    version,
	}
}
