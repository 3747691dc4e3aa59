package app

import (
	"fmt"
	"os"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/config"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

// Application bootstraps and runs the companion daemon. It follows a
// two-phase pattern: NewApplication loads configuration and wires the
// services, Run starts them and blocks until the context ends.
type Application struct {
	config   *Config
	services *Services
}

// NewApplication loads the companion configuration, initializes
// logging from it, and wires all services. Nothing is started yet.
func NewApplication(cfg *Config) (*Application, error) {
	configPath := cfg.ConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	companionCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.CompanionConfig = &companionCfg

	level := logging.LevelInfo
	if parsed, err := logging.ParseLogLevel(companionCfg.Daemon.LogLevel); err == nil {
		level = parsed
	}
	if cfg.Debug {
		level = logging.LevelDebug
	}
	logging.Init(level, companionCfg.Daemon.JSONLog, os.Stderr)
	logging.Info("Bootstrap", "Loaded configuration from %s", configPath)

	services, err := InitializeServices(cfg)
	if err != nil {
		logging.Error("Bootstrap", err, "Failed to initialize services")
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	return &Application{
		config:   cfg,
		services: services,
	}, nil
}
