package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/logging"
)

const (
	userConfigDir  = ".config/companion"
	configFileName = "config.yaml"
)

// GetDefaultConfigPathOrPanic returns the per-user configuration
// directory. Panics when the home directory cannot be determined, which
// only happens in degenerate environments where nothing else would work
// either.
func GetDefaultConfigPathOrPanic() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Errorf("could not determine user config directory: %w", err))
	}
	return filepath.Join(homeDir, userConfigDir)
}

// LoadConfig loads config.yaml from the specified directory. Values
// present in the file override defaults; a missing file is not an
// error and yields the defaults unchanged.
func LoadConfig(configPath string) (CompanionConfig, error) {
	configFilePath := filepath.Join(configPath, configFileName)
	config := GetDefaultConfig()

	data, err := os.ReadFile(configFilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logging.Info("ConfigLoader", "No config.yaml found at %s, using defaults", configFilePath)
			return config, nil
		}
		logging.Info("ConfigLoader", "Error loading config.yaml from %s: %s", configFilePath, err)
		return CompanionConfig{}, err
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return CompanionConfig{}, fmt.Errorf("error loading config from %s: %w", configFilePath, err)
	}

	if err := config.Validate(); err != nil {
		return CompanionConfig{}, fmt.Errorf("invalid config in %s: %w", configFilePath, err)
	}

	logging.Info("ConfigLoader", "Loaded configuration from %s", configFilePath)
	return config, nil
}
