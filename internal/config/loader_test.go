package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile places a config.yaml with the given content into dir.
func writeConfigFile(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	loaded, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, GetDefaultConfig(), loaded)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
engine:
  normalDelay: 500ms
daemon:
  logLevel: debug
pollers:
  - section: pipelines
    command: workflow-status
    args: ["--format", "json"]
    interval: 15s
    priority: background
`)

	loaded, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "500ms", loaded.Engine.NormalDelay)
	assert.Equal(t, "2s", loaded.Engine.BackgroundDelay, "unset values keep defaults")
	assert.Equal(t, "debug", loaded.Daemon.LogLevel)

	require.Len(t, loaded.Pollers, 1)
	assert.Equal(t, "pipelines", loaded.Pollers[0].Section)
	assert.Equal(t, "workflow-status", loaded.Pollers[0].Command)
	assert.Equal(t, []string{"--format", "json"}, loaded.Pollers[0].Args)
	assert.Equal(t, "15s", loaded.Pollers[0].Interval)
}

func TestLoadConfigMalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, "engine: [not: a: mapping")

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading config")
}

func TestLoadConfigInvalidContentRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfigFile(t, dir, `
pollers:
  - section: pipelines
`)

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "command")
}
