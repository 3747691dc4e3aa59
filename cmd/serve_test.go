package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestServeCommandStructure(t *testing.T) {
	if serveCmd.Use != "serve" {
		t.Errorf("Expected Use 'serve', got %s", serveCmd.Use)
	}
	if serveCmd.RunE == nil {
		t.Error("Expected serve command to have a RunE function")
	}
	if !strings.Contains(serveCmd.Long, "daemon") {
		t.Error("Expected serve long description to mention the daemon")
	}
}

func TestServeCommandFlags(t *testing.T) {
	for _, name := range []string{"debug", "config-path", "socket"} {
		if serveCmd.Flags().Lookup(name) == nil {
			t.Errorf("Expected serve command to define --%s", name)
		}
	}

	debugFlag := serveCmd.Flags().Lookup("debug")
	if debugFlag.DefValue != "false" {
		t.Errorf("Expected debug to default to false, got %s", debugFlag.DefValue)
	}
}

func TestServeCommandFailsOnBadConfig(t *testing.T) {
	dir := t.TempDir()
	configYAML := "engine:\n  backgroundDelay: nonsense\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(configYAML), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	origConfigPath := serveConfigPath
	defer func() { serveConfigPath = origConfigPath }()
	serveConfigPath = dir

	err := runServe(serveCmd, nil)
	if err == nil {
		t.Fatal("Expected error for malformed configuration")
	}
	if !strings.Contains(err.Error(), "failed to initialize application") {
		t.Errorf("Expected initialization error, got: %v", err)
	}
}
