package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
)

func TestRefreshCommandAgainstDaemon(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "companion.sock")

	eng := engine.New(engine.Config{}, engine.SinkFunc(func(engine.Message) error { return nil }))
	defer eng.Stop()

	srv := daemon.New(daemon.Config{
		SocketPath: socketPath,
		PidPath:    filepath.Join(dir, "companion.pid"),
		Version:    "refresh-test",
	}, eng, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start daemon: %v", err)
	}
	defer srv.Stop()

	origSocket, origQuiet := refreshSocket, refreshQuiet
	defer func() { refreshSocket, refreshQuiet = origSocket, origQuiet }()
	refreshSocket = socketPath
	refreshQuiet = false

	var buf bytes.Buffer
	refreshCmd.SetOut(&buf)

	if err := runRefresh(refreshCmd, nil); err != nil {
		t.Fatalf("runRefresh failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Refresh triggered.") {
		t.Errorf("Expected confirmation output, got: %q", buf.String())
	}
}

func TestRefreshCommandWithoutDaemon(t *testing.T) {
	origSocket, origQuiet := refreshSocket, refreshQuiet
	defer func() { refreshSocket, refreshQuiet = origSocket, origQuiet }()
	refreshSocket = filepath.Join(t.TempDir(), "absent.sock")
	refreshQuiet = true

	err := runRefresh(refreshCmd, nil)
	if err == nil {
		t.Fatal("Expected error when no daemon is listening")
	}
	if !strings.Contains(err.Error(), "failed to connect") {
		t.Errorf("Expected connection error, got: %v", err)
	}
}
