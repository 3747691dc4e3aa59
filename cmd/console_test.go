package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/client"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/formatting"
)

func TestConsoleDispatchExit(t *testing.T) {
	cs := &console{out: &bytes.Buffer{}}

	for _, input := range []string{"exit", "quit", "EXIT"} {
		err := cs.dispatch(input)
		if !errors.Is(err, errExit) {
			t.Errorf("Expected errExit for %q, got: %v", input, err)
		}
	}
}

func TestConsoleDispatchUnknownCommand(t *testing.T) {
	cs := &console{out: &bytes.Buffer{}}

	err := cs.dispatch("frobnicate")
	if err == nil {
		t.Fatal("Expected error for unknown command")
	}
	if !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("Expected unknown command error, got: %v", err)
	}
}

func TestConsoleDispatchHelp(t *testing.T) {
	var buf bytes.Buffer
	cs := &console{out: &buf}

	for _, input := range []string{"help", "?"} {
		buf.Reset()
		if err := cs.dispatch(input); err != nil {
			t.Errorf("Unexpected error for %q: %v", input, err)
		}
		if !strings.Contains(buf.String(), "Available commands") {
			t.Errorf("Expected help text for %q, got: %q", input, buf.String())
		}
	}
}

func TestConsoleNotifyUsage(t *testing.T) {
	// Argument validation happens before the client is touched, so no
	// connection is needed here.
	cs := &console{out: &bytes.Buffer{}}

	for _, input := range []string{"notify", "notify alerts"} {
		err := cs.dispatch(input)
		if err == nil {
			t.Errorf("Expected usage error for %q", input)
			continue
		}
		if !strings.Contains(err.Error(), "usage: notify") {
			t.Errorf("Expected usage error for %q, got: %v", input, err)
		}
	}
}

func TestConsoleNotifyRejectsMalformedField(t *testing.T) {
	cs := &console{out: &bytes.Buffer{}}

	err := cs.dispatch("notify alerts novalue")
	if err == nil {
		t.Fatal("Expected error for malformed field")
	}
	if !strings.Contains(err.Error(), "invalid field") {
		t.Errorf("Expected field error, got: %v", err)
	}
}

func TestConsoleCompleter(t *testing.T) {
	completer := consoleCompleter()
	if completer == nil {
		t.Fatal("Expected a completer")
	}

	// Top-level commands must be completable from an empty line
	candidates, _ := completer.Do([]rune(""), 0)
	joined := ""
	for _, c := range candidates {
		joined += string(c) + " "
	}
	for _, want := range []string{"status", "refresh", "notify", "watch", "help", "exit"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected %q in completions, got: %q", want, joined)
		}
	}
}

func TestConsoleAgainstDaemon(t *testing.T) {
	dir := t.TempDir()
	socketPath := filepath.Join(dir, "companion.sock")

	eng := engine.New(engine.Config{}, engine.SinkFunc(func(engine.Message) error { return nil }))
	defer eng.Stop()
	eng.Update("bots", map[string]any{"state": "idle"}, engine.PriorityBackground)

	srv := daemon.New(daemon.Config{
		SocketPath: socketPath,
		PidPath:    filepath.Join(dir, "companion.pid"),
		Version:    "console-test",
	}, eng, nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start daemon: %v", err)
	}
	defer srv.Stop()

	c, err := client.Connect(socketPath)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer c.Close()

	var buf bytes.Buffer
	cs := &console{
		client:     c,
		socketPath: socketPath,
		out:        &buf,
		formatter: formatting.NewFactory().CreateFormatter(formatting.Options{
			Format: formatting.FormatJSON,
			Quiet:  true,
		}),
	}

	// Full status includes daemon metadata and the seeded section
	if err := cs.dispatch("status"); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"version":"console-test"`) {
		t.Errorf("Expected version in status output, got: %q", buf.String())
	}
	if !strings.Contains(buf.String(), `"bots"`) {
		t.Errorf("Expected bots section in status output, got: %q", buf.String())
	}

	// Single section
	buf.Reset()
	if err := cs.dispatch("status bots"); err != nil {
		t.Fatalf("status bots failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"state"`) {
		t.Errorf("Expected state field in section output, got: %q", buf.String())
	}

	// Unknown section is an error
	if err := cs.dispatch("status nope"); err == nil {
		t.Error("Expected error for unknown section")
	}

	// A new value changes state, repeating it does not
	buf.Reset()
	if err := cs.dispatch("notify bots state=busy"); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Updated.") {
		t.Errorf("Expected 'Updated.', got: %q", buf.String())
	}

	buf.Reset()
	if err := cs.dispatch("notify bots state=busy"); err != nil {
		t.Fatalf("repeated notify failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No change.") {
		t.Errorf("Expected 'No change.', got: %q", buf.String())
	}

	// Refresh is acknowledged even with no pollers wired
	buf.Reset()
	if err := cs.dispatch("refresh"); err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if !strings.Contains(buf.String(), "Refresh triggered.") {
		t.Errorf("Expected refresh confirmation, got: %q", buf.String())
	}
}
