package formatting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
)

func statusFixture() daemon.StatusPayload {
	return daemon.StatusPayload{
		Version:   "test",
		PID:       42,
		StartedAt: time.Now().Add(-time.Minute),
		Clients:   2,
		Sections: map[string]map[string]any{
			"alerts": {"count": 2},
			"bots":   {"idle": 1},
		},
	}
}

func TestFactoryCreatesFormatterPerFormat(t *testing.T) {
	f := NewFactory()

	assert.IsType(t, &JSONFormatter{}, f.CreateFormatter(Options{Format: FormatJSON}))
	assert.IsType(t, &YAMLFormatter{}, f.CreateFormatter(Options{Format: FormatYAML}))
	assert.IsType(t, &TableFormatter{}, f.CreateFormatter(Options{Format: FormatTable}))
	assert.IsType(t, &ConsoleFormatter{}, f.CreateFormatter(Options{Format: FormatConsole}))
	assert.IsType(t, &ConsoleFormatter{}, f.CreateFormatter(Options{Format: "bogus"}))
}

func TestConsoleFormatStatus(t *testing.T) {
	f := NewConsoleFormatter(Options{})
	out := f.FormatStatus(statusFixture())

	assert.Contains(t, out, "companion test (pid 42)")
	assert.Contains(t, out, "clients: 2")
	assert.Contains(t, out, "alerts:")
	assert.Contains(t, out, "  count: 2")
	assert.Less(t, strings.Index(out, "alerts:"), strings.Index(out, "bots:"),
		"sections render in sorted order")
}

func TestConsoleQuietSkipsHeader(t *testing.T) {
	f := NewConsoleFormatter(Options{Quiet: true})
	out := f.FormatStatus(statusFixture())

	assert.NotContains(t, out, "companion")
	assert.Contains(t, out, "alerts:")
}

func TestConsoleFormatStatusEmpty(t *testing.T) {
	f := NewConsoleFormatter(Options{Quiet: true})
	out := f.FormatStatus(daemon.StatusPayload{Version: "test"})

	assert.Equal(t, "No sections yet.", out)
}

func TestConsoleFormatFrame(t *testing.T) {
	f := NewConsoleFormatter(Options{})

	out := f.FormatFrame(map[string]any{"type": "alertsUpdate", "count": 2})
	assert.Equal(t, "alertsUpdate: count=2", out)

	out = f.FormatFrame(map[string]any{"type": "sessionsUpdate"})
	assert.Equal(t, "sessionsUpdate", out)
}

func TestConsoleFormatBatchFrame(t *testing.T) {
	f := NewConsoleFormatter(Options{})
	out := f.FormatFrame(map[string]any{
		"type": "batchUpdate",
		"messages": []any{
			map[string]any{"type": "pipelinesUpdate", "active": 1},
			map[string]any{"type": "botsBadge", "count": 3},
		},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "pipelinesUpdate: active=1", lines[0])
	assert.Equal(t, "botsBadge: count=3", lines[1])
}

func TestJSONFormatterModes(t *testing.T) {
	quiet := NewJSONFormatter(Options{Quiet: true})
	out := quiet.FormatSection("alerts", map[string]any{"count": 2})
	assert.JSONEq(t, `{"alerts": {"count": 2}}`, out)
	assert.NotContains(t, out, "\n")

	pretty := NewJSONFormatter(Options{})
	assert.Contains(t, pretty.FormatSection("alerts", map[string]any{"count": 2}), "\n")
}

func TestYAMLFormatterStatus(t *testing.T) {
	f := NewYAMLFormatter(Options{})
	out := f.FormatStatus(statusFixture())

	assert.Contains(t, out, "version: test")
	assert.Contains(t, out, "pid: 42")
	assert.Contains(t, out, "count: 2")
}

func TestTableFormatterSection(t *testing.T) {
	f := NewTableFormatter(Options{})
	out := f.FormatSection("alerts", map[string]any{"count": 2, "muted": false})

	assert.Contains(t, out, "alerts")
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "count")
	assert.Contains(t, out, "muted")
}

func TestTableFormatterTruncatesLongValues(t *testing.T) {
	f := NewTableFormatter(Options{})
	long := strings.Repeat("x", 150)
	out := f.FormatSection("alerts", map[string]any{"note": long})

	assert.Contains(t, out, "...")
	assert.NotContains(t, out, long)
}

func TestTableFormatterFrameUsesMessageType(t *testing.T) {
	f := NewTableFormatter(Options{})
	out := f.FormatFrame(map[string]any{"type": "botsBadge", "count": 3})

	assert.Contains(t, out, "botsBadge")
	assert.Contains(t, out, "count")
}

func TestCompactValue(t *testing.T) {
	assert.Equal(t, "2", compactValue(2))
	assert.Equal(t, "ready", compactValue("ready"))
	assert.Equal(t, `{"a":1}`, compactValue(map[string]any{"a": 1}))
	assert.Equal(t, `[1,2]`, compactValue([]any{1, 2}))
}
