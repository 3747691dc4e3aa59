package formatting

import (
	"fmt"
	"strings"
	"time"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
)

// ConsoleFormatter provides simple console output formatting
type ConsoleFormatter struct {
	options Options
}

// NewConsoleFormatter creates a new console formatter
func NewConsoleFormatter(options Options) Formatter {
	return &ConsoleFormatter{
		options: options,
	}
}

// FormatStatus formats daemon status for console output
func (f *ConsoleFormatter) FormatStatus(status daemon.StatusPayload) string {
	var output []string
	if !f.options.Quiet {
		output = append(output, fmt.Sprintf("companion %s (pid %d)", status.Version, status.PID))
		output = append(output, fmt.Sprintf("started: %s, up %s",
			status.StartedAt.Format(time.RFC3339),
			time.Since(status.StartedAt).Round(time.Second)))
		output = append(output, fmt.Sprintf("clients: %d", status.Clients))
		output = append(output, "")
	}
	if len(status.Sections) == 0 {
		output = append(output, "No sections yet.")
		return strings.Join(output, "\n")
	}
	for _, section := range sortedSectionNames(status.Sections) {
		output = append(output, f.FormatSection(section, status.Sections[section]))
	}
	return strings.Join(output, "\n")
}

// FormatSection formats one section as an indented key/value block
func (f *ConsoleFormatter) FormatSection(section string, value map[string]any) string {
	if len(value) == 0 {
		return fmt.Sprintf("%s: (empty)", section)
	}
	var output []string
	output = append(output, fmt.Sprintf("%s:", section))
	for _, key := range sortedKeys(value) {
		output = append(output, fmt.Sprintf("  %s: %s", key, compactValue(value[key])))
	}
	return strings.Join(output, "\n")
}

// FormatFrame formats one pushed frame as a single line, or one line
// per message for a batch envelope
func (f *ConsoleFormatter) FormatFrame(frame map[string]any) string {
	msgType, _ := frame["type"].(string)
	if msgType == engine.TypeBatchUpdate {
		items, _ := frame["messages"].([]any)
		var output []string
		for _, item := range items {
			if inner, ok := item.(map[string]any); ok {
				output = append(output, f.FormatFrame(inner))
			}
		}
		return strings.Join(output, "\n")
	}

	var parts []string
	for _, key := range sortedKeys(frame) {
		if key == "type" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%s", key, compactValue(frame[key])))
	}
	if len(parts) == 0 {
		return msgType
	}
	return fmt.Sprintf("%s: %s", msgType, strings.Join(parts, " "))
}

// SetOptions updates the formatter options
func (f *ConsoleFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *ConsoleFormatter) GetOptions() Options {
	return f.options
}
