package formatting

import (
	"encoding/json"
	"fmt"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
)

// JSONFormatter provides structured JSON output formatting
type JSONFormatter struct {
	options Options
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(options Options) Formatter {
	return &JSONFormatter{
		options: options,
	}
}

// FormatStatus formats daemon status as JSON
func (f *JSONFormatter) FormatStatus(status daemon.StatusPayload) string {
	return f.marshal(status)
}

// FormatSection formats one section as JSON keyed by its name
func (f *JSONFormatter) FormatSection(section string, value map[string]any) string {
	return f.marshal(map[string]any{section: value})
}

// FormatFrame formats one pushed frame as JSON
func (f *JSONFormatter) FormatFrame(frame map[string]any) string {
	return f.marshal(frame)
}

// SetOptions updates the formatter options
func (f *JSONFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *JSONFormatter) GetOptions() Options {
	return f.options
}

// marshal converts data to JSON string with appropriate formatting
func (f *JSONFormatter) marshal(data interface{}) string {
	if f.options.Quiet {
		// Compact JSON for quiet mode
		jsonBytes, err := json.Marshal(data)
		if err != nil {
			return fmt.Sprintf(`{"error": "Failed to format JSON: %v"}`, err)
		}
		return string(jsonBytes)
	}
	return PrettyJSON(data)
}
