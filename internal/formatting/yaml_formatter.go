package formatting

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
)

// YAMLFormatter provides YAML output formatting
type YAMLFormatter struct {
	options Options
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(options Options) Formatter {
	return &YAMLFormatter{
		options: options,
	}
}

// FormatStatus formats daemon status as YAML
func (f *YAMLFormatter) FormatStatus(status daemon.StatusPayload) string {
	return f.marshal(status)
}

// FormatSection formats one section as YAML keyed by its name
func (f *YAMLFormatter) FormatSection(section string, value map[string]any) string {
	return f.marshal(map[string]any{section: value})
}

// FormatFrame formats one pushed frame as YAML
func (f *YAMLFormatter) FormatFrame(frame map[string]any) string {
	return f.marshal(frame)
}

// SetOptions updates the formatter options
func (f *YAMLFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *YAMLFormatter) GetOptions() Options {
	return f.options
}

// marshal converts data to a YAML string, falling back to fmt on error
func (f *YAMLFormatter) marshal(data interface{}) string {
	out, err := yaml.Marshal(data)
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(out)
}
