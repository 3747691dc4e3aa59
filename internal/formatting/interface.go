// Package formatting renders daemon state for the CLI commands and the
// console, with support for multiple output formats (console, JSON,
// YAML, table). Formatters return strings; printing is the caller's
// concern.
package formatting

import (
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
)

// OutputFormat represents the desired output format
type OutputFormat string

const (
	FormatConsole OutputFormat = "console" // Simple console output
	FormatJSON    OutputFormat = "json"    // JSON output
	FormatYAML    OutputFormat = "yaml"    // YAML output
	FormatTable   OutputFormat = "table"   // Rich table output
)

// Options configures the formatter behavior
type Options struct {
	Format OutputFormat
	Quiet  bool // Suppress decorative elements; compact JSON
	Color  bool // Enable colored output
}

// Formatter renders companion state for one output format.
type Formatter interface {
	// FormatStatus renders daemon metadata plus every section.
	FormatStatus(status daemon.StatusPayload) string

	// FormatSection renders one section's current value.
	FormatSection(section string, value map[string]any) string

	// FormatFrame renders one pushed state frame, batch envelopes
	// included.
	FormatFrame(frame map[string]any) string

	// Configuration
	SetOptions(options Options)
	GetOptions() Options
}

// Factory creates formatters for different output formats
type Factory interface {
	CreateFormatter(options Options) Formatter
}

// NewFactory creates a new formatter factory
func NewFactory() Factory {
	return &factory{}
}

// factory implements the Factory interface
type factory struct{}

// CreateFormatter creates the appropriate formatter based on options
func (f *factory) CreateFormatter(options Options) Formatter {
	switch options.Format {
	case FormatJSON:
		return NewJSONFormatter(options)
	case FormatYAML:
		return NewYAMLFormatter(options)
	case FormatTable:
		return NewTableFormatter(options)
	case FormatConsole:
		fallthrough
	default:
		return NewConsoleFormatter(options)
	}
}
