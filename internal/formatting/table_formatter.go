package formatting

import (
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	pkgstrings "github.com/B-Whitt/redhat-ai-workflow-sub002/pkg/strings"
)

// TableFormatter provides rich table output formatting
type TableFormatter struct {
	options Options
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(options Options) Formatter {
	return &TableFormatter{
		options: options,
	}
}

// FormatStatus formats daemon status as a metadata table followed by
// one table per section
func (f *TableFormatter) FormatStatus(status daemon.StatusPayload) string {
	var output []string

	if !f.options.Quiet {
		t := f.createTable()
		t.AppendRows([]table.Row{
			{f.highlight("version"), status.Version},
			{f.highlight("pid"), status.PID},
			{f.highlight("started"), status.StartedAt.Format(time.RFC3339)},
			{f.highlight("uptime"), time.Since(status.StartedAt).Round(time.Second)},
			{f.highlight("clients"), status.Clients},
		})
		output = append(output, t.Render())
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

// FormatSection formats one section as a titled KEY/VALUE table with
// values right-aligned
func (f *TableFormatter) FormatSection(section string, value map[string]any) string {
	t := f.createTable()
	t.SetTitle(section)
	t.AppendHeader(table.Row{f.highlight("KEY"), f.highlight("VALUE")})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
	})

	for _, key := range sortedKeys(value) {
		valueStr := pkgstrings.TruncateValue(compactValue(value[key]), pkgstrings.DefaultValueMaxLen)
		t.AppendRow(table.Row{key, valueStr})
	}
	return t.Render()
}

// FormatFrame formats one pushed frame as a titled table per message
func (f *TableFormatter) FormatFrame(frame map[string]any) string {
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

	fields := make(map[string]any, len(frame))
	for k, v := range frame {
		if k == "type" {
			continue
		}
		fields[k] = v
	}
	return f.FormatSection(msgType, fields)
}

// SetOptions updates the formatter options
func (f *TableFormatter) SetOptions(options Options) {
	f.options = options
}

// GetOptions returns the current formatter options
func (f *TableFormatter) GetOptions() Options {
	return f.options
}

// createTable creates a new table with standard styling
func (f *TableFormatter) createTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	return t
}

// highlight colors a header or key cell when color is enabled
func (f *TableFormatter) highlight(s string) string {
	if !f.options.Color {
		return s
	}
	return text.FgHiCyan.Sprint(s)
}
