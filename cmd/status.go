package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/client"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/formatting"
)

var (
	statusOutput  string
	statusSection string
	statusSocket  string
	statusQuiet   bool
	statusNoColor bool
)

// statusCmd queries a running daemon for its build identity, uptime,
// subscriber count, and the current value of every section.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon state and section contents",
	Long: `Queries a running companion daemon and renders its build identity,
uptime, subscriber count, and the current value of every section.

Use --section to show a single section and --output to pick the format.`,
	Example: `  companion status
  companion status --section pipelines
  companion status --output json --quiet`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	format, err := parseOutputFormat(statusOutput)
	if err != nil {
		return err
	}

	var s *spinner.Spinner
	if !statusQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Querying companion daemon..."
		s.Start()
	}

	c, err := client.Connect(statusSocket)
	if err != nil {
		stopSpinner(s)
		return err
	}
	defer c.Close()

	status, err := c.Status()
	stopSpinner(s)
	if err != nil {
		return err
	}

	formatter := formatting.NewFactory().CreateFormatter(formatting.Options{
		Format: format,
		Quiet:  statusQuiet,
		Color:  !statusNoColor,
	})

	out := cmd.OutOrStdout()
	if statusSection != "" {
		value, ok := status.Sections[statusSection]
		if !ok {
			return fmt.Errorf("unknown section %q", statusSection)
		}
		fmt.Fprintln(out, formatter.FormatSection(statusSection, value))
		return nil
	}
	fmt.Fprintln(out, formatter.FormatStatus(status))
	return nil
}

// parseOutputFormat maps the --output flag onto a formatter format.
func parseOutputFormat(value string) (formatting.OutputFormat, error) {
	switch value {
	case "", "table":
		return formatting.FormatTable, nil
	case "json":
		return formatting.FormatJSON, nil
	case "yaml":
		return formatting.FormatYAML, nil
	case "console":
		return formatting.FormatConsole, nil
	default:
		return "", fmt.Errorf("unknown output format %q (expected table, json, yaml, or console)", value)
	}
}

// stopSpinner stops a spinner when one is running.
func stopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOutput, "output", "o", "table", "Output format (table, json, yaml, console)")
	statusCmd.Flags().StringVar(&statusSection, "section", "", "Show only the named section")
	statusCmd.Flags().StringVar(&statusSocket, "socket", "", "Unix socket path (overrides the per-user default)")
	statusCmd.Flags().BoolVar(&statusQuiet, "quiet", false, "Compact output without headers or progress")
	statusCmd.Flags().BoolVar(&statusNoColor, "no-color", false, "Disable colored output")
}
