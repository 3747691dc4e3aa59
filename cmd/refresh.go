package cmd

import (
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/client"
)

var (
	refreshSocket string
	refreshQuiet  bool
)

// refreshCmd asks a running daemon to re-poll every configured backend
// immediately and push a full state frame to all subscribers.
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-poll every backend and repaint",
	Long: `Asks a running companion daemon to re-poll every configured backend
immediately and push a full state frame to all subscribed consumers.
The daemon acknowledges right away; polling continues in the background.`,
	Args: cobra.NoArgs,
	RunE: runRefresh,
}

func runRefresh(cmd *cobra.Command, args []string) error {
	var s *spinner.Spinner
	if !refreshQuiet {
		s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		s.Suffix = " Refreshing..."
		s.Start()
	}

	c, err := client.Connect(refreshSocket)
	if err != nil {
		stopSpinner(s)
		return err
	}
	defer c.Close()

	err = c.Refresh()
	stopSpinner(s)
	if err != nil {
		return err
	}

	if !refreshQuiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Refresh triggered.")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(refreshCmd)

	refreshCmd.Flags().StringVar(&refreshSocket, "socket", "", "Unix socket path (overrides the per-user default)")
	refreshCmd.Flags().BoolVar(&refreshQuiet, "quiet", false, "Suppress progress output")
}
