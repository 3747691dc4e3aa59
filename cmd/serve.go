package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/app"
)

// serveDebug enables verbose logging across the daemon.
var serveDebug bool

// serveConfigPath specifies a custom configuration directory path.
// The directory should contain config.yaml.
var serveConfigPath string

// serveSocket overrides the configured unix socket path.
var serveSocket string

// serveCmd defines the serve command structure. This is the main command
// of companion: it runs the daemon that aggregates state and pushes
// frames to subscribed consumers.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the companion daemon",
	Long: `Starts the companion daemon: binds the per-user unix socket, watches
the shared notification file, runs the configured pollers, and pushes
coalesced state frames to every subscribed consumer.

The daemon runs until interrupted (Ctrl+C) or terminated. Under systemd
it reports readiness once the socket is listening.

Configuration:
  companion loads config.yaml from ~/.config/companion by default.
  Use --config-path to load from a different directory.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

// runServe is the main entry point for the serve command.
func runServe(cmd *cobra.Command, args []string) error {
	cfg := app.NewConfig(serveDebug, serveConfigPath, serveSocket, rootCmd.Version)

	application, err := app.NewApplication(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return application.Run(ctx)
}

// init registers the serve command and its flags with the root command.
func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().BoolVar(&serveDebug, "debug", false, "Enable debug logging")
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "", "Custom configuration directory path")
	serveCmd.Flags().StringVar(&serveSocket, "socket", "", "Unix socket path (overrides configuration)")
}
