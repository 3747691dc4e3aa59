package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command for the companion application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "companion",
	Short: "Differential state daemon for the desktop companion bar",
	Long: `companion keeps a desktop status surface in sync with slow backends.
A daemon aggregates pipeline, bot, alert, and session state from
configured pollers and a shared notification file, coalesces changes by
priority, and pushes minimal update frames to subscribed consumers over
a per-user unix socket.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
// It initializes and executes the root command, which in turn handles
// subcommands and flags. This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "companion version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init adds the subcommands that register through constructors; commands
// with flags add themselves in their own files.
func init() {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
