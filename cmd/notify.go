package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/config"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/engine"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/filelock"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/notify"
)

var (
	notifySection    string
	notifyPriority   string
	notifyFields     []string
	notifyConfigPath string
	notifyQuiet      bool
)

// notifyCmd appends a partial section update to the shared notification
// file. It talks to the file, not the socket, so it works with no daemon
// running.
var notifyCmd = &cobra.Command{
	Use:   "notify [JSON]",
	Short: "Post a section update through the shared notification file",
	Long: `Appends a partial section update to the shared notification file. A
running daemon picks the entry up and merges it; with no daemon running
the entry waits in the file until one starts.

Fields come from the positional JSON object, --field flags, or both;
--field entries win on conflict. Field values are parsed as JSON where
possible ("3" becomes a number, "true" a boolean), otherwise kept as
strings.`,
	Example: `  companion notify --section alerts '{"count": 3}'
  companion notify --section bots --field state=busy --field jobs=2
  companion notify --section sessions --priority interactive --field active=4`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNotify,
}

func runNotify(cmd *cobra.Command, args []string) error {
	if notifySection == "" {
		return fmt.Errorf("--section is required")
	}
	if notifyPriority != "" {
		if _, err := engine.ParsePriority(notifyPriority); err != nil {
			return err
		}
	}

	fields := map[string]any{}
	if len(args) == 1 {
		if err := json.Unmarshal([]byte(args[0]), &fields); err != nil {
			return fmt.Errorf("positional argument must be a JSON object: %w", err)
		}
	}
	flagFields, err := parseFieldArgs(notifyFields)
	if err != nil {
		return err
	}
	for key, value := range flagFields {
		fields[key] = value
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to post: provide a JSON object or --field entries")
	}

	configPath := notifyConfigPath
	if configPath == "" {
		configPath = config.GetDefaultConfigPathOrPanic()
	}
	companionCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	locker := filelock.New(
		config.Duration(companionCfg.Lock.Timeout),
		config.Duration(companionCfg.Lock.RetryInterval),
		config.Duration(companionCfg.Lock.StaleAfter),
	)
	store := notify.NewStore(companionCfg.Notify.Path, locker)

	entry, err := store.Append(notifySection, notifyPriority, fields)
	if err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}

	if !notifyQuiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Posted %s to %s\n", entry.ID, notifySection)
	}
	return nil
}

// parseFieldArgs turns KEY=VALUE pairs into a field map. Values parse as
// JSON where possible and stay strings otherwise.
func parseFieldArgs(pairs []string) (map[string]any, error) {
	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid field %q (expected KEY=VALUE)", pair)
		}
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err != nil {
			parsed = value
		}
		fields[key] = parsed
	}
	return fields, nil
}

func init() {
	rootCmd.AddCommand(notifyCmd)

	notifyCmd.Flags().StringVar(&notifySection, "section", "", "Section to update (required)")
	notifyCmd.Flags().StringVar(&notifyPriority, "priority", "", "Update priority (background, normal, interactive, immediate)")
	notifyCmd.Flags().StringArrayVar(&notifyFields, "field", nil, "Field as KEY=VALUE (repeatable)")
	notifyCmd.Flags().StringVar(&notifyConfigPath, "config-path", "", "Custom configuration directory path")
	notifyCmd.Flags().BoolVar(&notifyQuiet, "quiet", false, "Suppress confirmation output")
}
