package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/client"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/daemon"
	"github.com/B-Whitt/redhat-ai-workflow-sub002/internal/formatting"
)

// consoleSocket overrides the daemon socket path.
var consoleSocket string

// errExit signals a clean console shutdown from the exit command.
var errExit = errors.New("exit")

// consoleCmd opens an interactive console over the daemon socket.
var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Interactive console for a running companion daemon",
	Long: `Opens an interactive console over the daemon socket. Supported
commands: status, refresh, notify, watch, help, exit. Use TAB for
completion; history persists across sessions.`,
	Args: cobra.NoArgs,
	RunE: runConsole,
}

func runConsole(cmd *cobra.Command, args []string) error {
	c, err := client.Connect(consoleSocket)
	if err != nil {
		return err
	}
	defer c.Close()

	cs := &console{
		client:     c,
		socketPath: consoleSocket,
		out:        cmd.OutOrStdout(),
		formatter: formatting.NewFactory().CreateFormatter(formatting.Options{
			Format: formatting.FormatConsole,
			Color:  true,
		}),
	}
	return cs.run()
}

// console is one interactive session over an established client
// connection. watch opens its own connection, because a subscribed
// connection cannot serve requests anymore.
type console struct {
	client     *client.Client
	socketPath string
	out        io.Writer
	formatter  formatting.Formatter
}

// run drives the read-eval-print loop until exit, EOF, or a readline
// failure.
func (cs *console) run() error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "companion> ",
		HistoryFile:       filepath.Join(os.TempDir(), ".companion_console_history"),
		AutoComplete:      consoleCompleter(),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline instance: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(cs.out, "companion console. Type 'help' for available commands, TAB to complete.")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				continue
			}
		} else if err == io.EOF {
			fmt.Fprintln(cs.out, "Goodbye!")
			return nil
		} else if err != nil {
			return fmt.Errorf("readline error: %w", err)
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if err := cs.dispatch(input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(cs.out, "Goodbye!")
				return nil
			}
			fmt.Fprintf(cs.out, "Error: %v\n", err)
		}
	}
}

// consoleCompleter builds tab completion for the console commands; the
// section names come from the projection table.
func consoleCompleter() *readline.PrefixCompleter {
	sections := daemon.Projections()
	sectionItems := make([]readline.PrefixCompleterInterface, len(sections))
	for i, p := range sections {
		sectionItems[i] = readline.PcItem(p.Section)
	}

	return readline.NewPrefixCompleter(
		readline.PcItem("status", sectionItems...),
		readline.PcItem("refresh"),
		readline.PcItem("notify", sectionItems...),
		readline.PcItem("watch"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// dispatch parses one input line and runs the matching command.
func (cs *console) dispatch(input string) error {
	parts := strings.Fields(input)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case "status":
		return cs.status(args)
	case "refresh":
		return cs.refresh()
	case "notify":
		return cs.notify(args)
	case "watch":
		return cs.watch()
	case "help", "?":
		cs.help()
		return nil
	case "exit", "quit":
		return errExit
	default:
		return fmt.Errorf("unknown command: %s. Type 'help' for available commands", parts[0])
	}
}

func (cs *console) status(args []string) error {
	status, err := cs.client.Status()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		section := args[0]
		value, ok := status.Sections[section]
		if !ok {
			return fmt.Errorf("unknown section %q", section)
		}
		fmt.Fprintln(cs.out, cs.formatter.FormatSection(section, value))
		return nil
	}
	fmt.Fprintln(cs.out, cs.formatter.FormatStatus(status))
	return nil
}

func (cs *console) refresh() error {
	if err := cs.client.Refresh(); err != nil {
		return err
	}
	fmt.Fprintln(cs.out, "Refresh triggered.")
	return nil
}

// notify merges fields into a section through the daemon, at interactive
// priority since someone is typing at it.
func (cs *console) notify(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: notify SECTION KEY=VALUE [KEY=VALUE...]")
	}
	fields, err := parseFieldArgs(args[1:])
	if err != nil {
		return err
	}
	changed, err := cs.client.Update(args[0], "interactive", fields)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintln(cs.out, "Updated.")
	} else {
		fmt.Fprintln(cs.out, "No change.")
	}
	return nil
}

// watch streams state frames on a second connection until Ctrl+C.
func (cs *console) watch() error {
	sub, err := client.Connect(cs.socketPath)
	if err != nil {
		return err
	}
	defer sub.Close()

	fmt.Fprintln(cs.out, "Watching for frames, Ctrl+C to stop.")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err = sub.Subscribe(ctx, "console", func(frame map[string]any) {
		fmt.Fprintln(cs.out, cs.formatter.FormatFrame(frame))
	})
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(cs.out, "Stopped watching.")
		return nil
	}
	return err
}

func (cs *console) help() {
	fmt.Fprint(cs.out, `Available commands:
  status [SECTION]              Show daemon state, or one section
  refresh                       Re-poll every backend and repaint
  notify SECTION KEY=VALUE...   Merge fields into a section
  watch                         Stream state frames until Ctrl+C
  help                          Show this help
  exit                          Leave the console
`)
}

func init() {
	rootCmd.AddCommand(consoleCmd)

	consoleCmd.Flags().StringVar(&consoleSocket, "socket", "", "Unix socket path (overrides the per-user default)")
}
