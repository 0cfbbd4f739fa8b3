package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/HFT/cream-browser/internal/command"
	"github.com/HFT/cream-browser/internal/config"
	"github.com/HFT/cream-browser/internal/control"
)

var ctlCmd = &cobra.Command{
	Use:   "ctl",
	Short: "Interactive console for a running browser",
	Long: `Connects to the control socket of a running browser and sends each
line typed as a command. Tab completes command names.

  cream-browser -s ~/.cream.sock          # in one terminal
  cream-browser -s ~/.cream.sock ctl      # in another`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		settings, err := config.LoadSettings()
		if err != nil {
			return err
		}
		path := socketPath(settings)
		if path == "" {
			return errors.New("ctl needs --socket")
		}
		return runConsole(cmd, path)
	},
}

func buildCompleter() *readline.PrefixCompleter {
	names := command.RegisterBuiltins(command.NewDispatcher(nil)).Names()
	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(items...)
}

func runConsole(cmd *cobra.Command, path string) error {
	client, err := control.Dial(path)
	if err != nil {
		return err
	}
	defer client.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:       "cream> ",
		AutoComplete: buildCompleter(),
		HistoryFile:  filepath.Join(config.DataDir, "ctl_history"),
		EOFPrompt:    "exit",
	})
	if err != nil {
		return fmt.Errorf("failed to start console: %w", err)
	}
	defer rl.Close()

	out := cmd.OutOrStdout()
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		switch line {
		case "":
			continue
		case "exit":
			return nil
		}

		reply, err := client.Send(line)
		if err != nil {
			return err
		}
		if reply != "" {
			fmt.Fprintln(out, reply)
		}
	}
}
