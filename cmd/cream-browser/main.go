package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/HFT/cream-browser/internal/command"
	"github.com/HFT/cream-browser/internal/config"
	"github.com/HFT/cream-browser/internal/control"
	"github.com/HFT/cream-browser/internal/history"
	"github.com/HFT/cream-browser/internal/logging"
	"github.com/HFT/cream-browser/internal/modules"
	"github.com/HFT/cream-browser/internal/modules/mailto"
	"github.com/HFT/cream-browser/internal/script"
	"github.com/HFT/cream-browser/internal/session"
	"github.com/HFT/cream-browser/internal/shell"
	"github.com/HFT/cream-browser/internal/tui"
	"github.com/HFT/cream-browser/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "cream-browser [uri...]",
	Short: "Keyboard-driven tabbed browser for the terminal",
	Long: `cream-browser is a modal, keyboard-driven browser with tabs and split panes.

Pages are served by protocol modules (about:, file://, http(s)://, ws://,
mailto:) registered by the configuration script rc.js. Run
"cream-browser init" to write a default one.

Examples:
  cream-browser                              # Open the homepage
  cream-browser example.com                  # Open a page
  cream-browser -o a.example -o b.example    # Open two tabs
  cream-browser -p work                      # Use rc.work.js
  cream-browser -s ~/.cream.sock             # Listen for control commands
  cream-browser -s ~/.cream.sock -e "tabopen example.com"
  cream-browser -k --dump                    # Check and print the configuration`,
	Version:       version.Banner(),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if flagCommand != "" {
			return runCommand(cmd)
		}
		return runBrowser(cmd.Context(), append(flagOpen, args...))
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration script",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		path := filepath.Join(config.ConfigDir, config.ScriptName(flagProfile))
		if err := script.WriteDefault(path, flagForce); err != nil {
			if errors.Is(err, script.ErrExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.Banner())
		if !flagCheck {
			return nil
		}

		update, err := version.CheckForUpdate(cmd.Context(), version.Version)
		if err != nil {
			return err
		}
		if update.Available {
			fmt.Fprintf(out, "A new version is available: %s\n%s\n", update.Latest, update.URL)
		} else {
			fmt.Fprintln(out, "You are running the latest version.")
		}
		return nil
	},
}

var (
	flagOpen    []string
	flagConfig  string
	flagProfile string
	flagSocket  string
	flagCommand string
	flagChkcfg  bool
	flagDump    bool
	flagLog     bool
)

var (
	flagForce bool
	flagCheck bool
)

func init() {
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	rootCmd.PersistentFlags().StringVarP(&flagProfile, "profile", "p", "", "Configuration profile (rc.<profile>.js)")
	rootCmd.PersistentFlags().StringVarP(&flagSocket, "socket", "s", "", "Control socket path")

	rootCmd.Flags().StringArrayVarP(&flagOpen, "open", "o", []string{}, "Open a URI, can be repeated")
	rootCmd.Flags().StringVarP(&flagConfig, "config", "c", "", "Configuration script")
	rootCmd.Flags().StringVarP(&flagCommand, "command", "e", "", "Send a command to a running browser and print the reply")
	rootCmd.Flags().BoolVarP(&flagChkcfg, "chkcfg", "k", false, "Check the configuration and exit")
	rootCmd.Flags().BoolVar(&flagDump, "dump", false, "With --chkcfg, print the effective configuration")
	rootCmd.Flags().BoolVarP(&flagLog, "log", "l", false, "Write a log to the configuration directory")

	initCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "Overwrite an existing script")
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check for a newer release")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(ctlCmd)
}

// socketPath returns the control socket from --socket, falling back to
// CREAM_SOCKET.
func socketPath(settings *config.Settings) string {
	path := flagSocket
	if path == "" && settings != nil {
		path = settings.Socket
	}
	return config.ExpandHome(path)
}

// runCommand sends --command to a running browser.
func runCommand(cmd *cobra.Command) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	path := socketPath(settings)
	if path == "" {
		return errors.New("--command needs --socket")
	}

	reply, err := control.Send(path, flagCommand)
	if err != nil {
		return err
	}
	if msg, ok := strings.CutPrefix(reply, "Error: "); ok {
		return errors.New(msg)
	}
	if reply != "" {
		fmt.Fprintln(cmd.OutOrStdout(), reply)
	}
	return nil
}

func newLogger(settings *config.Settings) (*zap.Logger, error) {
	if !flagLog && !settings.Log.Development {
		return logging.Nop(), nil
	}
	cfg := logging.DefaultConfig(config.LogFile)
	if settings.Log.Development {
		cfg = logging.DevelopmentConfig(config.LogFile)
	} else if settings.Log.Level != "" {
		cfg.Level = settings.Log.Level
	}
	return logging.New(cfg)
}

// loadConfig finds and runs the configuration script. A missing script
// is fatal.
func loadConfig(ctx context.Context, settings *config.Settings, logger *zap.Logger) (*script.Config, error) {
	path, err := config.FindConfig(flagConfig, flagProfile)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, fmt.Errorf(`%w (run "cream-browser init" to create one)`, err)
		}
		return nil, err
	}

	rt := script.New(script.Options{
		Modules:  modules.Names,
		Commands: command.RegisterBuiltins(command.NewDispatcher(logger)).Names(),
		Logger:   logger,
	})
	cfg, err := rt.RunFile(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(settings); err != nil {
		return nil, err
	}
	if flagSocket != "" {
		settings.Socket = flagSocket
	}
	return cfg, nil
}

func runBrowser(ctx context.Context, uris []string) error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	logger, err := newLogger(settings)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := loadConfig(ctx, settings, logger)
	if err != nil {
		return err
	}

	opts := shell.Options{
		Config:       cfg,
		Settings:     settings,
		Sessions:     session.NewManager(config.SessionFile),
		KeybindsFile: config.KeybindsFile,
		DownloadsDir: config.DownloadsDir,
		Clipboard:    clipboard.WriteAll,
		Opener:       mailto.XDGOpen,
		Logger:       logger,
	}

	if flagChkcfg {
		data, warnings, err := shell.Check(opts)
		if err != nil {
			return err
		}
		for _, w := range warnings {
			fmt.Fprintln(os.Stderr, "Warning: "+w)
		}
		fmt.Println("No errors found.")
		if flagDump {
			fmt.Print(string(data))
		}
		return nil
	}

	store, err := history.NewStore(config.DatabasePath)
	if err != nil {
		logger.Warn("history disabled", zap.Error(err))
	} else {
		defer store.Close()
		opts.History = store
	}

	s, err := shell.New(opts)
	if err != nil {
		return err
	}
	defer s.Shutdown()

	if err := s.Open(uris); err != nil {
		s.Message(err.Error(), true)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	if path := socketPath(settings); path != "" {
		srv := control.NewServer(path, s.Call, logger)
		if err := srv.Listen(); err != nil {
			return err
		}
		g.Go(func() error {
			return srv.Serve(ctx)
		})
	}

	g.Go(func() error {
		defer cancel()
		return tui.Run(ctx, s, cfg.Theme, logger)
	})

	return g.Wait()
}
