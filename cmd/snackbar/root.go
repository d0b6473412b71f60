// Package main provides the CLI entrypoint for snackbar.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/journal"
	"github.com/jmylchreest/snackbar/internal/snackbar"
	"github.com/jmylchreest/snackbar/internal/tui"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Source is the journal source name of entries written by the demo.
const Source = "snackbar"

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "snackbar",
	Short: "Terminal snackbar with undo",
	Long: `snackbar shows short messages at the bottom of the terminal, with an
optional action such as UNDO.

Running snackbar without a subcommand launches the todo demo: press d to
delete an item and u (or click UNDO) to bring it back before the bar hides.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
	RunE:         runDemo,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/snackbar/snackbar.toml)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// configFile returns the config file in use.
func configFile() string {
	if globalOpts.configPath != "" {
		return globalOpts.configPath
	}
	return config.ConfigPath()
}

func runDemo(cmd *cobra.Command, args []string) error {
	var delegates []snackbar.Delegate
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.JournalPath())
		if err != nil {
			logger.Warn("journal disabled", "path", cfg.JournalPath(), "error", err)
		} else {
			defer func() { _ = j.Close() }()
			delegates = append(delegates, journal.NewRecorder(j, Source, logger))
		}
	}

	watcher, err := config.NewWatcher(configFile(), cfg, logger)
	if err == nil {
		if err = watcher.Start(); err != nil {
			_ = watcher.Stop()
		}
	}
	if err != nil {
		logger.Warn("config hot reload disabled", "error", err)
		watcher = nil
	} else {
		defer func() { _ = watcher.Stop() }()
	}

	return tui.Run(tui.RunOptions{
		Config:    cfg,
		Delegates: delegates,
		Logger:    logger,
		Watcher:   watcher,
	})
}
