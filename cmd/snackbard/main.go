// Package main is the entry point for the snackbard daemon.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/daemon"
)

var (
	// Build-time variables
	version = "dev"
)

func main() {
	headless := flag.Bool("headless", false, "Run without the feed TUI, logging snackbar activity to stderr")
	readStdin := flag.Bool("stdin", false, "Also read requests from stdin, one per line (headless only)")
	configPath := flag.String("config", "", "Path to config file (default: ~/.config/snackbar/snackbar.toml)")
	logFile := flag.String("log-file", "", "Log file used while the feed TUI owns the terminal (default: ~/.local/share/snackbar/snackbard.log)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("snackbard version", version)
		os.Exit(0)
	}

	logger, closeLog, err := setupLogger(*headless, *logFile, *verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "snackbard:", err)
		os.Exit(1)
	}
	defer closeLog()

	if *readStdin && !*headless {
		logger.Warn("--stdin requires --headless, ignoring")
	}

	if err := run(logger, *configPath, *headless, *headless && *readStdin); err != nil {
		logger.Error("snackbard failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string, headless, readStdin bool) error {
	logger.Info("starting snackbard", "version", version, "headless", headless)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if configPath == "" {
		configPath = config.ConfigPath()
	}

	// Set up signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := daemon.Options{
		Config:     cfg,
		ConfigPath: configPath,
		Headless:   headless,
		Version:    version,
		Logger:     logger,
	}
	if readStdin {
		opts.Stdin = os.Stdin
	}

	err = daemon.New(opts).Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("snackbard stopped")
	return nil
}

// setupLogger logs to stderr in headless mode. The feed TUI owns the
// terminal, so otherwise logs go to a file.
func setupLogger(headless bool, logFile string, verbose bool) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var w io.Writer = os.Stderr
	closeLog := func() {}
	if !headless {
		if logFile == "" {
			if err := config.EnsureDataDir(); err != nil {
				return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
			}
			logFile = filepath.Join(config.DataPath(), "snackbard.log")
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w = f
		closeLog = func() { _ = f.Close() }
	}

	logger := slog.New(slog.NewTextHandler(w, opts))
	slog.SetDefault(logger)
	return logger, closeLog, nil
}
