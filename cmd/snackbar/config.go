package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
)

var configOpts struct {
	init  bool
	force bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration in effect, after defaults and the theme palette
are applied, as TOML.

Examples:
  # Show the effective configuration
  snackbar config

  # Write the defaults to ~/.config/snackbar/snackbar.toml
  snackbar config --init`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().BoolVar(&configOpts.init, "init", false,
		"Write the default configuration to the config file")
	configCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite an existing config file (with --init)")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configOpts.init {
		return initConfig(cmd.OutOrStdout(), configFile(), configOpts.force)
	}
	return printConfig(cmd.OutOrStdout(), configFile(), cfg)
}

// printConfig writes c as TOML, preceded by a comment naming its file.
func printConfig(w io.Writer, path string, c *config.Config) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if _, err := fmt.Fprintf(w, "# %s\n", path); err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// initConfig writes the defaults to path. An existing file is kept unless
// force is set.
func initConfig(w io.Writer, path string, force bool) error {
	if path == "" {
		return errors.New("unable to determine config path")
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Wrote %s\n", path)
	return err
}
