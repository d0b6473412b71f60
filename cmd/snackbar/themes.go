package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/display"
	"github.com/jmylchreest/snackbar/internal/theme"
)

var themesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Long: `List bundled themes and user themes from ~/.config/snackbar/themes/,
each with a preview. Select one with theme = "<name>" in the [style] section
of the config file.

A theme file sets any of background, message_color, action_color,
message_bold and action_bold, and may take the rest from another theme with
inherits = "<name>".`,
	Args: cobra.NoArgs,
	RunE: runThemes,
}

func init() {
	rootCmd.AddCommand(themesCmd)
}

func runThemes(cmd *cobra.Command, args []string) error {
	dir := config.ThemesDir()
	infos, err := theme.ListAvailableThemes(dir)
	if err != nil {
		logger.Warn("failed to read themes directory", "dir", dir, "error", err)
	}
	return listThemes(cmd.OutOrStdout(), infos, dir, cfg.Style.Theme)
}

// listThemes writes one line per theme. Themes that fail to load are listed
// with the error instead of a preview.
func listThemes(w io.Writer, infos []theme.ThemeInfo, dir, current string) error {
	if current == "" {
		current = theme.DefaultThemeName
	}
	for _, info := range infos {
		marker := " "
		if info.Name == current {
			marker = "*"
		}
		source := "bundled"
		if !info.IsBundled {
			source = info.Path
		}

		preview := ""
		t, err := theme.Load(info.Name, dir)
		if err != nil {
			preview = "error: " + err.Error()
		} else {
			preview = themePreview(t.Palette)
		}

		if _, err := fmt.Fprintf(w, "%s %-18s %s  %s\n", marker, info.Name, preview, source); err != nil {
			return err
		}
	}
	return nil
}

// themePreview renders a one-line bar in palette p.
func themePreview(p theme.Palette) string {
	var style config.StyleConfig
	style.ApplyPalette(p)
	styles := display.NewStyles(style)
	return styles.Bar.Render(" ") + styles.Message.Render("Deleted: Shopping") +
		styles.Bar.Render("   ") + styles.Action.Render("UNDO") + styles.Bar.Render(" ")
}
