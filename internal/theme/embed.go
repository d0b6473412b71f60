package theme

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

// EmbeddedThemes contains all bundled theme files.
//
//go:embed themes/*.toml
var EmbeddedThemes embed.FS

// DefaultThemeName is the name of the built-in default theme.
const DefaultThemeName = "default"

// themeExt is the file extension of theme files.
const themeExt = ".toml"

// GetEmbeddedTheme retrieves a bundled theme by name.
func GetEmbeddedTheme(name string) ([]byte, bool) {
	data, err := EmbeddedThemes.ReadFile("themes/" + name + themeExt)
	if err != nil {
		return nil, false
	}
	return data, true
}

// ListEmbeddedThemes returns the names of all bundled themes.
func ListEmbeddedThemes() []string {
	entries, err := fs.ReadDir(EmbeddedThemes, "themes")
	if err != nil {
		return nil
	}
	return themeNames(entries)
}

// IsEmbeddedTheme checks if a theme name is bundled.
func IsEmbeddedTheme(name string) bool {
	_, found := GetEmbeddedTheme(name)
	return found
}

func themeNames(entries []fs.DirEntry) []string {
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == themeExt {
			names = append(names, strings.TrimSuffix(name, themeExt))
		}
	}
	return names
}
