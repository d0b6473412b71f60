package theme

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ErrNotFound is returned when no user or bundled theme has the name.
var ErrNotFound = errors.New("theme not found")

// Palette holds the colours (lipgloss colour strings) and font weights of
// the bar.
type Palette struct {
	Background   string `toml:"background"`
	MessageColor string `toml:"message_color"`
	ActionColor  string `toml:"action_color"`
	MessageBold  bool   `toml:"message_bold"`
	ActionBold   bool   `toml:"action_bold"`
}

// Theme is a resolved theme.
type Theme struct {
	Name      string
	Path      string // Empty for bundled themes
	Palette   Palette
	IsBundled bool
}

// header holds the keys that are not part of the palette.
type header struct {
	Inherits string `toml:"inherits"`
}

// Load resolves the theme name. A theme in dir overrides the bundled theme
// of the same name. Keys missing from a theme come from the theme named by
// its inherits key, and a theme may inherit the bundled theme it overrides.
func Load(name, dir string) (*Theme, error) {
	if name == "" {
		name = DefaultThemeName
	}
	return load(name, dir, make(map[string]bool))
}

func load(name, dir string, seen map[string]bool) (*Theme, error) {
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return nil, fmt.Errorf("invalid theme name %q", name)
	}

	t := &Theme{Name: name}
	var data []byte

	userPath := ""
	if dir != "" {
		userPath = filepath.Join(dir, name+themeExt)
	}
	bundledKey := "bundled:" + name

	userExists := userPath != "" && fileExists(userPath)
	bundled, hasBundled := GetEmbeddedTheme(name)

	switch {
	case userExists && !seen[userPath]:
		seen[userPath] = true
		b, err := os.ReadFile(userPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read theme %s: %w", userPath, err)
		}
		data, t.Path = b, userPath

	case hasBundled && !seen[bundledKey]:
		seen[bundledKey] = true
		data, t.IsBundled = bundled, true

	case userExists || hasBundled:
		return nil, fmt.Errorf("theme %q inherits itself", name)

	default:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	var h header
	if err := toml.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", name, err)
	}
	if h.Inherits != "" {
		base, err := load(h.Inherits, dir, seen)
		if err != nil {
			return nil, fmt.Errorf("theme %s: %w", name, err)
		}
		t.Palette = base.Palette
	}

	// Keys present in the file replace the inherited ones
	if err := toml.Unmarshal(data, &t.Palette); err != nil {
		return nil, fmt.Errorf("failed to parse theme %s: %w", name, err)
	}
	return t, nil
}

// ThemeInfo provides basic theme information for listing.
type ThemeInfo struct {
	Name      string
	Path      string
	IsDefault bool
	IsBundled bool // False when a user theme overrides the bundled one
}

// ListAvailableThemes lists bundled themes followed by user themes from dir.
// A user theme replaces the bundled entry of the same name.
func ListAvailableThemes(dir string) ([]ThemeInfo, error) {
	var themes []ThemeInfo
	index := make(map[string]int)

	for _, name := range ListEmbeddedThemes() {
		index[name] = len(themes)
		themes = append(themes, ThemeInfo{
			Name:      name,
			IsDefault: name == DefaultThemeName,
			IsBundled: true,
		})
	}

	if dir == "" {
		return themes, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return themes, nil
		}
		return themes, err
	}

	for _, name := range themeNames(entries) {
		info := ThemeInfo{
			Name:      name,
			Path:      filepath.Join(dir, name+themeExt),
			IsDefault: name == DefaultThemeName,
		}
		if i, ok := index[name]; ok {
			themes[i] = info
			continue
		}
		themes = append(themes, info)
	}
	return themes, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
