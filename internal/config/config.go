// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/jmylchreest/snackbar/internal/snackbar"
	"github.com/jmylchreest/snackbar/internal/theme"
)

// Default configuration values.
const (
	DefaultAnimationDuration = 400 * time.Millisecond
	DefaultVisibleDuration   = 2 * time.Second
	DefaultFrameInterval     = 16 * time.Millisecond
	DefaultHeight            = 3
	DefaultSpacing           = 3
	DefaultElementMargin     = 1
	DefaultBackground        = "#1C1C1C"
	DefaultMessageColor      = "#FFFFFF"
	DefaultActionColor       = "#FF0000"
	DefaultBusName           = "org.freedesktop.Notifications"
	DefaultListenAddr        = "127.0.0.1:7878"
	DefaultVolume            = 80
	DefaultNoticeInterval    = 5 * time.Second
)

// Config represents the snackbar configuration.
type Config struct {
	Snackbar  SnackbarConfig  `toml:"snackbar"`
	Layout    LayoutConfig    `toml:"layout"`
	Style     StyleConfig     `toml:"style"`
	Keys      KeysConfig      `toml:"keys"`
	Audio     AudioConfig     `toml:"audio"`
	DBus      DBusConfig      `toml:"dbus"`
	HTTP      HTTPConfig      `toml:"http"`
	Journal   JournalConfig   `toml:"journal"`
	Clipboard ClipboardConfig `toml:"clipboard"`
	Notices   NoticesConfig   `toml:"notices"`
}

// SnackbarConfig holds the timings of the state machine.
type SnackbarConfig struct {
	AnimationDuration Duration `toml:"animation_duration"` // Entry and exit animation
	VisibleDuration   Duration `toml:"visible_duration"`   // "0" keeps the bar until dismissed
	FrameInterval     Duration `toml:"frame_interval"`     // Animation step interval
}

// LayoutConfig holds terminal cell based layout settings.
type LayoutConfig struct {
	SideMargin        int  `toml:"side_margin"`         // Columns between bar and screen edge
	BottomMargin      int  `toml:"bottom_margin"`       // Rows between bar and screen bottom
	DefaultHeight     int  `toml:"default_height"`      // Minimum bar height in rows
	AllowHeightChange bool `toml:"allow_height_change"` // Grow to fit wrapped messages
	Spacing           int  `toml:"spacing"`             // Columns between elements
	ElementMargin     int  `toml:"element_margin"`      // Rows above and below the text
}

// StyleConfig holds colours (lipgloss colour strings) and font weight.
// Keys set in the file override the palette of Theme.
type StyleConfig struct {
	Theme        string `toml:"theme"` // Bundled or ~/.config/snackbar/themes/<name>.toml
	Background   string `toml:"background"`
	MessageColor string `toml:"message_color"`
	ActionColor  string `toml:"action_color"`
	MessageBold  bool   `toml:"message_bold"`
	ActionBold   bool   `toml:"action_bold"`
}

// KeysConfig holds the key bindings routed to the snackbar.
type KeysConfig struct {
	Action  []string `toml:"action"`  // Activates the action control
	Dismiss []string `toml:"dismiss"` // Dismisses the bar
}

// AudioConfig holds the sound cue played when a snackbar appears.
type AudioConfig struct {
	Enabled bool   `toml:"enabled"`
	Volume  int    `toml:"volume"` // 0-100
	Sound   string `toml:"sound"`  // wav, ogg or mp3; ~ is expanded
}

// DBusConfig holds the D-Bus control interface settings (daemon only).
type DBusConfig struct {
	Enabled bool   `toml:"enabled"`
	BusName string `toml:"bus_name"`
}

// HTTPConfig holds the HTTP control interface settings (daemon only).
type HTTPConfig struct {
	Enabled bool   `toml:"enabled"`
	Listen  string `toml:"listen"`
}

// JournalConfig holds lifecycle journal settings.
type JournalConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"` // Empty = default data path
}

// ClipboardConfig holds clipboard settings for the feed view.
type ClipboardConfig struct {
	Command string `toml:"command"` // Empty = auto-detect
}

// NoticesConfig controls the messages snackbard shows about itself, such
// as a reloaded config file (daemon only).
type NoticesConfig struct {
	Enabled  bool     `toml:"enabled"`
	Interval Duration `toml:"interval"` // Minimum gap between identical notices
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Snackbar: SnackbarConfig{
			AnimationDuration: Duration(DefaultAnimationDuration),
			VisibleDuration:   Duration(DefaultVisibleDuration),
			FrameInterval:     Duration(DefaultFrameInterval),
		},
		Layout: LayoutConfig{
			SideMargin:        0,
			BottomMargin:      0,
			DefaultHeight:     DefaultHeight,
			AllowHeightChange: true,
			Spacing:           DefaultSpacing,
			ElementMargin:     DefaultElementMargin,
		},
		Style: StyleConfig{
			Background:   DefaultBackground,
			MessageColor: DefaultMessageColor,
			ActionColor:  DefaultActionColor,
			MessageBold:  false,
			ActionBold:   true,
		},
		Keys: KeysConfig{
			Action:  []string{"u", "ctrl+z"},
			Dismiss: []string{"x"},
		},
		Audio: AudioConfig{
			Enabled: false,
			Volume:  DefaultVolume,
		},
		DBus: DBusConfig{
			Enabled: true,
			BusName: DefaultBusName,
		},
		HTTP: HTTPConfig{
			Enabled: false,
			Listen:  DefaultListenAddr,
		},
		Journal: JournalConfig{
			Enabled: true,
		},
		Notices: NoticesConfig{
			Enabled:  true,
			Interval: Duration(DefaultNoticeInterval),
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "snackbar", "snackbar.toml")
}

// ThemesDir returns the user themes directory next to the config file.
func ThemesDir() string {
	path := ConfigPath()
	if path == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(path), "themes")
}

// ApplyPalette replaces the colours and weights with p.
func (s *StyleConfig) ApplyPalette(p theme.Palette) {
	s.Background = p.Background
	s.MessageColor = p.MessageColor
	s.ActionColor = p.ActionColor
	s.MessageBold = p.MessageBold
	s.ActionBold = p.ActionBold
}

// DataPath returns the path to the data directory.
// Uses XDG_DATA_HOME if set, otherwise ~/.local/share.
func DataPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "snackbar")
}

// JournalPath returns the journal path, honouring Journal.Path.
func (c *Config) JournalPath() string {
	if c.Journal.Path != "" {
		return expandPath(c.Journal.Path)
	}
	return filepath.Join(DataPath(), "journal.jsonl")
}

// Timing returns the state machine timings.
func (c *Config) Timing() snackbar.Timing {
	return snackbar.Timing{
		Animation: c.Snackbar.AnimationDuration.Duration(),
		Visible:   c.Snackbar.VisibleDuration.Duration(),
	}
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Decode again over the theme palette so explicit style keys win
	if cfg.Style.Theme != "" {
		t, err := theme.Load(cfg.Style.Theme, ThemesDir())
		if err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = DefaultConfig()
		cfg.Style.ApplyPalette(t.Palette)
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path atomically.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Snackbar.AnimationDuration < 0 {
		return fmt.Errorf("animation_duration must not be negative, got %s", c.Snackbar.AnimationDuration.Duration())
	}
	if c.Snackbar.VisibleDuration < 0 {
		return fmt.Errorf("visible_duration must not be negative, got %s", c.Snackbar.VisibleDuration.Duration())
	}
	if c.Snackbar.FrameInterval <= 0 {
		return fmt.Errorf("frame_interval must be positive, got %s", c.Snackbar.FrameInterval.Duration())
	}

	if c.Layout.DefaultHeight < 1 || c.Layout.DefaultHeight > 20 {
		return fmt.Errorf("default_height must be between 1 and 20, got %d", c.Layout.DefaultHeight)
	}
	for name, v := range map[string]int{
		"side_margin":    c.Layout.SideMargin,
		"bottom_margin":  c.Layout.BottomMargin,
		"spacing":        c.Layout.Spacing,
		"element_margin": c.Layout.ElementMargin,
	} {
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %d", name, v)
		}
	}

	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("volume must be between 0 and 100, got %d", c.Audio.Volume)
	}
	if c.Audio.Enabled && c.Audio.Sound == "" {
		return errors.New("audio is enabled but no sound file is set")
	}

	if c.DBus.Enabled && c.DBus.BusName == "" {
		return errors.New("dbus is enabled but bus_name is empty")
	}
	if c.HTTP.Enabled && c.HTTP.Listen == "" {
		return errors.New("http is enabled but listen is empty")
	}
	if c.Notices.Interval < 0 {
		return fmt.Errorf("notices interval must not be negative, got %s", c.Notices.Interval.Duration())
	}

	return nil
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// EnsureDataDir creates the data directory if it doesn't exist.
func EnsureDataDir() error {
	path := DataPath()
	if path == "" {
		return errors.New("unable to determine data directory")
	}
	return os.MkdirAll(path, 0755)
}
