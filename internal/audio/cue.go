package audio

import (
	"log/slog"
	"sync"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Cue plays the configured sound whenever a snackbar appears. It is a
// snackbar.Delegate; the other callbacks are no-ops.
type Cue struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	player  *Player
	enabled bool
}

// NewCue creates a Cue playing through player, configured from cfg.
func NewCue(player *Player, cfg config.AudioConfig, logger *slog.Logger) *Cue {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Cue{logger: logger, player: player}
	c.Configure(cfg)
	return c
}

// Configure applies a new audio configuration. It is called again on
// config reload, so an edited sound file is picked up there.
func (c *Cue) Configure(cfg config.AudioConfig) {
	c.player.SetVolume(float64(cfg.Volume) / 100.0)

	enabled := cfg.Enabled && cfg.Sound != ""
	if enabled {
		if err := c.player.Load(cfg.Sound); err != nil {
			c.logger.Warn("failed to load sound", "path", cfg.Sound, "error", err)
			enabled = false
		} else {
			c.logger.Debug("sound cue loaded", "path", c.player.Path())
		}
	} else {
		_ = c.player.Load("")
	}

	c.mu.Lock()
	c.enabled = enabled
	c.mu.Unlock()
}

// Enabled reports whether a sound will play.
func (c *Cue) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// Appeared implements snackbar.Delegate.
func (c *Cue) Appeared(req snackbar.Request) {
	if !c.Enabled() {
		return
	}
	if err := c.player.Play(); err != nil {
		c.logger.Debug("sound cue failed", "request", req.String(), "error", err)
	}
}

// Disappeared implements snackbar.Delegate.
func (c *Cue) Disappeared(snackbar.Request, snackbar.Reason) {}

// ActionTriggered implements snackbar.Delegate.
func (c *Cue) ActionTriggered(snackbar.Request) {}
