package daemon

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/snackbar"
)

// Notifier shows messages about snackbard itself on the snackbar. It rate
// limits by key to prevent floods, e.g. from an editor saving the config
// file several times.
type Notifier struct {
	mu     sync.Mutex
	logger *slog.Logger

	presenter snackbar.Presenter

	// Rate limiting
	lastNotifyTime map[string]time.Time // key -> last notification time
	minInterval    time.Duration        // minimum time between same notifications
	now            func() time.Time

	enabled bool
}

// NewNotifier creates a Notifier showing on p.
func NewNotifier(p snackbar.Presenter, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:         logger,
		presenter:      p,
		lastNotifyTime: make(map[string]time.Time),
		minInterval:    5 * time.Second,
		now:            time.Now,
		enabled:        true,
	}
}

// Configure applies the notices section of cfg.
func (n *Notifier) Configure(cfg config.NoticesConfig) {
	n.SetEnabled(cfg.Enabled)
	n.SetMinInterval(cfg.Interval.Duration())
}

// SetEnabled enables or disables internal notifications.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// SetMinInterval sets the minimum interval between duplicate notifications.
func (n *Notifier) SetMinInterval(interval time.Duration) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.minInterval = interval
}

// Notify shows message unless key was shown within the minimum interval.
func (n *Notifier) Notify(key, message string) {
	n.mu.Lock()
	if !n.enabled {
		n.mu.Unlock()
		return
	}
	now := n.now()
	if last, ok := n.lastNotifyTime[key]; ok && now.Sub(last) < n.minInterval {
		n.mu.Unlock()
		n.logger.Debug("internal notification rate-limited", "key", key)
		return
	}
	n.lastNotifyTime[key] = now
	n.mu.Unlock()

	if err := n.presenter.Show(snackbar.NewRequest(message)); err != nil {
		n.logger.Debug("internal notification dropped", "key", key, "error", err)
	}
}

// NotifyConfigReloaded reports a successful config reload.
func (n *Notifier) NotifyConfigReloaded() {
	n.Notify("config-reload", "Configuration reloaded")
}

// NotifyConfigError reports a config file that failed to load.
func (n *Notifier) NotifyConfigError(err error) {
	n.Notify("config-error", "Configuration error: "+err.Error())
}
