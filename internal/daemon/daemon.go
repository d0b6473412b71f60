package daemon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jmylchreest/snackbar/internal/adapter/input"
	"github.com/jmylchreest/snackbar/internal/audio"
	"github.com/jmylchreest/snackbar/internal/config"
	"github.com/jmylchreest/snackbar/internal/dbus"
	"github.com/jmylchreest/snackbar/internal/display"
	"github.com/jmylchreest/snackbar/internal/httpapi"
	"github.com/jmylchreest/snackbar/internal/journal"
	"github.com/jmylchreest/snackbar/internal/metrics"
	"github.com/jmylchreest/snackbar/internal/snackbar"
	"github.com/jmylchreest/snackbar/internal/tui"
)

// Source is the journal source name of entries written by the daemon.
const Source = "snackbard"

// Options configures a Daemon.
type Options struct {
	Config     *config.Config
	ConfigPath string // Watched for hot reload, empty disables watching
	Headless   bool   // Run the bar on a loop with a logging surface instead of the feed TUI
	Stdin      io.Reader
	Version    string
	Logger     *slog.Logger
	TeaOptions []tea.ProgramOption
}

// Daemon owns one snackbar and the interfaces driving it.
type Daemon struct {
	opts   Options
	cfg    *config.Config
	logger *slog.Logger

	journal   *journal.Journal
	recorder  *journal.Recorder
	collector *metrics.Collector
	player    *audio.Player
	cue       *audio.Cue
	hub       *httpapi.Hub
	dbus      *dbus.Server
	http      *httpapi.Server
	watcher   *config.Watcher
	notifier  *Notifier

	presenter snackbar.Presenter
	loop      *snackbar.Loop
	program   *tea.Program
	remote    *tui.Remote
	cancel    context.CancelFunc
	failure   chan error
}

// New creates a Daemon. Nothing is started until Start or Run.
func New(opts Options) *Daemon {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Daemon{opts: opts, cfg: cfg, logger: logger, failure: make(chan error, 1)}
}

// Run starts the daemon and blocks until ctx is cancelled or the feed is
// quit.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		d.Stop()
		return err
	}
	defer d.Stop()
	return d.wait(ctx)
}

// Start builds the bar and starts every enabled interface.
func (d *Daemon) Start(ctx context.Context) error {
	ctx, d.cancel = context.WithCancel(ctx)
	cfg := d.cfg

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.JournalPath())
		if err != nil {
			d.logger.Warn("journal disabled", "error", err)
		} else {
			d.journal = j
			d.recorder = journal.NewRecorder(j, Source, d.logger)
			d.logger.Info("journal opened", "path", j.Path())
		}
	}

	d.collector = metrics.NewCollector()
	d.player = audio.NewPlayer(d.logger)
	d.cue = audio.NewCue(d.player, cfg.Audio, d.logger)
	if cfg.HTTP.Enabled {
		d.hub = httpapi.NewHub(d.logger)
	}
	if cfg.DBus.Enabled {
		d.dbus = dbus.NewServer(cfg.DBus.BusName, d.logger)
		d.dbus.SetServerInfo(dbus.ServerInfo{
			Name:        Source,
			Vendor:      "snackbar",
			Version:     d.opts.Version,
			SpecVersion: "1.2",
		})
	}

	if d.opts.ConfigPath != "" {
		w, err := config.NewWatcher(d.opts.ConfigPath, cfg, d.logger)
		if err != nil {
			d.logger.Warn("config hot reload disabled", "error", err)
		} else {
			d.watcher = w
		}
	}

	if d.opts.Headless {
		d.startLoop(ctx)
	} else {
		d.startProgram(ctx)
	}
	d.notifier = NewNotifier(d.presenter, d.logger)
	d.notifier.Configure(cfg.Notices)

	if d.watcher != nil {
		d.watcher.OnReload(d.applyConfig)
		d.watcher.OnError(d.notifier.NotifyConfigError)
		if err := d.watcher.Start(); err != nil {
			d.logger.Warn("failed to start config watcher", "error", err)
		}
	}

	if d.dbus != nil {
		p := d.withSource(SourceDBus)
		d.dbus.SetNotifyHandler(p.Show)
		d.dbus.SetCloseHandler(func(id uint32) error {
			return p.DismissID(int(id))
		})
		if err := d.dbus.Start(); err != nil {
			return fmt.Errorf("start D-Bus server: %w", err)
		}
	}

	if cfg.HTTP.Enabled {
		router := httpapi.NewRouter(httpapi.Options{
			Presenter: d.withSource(SourceHTTP),
			Metrics:   d.collector.Handler(),
			Events:    d.hub,
			Logger:    d.logger,
		})
		d.http = httpapi.NewServer(cfg.HTTP.Listen, router, d.logger)
		if err := d.http.Start(); err != nil {
			return err
		}
	}

	d.logger.Info("snackbard ready", "version", d.opts.Version, "headless", d.opts.Headless)
	return nil
}

// delegates returns the bar observers. Components owned by the Daemon are
// held weakly by the bar.
func (d *Daemon) delegates() []snackbar.Delegate {
	ds := []snackbar.Delegate{
		snackbar.WeakDelegate(d.collector),
		snackbar.WeakDelegate(d.cue),
	}
	if d.recorder != nil {
		ds = append(ds, snackbar.WeakDelegate(d.recorder))
	}
	if d.hub != nil {
		ds = append(ds, snackbar.WeakDelegate(d.hub))
	}
	if d.dbus != nil {
		ds = append(ds, d.dbus.Delegate())
	}
	return ds
}

func (d *Daemon) startLoop(ctx context.Context) {
	d.loop = snackbar.NewLoop(0)
	bar := snackbar.New(
		snackbar.StaticHost(newLogSurface(d.logger)),
		d.loop.Animator(d.cfg.Snackbar.FrameInterval.Duration()),
		d.loop.Scheduler(),
		snackbar.WithDelegate(snackbar.Delegates(d.delegates()...)),
		snackbar.WithTiming(d.cfg.Timing()),
		snackbar.WithLogger(d.logger),
	)
	d.presenter = snackbar.Serialize(d.loop, bar)
	go d.loop.Run(ctx)
}

func (d *Daemon) startProgram(ctx context.Context) {
	teaOpts := append([]tea.ProgramOption{tea.WithContext(ctx)}, d.opts.TeaOptions...)
	d.program, d.remote = tui.NewFeedProgram(tui.RunOptions{
		Config:    d.cfg,
		Delegates: d.delegates(),
		Logger:    d.logger,
		Watcher:   d.watcher,
	}, teaOpts...)
	d.presenter = d.remote
}

// withSource returns the presenter as seen by one request source.
func (d *Daemon) withSource(source string) snackbar.Presenter {
	return sourcePresenter{Presenter: d.presenter, source: source, collector: d.collector}
}

// applyConfig takes over a reloaded config. The feed TUI applies it to its
// own bar through the watcher.
func (d *Daemon) applyConfig(cfg *config.Config) {
	if d.opts.Headless {
		if err := d.presenter.SetTiming(cfg.Timing()); err != nil {
			d.logger.Warn("failed to apply timing", "error", err)
		}
	}
	d.cue.Configure(cfg.Audio)
	d.notifier.Configure(cfg.Notices)
	d.notifier.NotifyConfigReloaded()
}

func (d *Daemon) wait(ctx context.Context) error {
	go d.watchHTTP()

	if !d.opts.Headless {
		_, err := d.program.Run()
		d.remote.Close()
		if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return &display.DisplayError{Message: "feed terminated", Cause: err}
		}
		return d.failed()
	}

	if d.opts.Stdin != nil {
		go d.readStdin(ctx)
	}
	<-ctx.Done()
	return d.failed()
}

// watchHTTP stops the daemon when the HTTP server fails.
func (d *Daemon) watchHTTP() {
	if d.http == nil {
		return
	}
	if err, ok := <-d.http.Err(); ok && err != nil {
		d.failure <- fmt.Errorf("http server: %w", err)
		d.cancel()
	}
}

func (d *Daemon) failed() error {
	select {
	case err := <-d.failure:
		return err
	default:
		return nil
	}
}

func (d *Daemon) readStdin(ctx context.Context) {
	p := d.withSource(SourceStdin)
	adapter := input.NewStdinAdapterWithReader(d.opts.Stdin)
	err := adapter.Each(ctx, p.Show, func(line int, err error) {
		d.logger.Warn("invalid request", "source", adapter.Name(), "line", line, "error", err)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		d.logger.Warn("input closed", "source", adapter.Name(), "error", err)
		return
	}
	d.logger.Debug("input closed", "source", adapter.Name())
}

// Presenter returns the presenter driving the bar, valid after Start.
func (d *Daemon) Presenter() snackbar.Presenter {
	return d.presenter
}

// HTTPAddr returns the bound HTTP address, nil when HTTP is disabled.
func (d *Daemon) HTTPAddr() net.Addr {
	if d.http == nil {
		return nil
	}
	return d.http.Addr()
}

// Stop shuts every component down, inputs first.
func (d *Daemon) Stop() {
	if d.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := d.http.Shutdown(ctx); err != nil {
			d.logger.Warn("error stopping HTTP server", "error", err)
		}
		cancel()
	}
	if d.hub != nil {
		d.hub.Close()
	}
	if d.dbus != nil {
		_ = d.dbus.Stop()
	}
	if d.watcher != nil {
		if err := d.watcher.Stop(); err != nil {
			d.logger.Warn("error stopping config watcher", "error", err)
		}
	}
	if d.remote != nil {
		d.remote.Close()
	}
	if d.loop != nil {
		d.loop.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}
	if d.player != nil {
		d.player.Close()
	}
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			d.logger.Warn("error closing journal", "error", err)
		}
	}
	d.logger.Info("snackbard stopped")
}
