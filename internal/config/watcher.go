package config

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the config file and reloads it on change.
// Invalid files are reported and the previous config stays in effect.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	logger  *slog.Logger

	mu       sync.Mutex
	current  *Config
	onReload []func(cfg *Config)
	onError  []func(err error)
	running  bool
	done     chan struct{}
	finished chan struct{}
}

// NewWatcher creates a Watcher for path, starting from current.
func NewWatcher(path string, current *Config, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = ConfigPath()
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		watcher:  w,
		path:     path,
		logger:   logger,
		current:  current,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}, nil
}

// OnReload adds a callback invoked with each successfully reloaded config.
// Callbacks run on the watcher goroutine in registration order.
func (w *Watcher) OnReload(fn func(cfg *Config)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onReload = append(w.onReload, fn)
}

// OnError adds a callback invoked when a changed file fails to load.
func (w *Watcher) OnError(fn func(err error)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onError = append(w.onError, fn)
}

// Current returns the last valid config.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins watching the file for changes.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the directory containing the file (editors replace files on save)
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return err
	}

	go w.watch()
	w.logger.Debug("config watcher started", "path", w.path)
	return nil
}

// watch is the main watch loop.
func (w *Watcher) watch() {
	defer close(w.finished)
	filename := filepath.Base(w.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// reload loads the file and notifies the callbacks.
func (w *Watcher) reload() {
	cfg, err := LoadConfig(w.path)

	w.mu.Lock()
	onReload := w.onReload
	onError := w.onError
	if err == nil {
		w.current = cfg
	}
	w.mu.Unlock()

	if err != nil {
		w.logger.Warn("config file changed but failed to load", "path", w.path, "error", err)
		for _, fn := range onError {
			fn(err)
		}
		return
	}

	w.logger.Info("config reloaded", "path", w.path)
	for _, fn := range onReload {
		fn(cfg)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	w.mu.Unlock()

	<-w.finished
	return w.watcher.Close()
}
