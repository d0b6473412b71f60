package journal

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Follower watches a journal file and reports entries appended to it.
type Follower struct {
	watcher *fsnotify.Watcher
	path    string
	offset  int64
	onEntry func(Entry)
	logger  *slog.Logger

	done    chan struct{}
	mu      sync.Mutex
	running bool
}

// NewFollower creates a Follower for path calling onEntry for every new
// entry. Entries present before Start are not reported.
func NewFollower(path string, onEntry func(Entry), logger *slog.Logger) (*Follower, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Follower{
		watcher: watcher,
		path:    path,
		onEntry: onEntry,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Start begins following the file.
func (f *Follower) Start() error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = true
	f.mu.Unlock()

	if info, err := os.Stat(f.path); err == nil {
		f.offset = info.Size()
	}

	// Watch the directory containing the file (more reliable for writes)
	if err := f.watcher.Add(filepath.Dir(f.path)); err != nil {
		return err
	}

	go f.watch()
	return nil
}

func (f *Follower) watch() {
	filename := filepath.Base(f.path)

	for {
		select {
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				f.readNew()
			}

		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("journal follower error", "error", err)

		case <-f.done:
			return
		}
	}
}

// readNew reports the entries written since the last read.
func (f *Follower) readNew() {
	file, err := os.Open(f.path)
	if err != nil {
		f.logger.Debug("journal not readable", "path", f.path, "error", err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return
	}
	// Truncated or replaced (cleared): start over
	if info.Size() < f.offset {
		f.offset = 0
	}
	if info.Size() == f.offset {
		return
	}

	if _, err := file.Seek(f.offset, io.SeekStart); err != nil {
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, info.Size()-f.offset))
	if err != nil {
		f.logger.Warn("failed to read journal", "path", f.path, "error", err)
		return
	}

	// Keep a trailing partial line for the next event
	end := len(data)
	for end > 0 && data[end-1] != '\n' {
		end--
	}
	if end == 0 {
		return
	}
	f.offset += int64(end)

	entries, err := Decode(bytes.NewReader(data[:end]))
	if err != nil {
		f.logger.Warn("failed to decode journal", "path", f.path, "error", err)
	}
	for _, e := range entries {
		f.onEntry(e)
	}
}

// Stop stops following.
func (f *Follower) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running {
		return f.watcher.Close()
	}
	f.running = false
	close(f.done)
	return f.watcher.Close()
}
