// Package watcher reports changes to the settings file while the TUI runs.
package watcher

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/watchfire-io/launchpad/internal/config"
	"github.com/watchfire-io/launchpad/internal/logging"
)

const debounceDelay = 100 * time.Millisecond

// EventType represents the type of file system event.
type EventType int

// Event types for file system changes.
const (
	EventSettingsChanged EventType = iota
	EventTranscriptWritten
)

// Event represents a file system change event.
type Event struct {
	Type EventType
	Path string
}

// Watcher watches the global directory for settings and transcript changes.
type Watcher struct {
	dir        string
	fsWatcher  *fsnotify.Watcher
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	logger     *slog.Logger
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a watcher for dir, normally config.GlobalDir().
func New(dir string, logger *slog.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		dir:        dir,
		fsWatcher:  fsWatcher,
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
		logger:     logging.WithComponent(logger, "watcher"),
		debounce:   make(map[string]*time.Timer),
	}, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start begins watching. The logs directory is watched when it exists.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	logsDir := filepath.Join(w.dir, config.LogsDirName)
	if err := w.fsWatcher.Add(logsDir); err != nil {
		w.logger.Debug("not watching logs dir", "path", logsDir, "error", err)
	}

	go w.processEvents()
	return nil
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Settings are saved with write-to-temp then rename, which lands as
	// Create on the target.
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	ev, ok := w.classify(event.Name)
	if !ok {
		return
	}

	w.debounceEvent(event.Name, func() {
		select {
		case w.eventsChan <- ev:
		case <-w.done:
		}
	})
}

func (w *Watcher) classify(path string) (Event, bool) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)

	switch {
	case dir == filepath.Clean(w.dir) && name == config.SettingsFileName:
		return Event{Type: EventSettingsChanged, Path: path}, true
	case dir == filepath.Join(w.dir, config.LogsDirName) && filepath.Ext(name) == ".log":
		return Event{Type: EventTranscriptWritten, Path: path}, true
	default:
		return Event{}, false
	}
}

func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}

	w.debounce[path] = time.AfterFunc(debounceDelay, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}
