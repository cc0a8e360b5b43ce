package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 500 * time.Millisecond

// Watcher keeps a Registry in sync with its file on disk so edits to
// models.json show up in the model picker without a restart. A reload that
// fails validation keeps the previous snapshot.
type Watcher struct {
	path     string
	onReload func(*Registry, error)
	current  *Registry
	mu       sync.RWMutex
	reloads  atomic.Uint32
	closed   chan struct{}
}

// NewWatcher loads the registry and starts watching its file. onReload is
// invoked after every reload attempt, successful or not.
func NewWatcher(path string, onReload func(*Registry, error)) (*Watcher, error) {
	reg, err := LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial model config: %w", err)
	}

	w := &Watcher{
		path:     path,
		onReload: onReload,
		current:  reg,
		closed:   make(chan struct{}),
	}

	go w.watch()

	return w, nil
}

// NewStaticWatcher wraps a fixed registry in the Watcher API with no file
// behind it. Used when no usable config file exists.
func NewStaticWatcher(reg *Registry) *Watcher {
	return &Watcher{
		current: reg,
		closed:  make(chan struct{}),
	}
}

// SetOnReload replaces the reload callback, for consumers constructed after
// the watcher.
func (w *Watcher) SetOnReload(fn func(*Registry, error)) {
	w.mu.Lock()
	w.onReload = fn
	w.mu.Unlock()
}

// watch watches for file changes.
func (w *Watcher) watch() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Error("Failed to create file watcher", "error", err)
		return
	}
	defer watcher.Close()

	// Watch the directory, not the file: editors save with a rename-replace,
	// which silently drops a watch held on the file itself.
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		slog.Error("Failed to watch model config", "path", w.path, "error", err)
		return
	}

	target := filepath.Clean(w.path)
	var timer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(reloadDebounce, func() {
					w.reload()
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Watcher error", "error", err)

		case <-w.closed:
			return
		}
	}
}

// reload re-reads and revalidates the file.
func (w *Watcher) reload() {
	count := w.reloads.Add(1)
	slog.Info("Reloading model config", "path", w.path, "count", count)

	reg, err := LoadRegistry(w.path)
	if err != nil {
		slog.Error("Failed to reload model config", "error", err)
		w.mu.RLock()
		fn := w.onReload
		w.mu.RUnlock()
		if fn != nil {
			fn(nil, err)
		}
		return
	}

	w.mu.Lock()
	w.current = reg
	fn := w.onReload
	w.mu.Unlock()

	if fn != nil {
		fn(reg, nil)
	}
}

// Snapshot returns the current registry (thread-safe).
func (w *Watcher) Snapshot() *Registry {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// ReloadCount returns the number of reload attempts.
func (w *Watcher) ReloadCount() uint32 {
	return w.reloads.Load()
}

// Close stops the watcher goroutine.
func (w *Watcher) Close() {
	select {
	case <-w.closed:
	default:
		close(w.closed)
	}
}
