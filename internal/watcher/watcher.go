// Package watcher provides file system watching with debouncing for
// store roots. The union store uses it to flush its decode cache when
// artefact files change outside the process, e.g. a git pull run in
// another terminal while an interactive session holds the store.
package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors store roots for artefact file changes and sends
// debounced notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	roots     []string
	debounce  time.Duration
	onChange  chan struct{}
	done      chan struct{}
}

// Config holds watcher configuration options.
type Config struct {
	// Roots are the store root directories to watch. Maintainer
	// subdirectories present at start are watched too; fsnotify is not
	// recursive, so directories created later are picked up on restart.
	Roots       []string
	DebounceDur time.Duration
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(roots ...string) Config {
	return Config{
		Roots:       roots,
		DebounceDur: 1 * time.Second,
	}
}

// New creates a new store watcher.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}

	return &Watcher{
		fsWatcher: fsw,
		roots:     cfg.Roots,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the configured roots.
// Returns a channel that receives a signal when artefact files change.
func (w *Watcher) Start() (<-chan struct{}, error) {
	watched := 0
	for _, root := range w.roots {
		if err := w.addTree(root); err != nil {
			return nil, err
		}
		watched++
	}
	if watched == 0 {
		return nil, fmt.Errorf("no roots to watch")
	}

	go w.loop()

	return w.onChange, nil
}

// addTree watches root and its immediate subdirectories (the
// per-maintainer directories). A root that does not exist yet is
// skipped; it will be covered after the next restart.
func (w *Watcher) addTree(root string) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil
	}
	if err := w.fsWatcher.Add(root); err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return fmt.Errorf("listing %s: %w", root, err)
	}
	for _, e := range entries {
		if !e.IsDir() || e.Name() == ".git" {
			continue
		}
		if err := w.fsWatcher.Add(filepath.Join(root, e.Name())); err != nil {
			return fmt.Errorf("watching %s: %w", filepath.Join(root, e.Name()), err)
		}
	}
	return nil
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	close(w.done)
	return w.fsWatcher.Close()
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = true
			} else {
				if !timer.Stop() {
					// Drain the timer channel if it already fired
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
				pending = true
			}

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			// Errors are intentionally not logged here; callers can wrap
			// the watcher if they need error visibility.

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a notification.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}

	// Only packed artefact files matter; git bookkeeping and temp files
	// written before rename do not.
	base := filepath.Base(event.Name)
	return filepath.Ext(base) == ".yaml" && base[0] != '.'
}
