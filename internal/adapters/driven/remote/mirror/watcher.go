package mirror

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/HMaxF/jesoes.com/internal/logger"
)

// defaultDebounce collapses the burst of events a single copy produces.
const defaultDebounce = 500 * time.Millisecond

// Watcher reports changes to a mirror's catalog.json.
type Watcher struct {
	dir      string
	debounce time.Duration
}

// NewWatcher returns a Watcher for dir. A non-positive debounce uses
// the default.
func NewWatcher(dir string, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{dir: dir, debounce: debounce}
}

// Watch calls onChange after catalog.json is created, written or
// replaced, at most once per debounce window. It blocks until ctx is
// done and returns nil, or returns the watcher's error.
func (w *Watcher) Watch(ctx context.Context, onChange func()) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory rather than the file so atomic replacements
	// (write to temp, rename over) are still seen.
	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			logger.Debug("mirror change: %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", w.dir, err)
		}
	}
}

// relevant reports whether event may have changed the catalog.
func relevant(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != CatalogFile {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename)
}
