package watcher

import (
	"context"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceInterval = 500 * time.Millisecond

// ChangeCallback is called once a burst of changes to the watched file
// has settled.
type ChangeCallback func(path string)

// Watcher monitors a single config file for changes.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file on save are still observed.
type Watcher struct {
	path      string
	fsWatcher *fsnotify.Watcher
	callback  ChangeCallback
	debounce  time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// New creates a watcher for path. Call Run to start delivering changes.
func New(path string, callback ChangeCallback) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsW, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsW.Add(filepath.Dir(abs)); err != nil {
		fsW.Close()
		return nil, err
	}

	return &Watcher{
		path:      abs,
		fsWatcher: fsW,
		callback:  callback,
		debounce:  defaultDebounceInterval,
	}, nil
}

// Run processes fsnotify events until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.schedule()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("config watcher error for %s: %v", w.path, err)
		}
	}
}

// schedule resets the debounce timer.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		if w.callback != nil {
			w.callback(w.path)
		}
	})
}

func (w *Watcher) stop() {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	w.fsWatcher.Close()
}
