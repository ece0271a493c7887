package catalog

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher signals when the custom-songs file changes on disk, so the
// player can reload the catalog without restarting.
type Watcher struct {
	fw        *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once
}

// Watch starts watching the store's file for changes. The callback
// runs on the watcher's goroutine; keep it short.
func (s *Store) Watch(onChange func()) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the directory: the file itself may not exist yet, and
	// editors often replace it via rename.
	if err := fw.Add(filepath.Dir(s.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	w := &Watcher{fw: fw, done: make(chan struct{})}
	go w.run(s.path, onChange)
	return w, nil
}

func (w *Watcher) run(path string, onChange func()) {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Name != path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				onChange()
			}
		case _, ok := <-w.fw.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher. Safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fw.Close()
	})
	return err
}
