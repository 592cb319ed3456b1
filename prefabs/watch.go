package prefabs

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Change names a prefab or script file that was edited on disk.
type Change struct {
	Path   string
	Script bool
}

// Watcher reports edits to prefab and script files. Changes are delivered
// on a buffered channel; the runner drains it between frames.
type Watcher struct {
	fsw     *fsnotify.Watcher
	Changes chan Change
	Errors  chan error

	done     chan struct{}
	stopOnce sync.Once
	running  sync.WaitGroup
}

// NewWatcher watches every dir non-recursively.
func NewWatcher(dirs ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("prefabs: watcher: %w", err)
	}
	for _, dir := range dirs {
		if addErr := fsw.Add(dir); addErr != nil {
			return nil, errors.Join(fmt.Errorf("prefabs: watch %s: %w", dir, addErr), fsw.Close())
		}
	}

	w := &Watcher{
		fsw:     fsw,
		Changes: make(chan Change, 16),
		Errors:  make(chan error, 1),
		done:    make(chan struct{}),
	}
	w.running.Add(1)
	go w.run()
	return w, nil
}

// Close stops the watcher and closes both channels. It is safe to call
// more than once.
func (w *Watcher) Close() (err error) {
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsw.Close()
		w.running.Wait()
		close(w.Changes)
		close(w.Errors)
	})
	return err
}

// Pending drains every change queued so far without blocking.
func (w *Watcher) Pending() []Change {
	var out []Change
	for {
		select {
		case c, ok := <-w.Changes:
			if !ok {
				return out
			}
			out = append(out, c)
		default:
			return out
		}
	}
}

func (w *Watcher) run() {
	defer w.running.Done()
	seen := make(map[string]time.Time)
	for {
		select {
		case <-w.done:
			return
		case err, open := <-w.fsw.Errors:
			if !open {
				return
			}
			w.report(err)
		case event, open := <-w.fsw.Events:
			if !open {
				return
			}
			if c, keep := classify(event); keep && !recent(seen, c.Path, time.Now()) {
				if !w.deliver(c) {
					return
				}
			}
		}
	}
}

// deliver blocks until c is queued or the watcher closes.
func (w *Watcher) deliver(c Change) bool {
	select {
	case w.Changes <- c:
		return true
	case <-w.done:
		return false
	}
}

// report keeps the first unread error and drops the rest.
func (w *Watcher) report(err error) {
	select {
	case w.Errors <- err:
	default:
	}
}

// classify keeps writes, creates and renames of spec and script files.
// Removals are dropped: the embedded copy takes over on the next load.
func classify(event fsnotify.Event) (Change, bool) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return Change{}, false
	}
	switch strings.ToLower(filepath.Ext(event.Name)) {
	case ".yaml", ".yml":
		return Change{Path: event.Name}, true
	case ".tengo":
		return Change{Path: event.Name, Script: true}, true
	}
	return Change{}, false
}

// recent reports whether path fired within the debounce window, and records
// now otherwise.
func recent(seen map[string]time.Time, path string, now time.Time) bool {
	if t, ok := seen[path]; ok && now.Sub(t) < reloadDebounce {
		return true
	}
	seen[path] = now
	return false
}
