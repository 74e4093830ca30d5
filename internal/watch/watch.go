// Package watch reports changes to the config file and dictionary sources.
//
// The watcher subscribes to each file's parent directory and filters events
// by name, so files replaced by rename are still seen. Bursts of events are
// collapsed into a single callback.
package watch

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const relevantOps = fsnotify.Write | fsnotify.Create | fsnotify.Rename | fsnotify.Remove

// Watcher calls onChange once per burst of changes to the tracked files.
type Watcher struct {
	fs       *fsnotify.Watcher
	debounce time.Duration
	onChange func()

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

// New watches files. Files that do not exist yet are tracked too, as long as
// their directory exists.
func New(files []string, debounce time.Duration, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:       fsw,
		debounce: debounce,
		onChange: onChange,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}
	if err := w.Track(files); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Track replaces the set of tracked files, subscribing to any new directories.
// It fails only when none of the directories could be watched.
func (w *Watcher) Track(files []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = make(map[string]struct{}, len(files))
	var lastErr error
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			abs = filepath.Clean(f)
		}
		w.files[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.fs.Add(dir); err != nil {
			log.Warnf("Cannot watch %s: %v", dir, err)
			lastErr = err
			continue
		}
		w.dirs[dir] = struct{}{}
		log.Debugf("Watching %s", dir)
	}
	if len(w.dirs) == 0 && len(w.files) > 0 {
		if lastErr == nil {
			lastErr = errors.New("no directory could be watched")
		}
		return lastErr
	}
	return nil
}

func (w *Watcher) tracked(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[filepath.Clean(name)]
	return ok
}

// Run delivers callbacks until ctx is done, then closes the watcher.
// onChange runs on the Run goroutine, so a slow callback delays the next one.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if event.Op&relevantOps == 0 {
				continue
			}
			if !w.tracked(event.Name) {
				continue
			}
			log.Debugf("Change detected: %s", event)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			log.Warnf("Watcher error: %v", err)

		case <-fire:
			fire = nil
			w.onChange()
		}
	}
}
