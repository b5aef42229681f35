// Package watch reports changes to grammar source files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/untillpro/goutils/logger"
)

const changeOps = fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// Watcher calls a callback when one of its files changes. Directories are
// watched rather than files so that editors replacing a file by rename are
// still seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(path string)

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

// New returns a watcher calling onChange with the cleaned absolute path of
// every changed file that was added.
func New(onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	return &Watcher{
		fsw:      fsw,
		onChange: onChange,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
	}, nil
}

// Add starts watching path.
func (w *Watcher) Add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	dir := filepath.Dir(abs)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.dirs[dir]; !ok {
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	w.files[abs] = struct{}{}
	return nil
}

func (w *Watcher) tracked(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[abs]
	return abs, ok
}

// Run delivers change events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if event.Op&changeOps == 0 {
				continue
			}
			path, ok := w.tracked(event.Name)
			if !ok {
				continue
			}
			logger.Verbose(fmt.Sprintf("watch: %s %s", event.Op, path))
			w.onChange(path)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Error(fmt.Sprintf("watch: %v", err))
		}
	}
}

// Close stops watching; Run returns once the event channels drain.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
