package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
)

// reloadDelay coalesces the burst of events one atomic write produces
const reloadDelay = 100 * time.Millisecond

// Watcher reloads the settings whenever settings.json changes on disk
type Watcher struct {
	manager  *Manager
	flags    *pflag.FlagSet
	onChange func(*Settings, error)

	watcher *fsnotify.Watcher

	debounceMu sync.Mutex
	debouncer  *time.Timer
}

// Watch starts watching the settings file until ctx is done. onChange is
// called from the watcher goroutine with the freshly loaded settings, or the
// error that loading them produced. Flags keep their precedence on reload.
func (m *Manager) Watch(ctx context.Context, flags *pflag.FlagSet, onChange func(*Settings, error)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Atomic writes replace the file, so the directory is watched, not the file
	if err := fw.Add(m.dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{manager: m, flags: flags, onChange: onChange, watcher: fw}
	go w.loop(ctx)
	return w, nil
}

func (w *Watcher) loop(ctx context.Context) {
	defer w.watcher.Close()
	name := filepath.Base(w.manager.path)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				w.debouncedReload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.onChange(nil, err)
		case <-ctx.Done():
			w.stopTimer()
			return
		}
	}
}

func (w *Watcher) debouncedReload() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debouncer != nil {
		w.debouncer.Stop()
	}

	w.debouncer = time.AfterFunc(reloadDelay, func() {
		w.onChange(w.manager.Load(w.flags))
	})
}

func (w *Watcher) stopTimer() {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if w.debouncer != nil {
		w.debouncer.Stop()
	}
}
