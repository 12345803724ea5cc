package vault

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/marcus/wsplus/internal/event"
)

// WatchDebounce coalesces bursts of file events per file.
const WatchDebounce = 100 * time.Millisecond

// Change reloads a changed file and returns the event to emit, if any.
type Change func() (event.Event, bool)

// Watch reports external edits to app.json as config-changed and to
// layout.json as layout-change. dispatch must run the Change on the caller's
// event loop and deliver its event before releasing the loop, so the reload
// and the handlers see the same host state. Writes made by this process are
// skipped. Watch blocks until ctx is done.
func (v *Vault) Watch(ctx context.Context, dispatch func(Change)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(v.StateDir()); err != nil {
		return err
	}

	var mu sync.Mutex
	timers := map[string]*time.Timer{}
	defer func() {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range timers {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(ev.Name)
			if name != AppFile && name != LayoutFile {
				continue
			}
			mu.Lock()
			if t := timers[name]; t != nil {
				t.Stop()
			}
			timers[name] = time.AfterFunc(WatchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				dispatch(func() (event.Event, bool) { return v.externalChange(name) })
			})
			mu.Unlock()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			v.logger.Warn("vault watcher", "err", err)
		}
	}
}

// externalChange reloads the named file if someone else wrote it and
// returns the event to emit.
func (v *Vault) externalChange(name string) (event.Event, bool) {
	switch name {
	case AppFile:
		if v.Settings.ownWrite() {
			return event.Event{}, false
		}
		if err := v.Settings.Reload(); err != nil {
			v.logger.Warn("reload settings", "err", err)
			return event.Event{}, false
		}
		return event.Event{Type: event.ConfigChanged}, true
	case LayoutFile:
		if v.Layout.ownWrite() {
			return event.Event{}, false
		}
		if err := v.Layout.Reload(); err != nil {
			v.logger.Warn("reload layout", "err", err)
			return event.Event{}, false
		}
		return event.Event{Type: event.LayoutChange}, true
	}
	return event.Event{}, false
}
