// Package hooks wraps the host's native workspace primitives so every save,
// delete and load emits a lifecycle event, whichever code path called it.
package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus/wsplus/internal/clock"
	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/workspace"
)

// Installer is implemented by stores that already carry the hooks.
type Installer interface {
	HooksInstalled() bool
}

// ModeToggler links or unlinks a mode against the active workspace.
type ModeToggler interface {
	ToggleMode(ctx context.Context, modeName string) error
}

// Suppressor blocks autosave for a bounded window.
type Suppressor interface {
	SuppressAutosave()
}

// OverrideApplier patches a layout with the metadata's file overrides.
type OverrideApplier interface {
	Apply(ctx context.Context, meta *workspace.Metadata, l workspace.Layout, now time.Time) error
}

// Deps are the collaborators the interceptor calls into.
type Deps struct {
	Events     *event.Dispatcher
	Modes      ModeToggler
	Suppressor Suppressor
	Overrides  OverrideApplier
	Clock      clock.Clock
	Logger     *slog.Logger
}

// Interceptor decorates a host.Workspaces. Store accessors pass through;
// SaveWorkspace, DeleteWorkspace and LoadWorkspace are guarded and emit events.
type Interceptor struct {
	host.Workspaces
	deps Deps
}

// Install wraps native. If native already carries the hooks it is returned
// unchanged.
func Install(native host.Workspaces, deps Deps) host.Workspaces {
	if in, ok := native.(Installer); ok && in.HooksInstalled() {
		return native
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Clock == nil {
		deps.Clock = clock.Real{}
	}
	if deps.Events == nil {
		deps.Events = event.NewWithLogger(deps.Logger)
	}
	return &Interceptor{Workspaces: native, deps: deps}
}

// HooksInstalled marks the store as wrapped.
func (i *Interceptor) HooksInstalled() bool { return true }

// Native returns the wrapped store.
func (i *Interceptor) Native() host.Workspaces { return i.Workspaces }

func (i *Interceptor) skip(op, name string) bool {
	if name == "" {
		i.deps.Logger.Debug("skip: empty workspace name", "op", op)
		return true
	}
	if !i.Enabled() {
		i.deps.Logger.Debug("skip: workspaces disabled", "op", op, "name", name)
		return true
	}
	return false
}

// SaveWorkspace saves the live layout under name. The workspace keeps the
// metadata object it had before the save; save listeners receive that same
// object and may mutate it before the store is persisted.
func (i *Interceptor) SaveWorkspace(name string) error {
	if i.skip("save", name) {
		return nil
	}

	var meta *workspace.Metadata
	if prev := i.Get(name); prev != nil {
		meta = prev.Metadata()
	} else {
		meta = &workspace.Metadata{}
	}

	if err := i.Workspaces.SaveWorkspace(name); err != nil {
		return fmt.Errorf("save workspace %q: %w", name, err)
	}
	if ws := i.Get(name); ws != nil {
		ws.Meta = meta
	}

	i.deps.Events.Trigger(event.Event{Type: event.WorkspaceSave, Name: name, Meta: meta})

	if err := i.Persist(); err != nil {
		return fmt.Errorf("persist workspace %q: %w", name, err)
	}
	return nil
}

// DeleteWorkspace deletes name and emits workspace-delete once it is gone.
func (i *Interceptor) DeleteWorkspace(name string) error {
	if i.skip("delete", name) {
		return nil
	}
	if err := i.Workspaces.DeleteWorkspace(name); err != nil {
		return fmt.Errorf("delete workspace %q: %w", name, err)
	}
	i.deps.Events.Trigger(event.Event{Type: event.WorkspaceDelete, Name: name})
	return nil
}

// LoadWorkspace loads name. Mode names toggle the mode instead of replacing
// the layout. Regular loads suppress autosave before anything else happens and
// resolve file overrides before the layout is applied.
func (i *Interceptor) LoadWorkspace(ctx context.Context, name string) error {
	if i.skip("load", name) {
		return nil
	}

	if workspace.IsMode(name) {
		if i.deps.Modes == nil {
			i.deps.Logger.Debug("skip: no mode handler", "name", name)
			return nil
		}
		return i.deps.Modes.ToggleMode(ctx, name)
	}

	if i.deps.Suppressor != nil {
		i.deps.Suppressor.SuppressAutosave()
	}

	if ws := i.Get(name); ws != nil && ws.Meta != nil && i.deps.Overrides != nil {
		if err := i.deps.Overrides.Apply(ctx, ws.Meta, ws.Layout, i.deps.Clock.Now()); err != nil {
			return fmt.Errorf("apply file overrides for %q: %w", name, err)
		}
	}

	if err := i.Workspaces.LoadWorkspace(ctx, name); err != nil {
		return fmt.Errorf("load workspace %q: %w", name, err)
	}

	i.deps.Events.Trigger(event.Event{Type: event.WorkspaceLoad, Name: name})
	return nil
}

// observedStorage calls onSave after every successful write.
type observedStorage struct {
	host.LocalStorage
	onSave func(key string)
}

// WrapLocalStorage returns ls with onSave invoked once each Save has landed,
// so observers that read the key back see the new value.
func WrapLocalStorage(ls host.LocalStorage, onSave func(key string)) host.LocalStorage {
	if _, ok := ls.(*observedStorage); ok {
		return ls
	}
	return &observedStorage{LocalStorage: ls, onSave: onSave}
}

func (s *observedStorage) Save(key string, value any) error {
	if err := s.LocalStorage.Save(key, value); err != nil {
		return err
	}
	if s.onSave != nil {
		s.onSave(key)
	}
	return nil
}
