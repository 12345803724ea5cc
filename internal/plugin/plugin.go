// Package plugin is the composition root. It installs the workspace hooks on
// a host and wires the settings engine, the autosave coordinator and the
// modification detector to the host's event stream.
package plugin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/marcus/wsplus/internal/autosave"
	"github.com/marcus/wsplus/internal/clock"
	"github.com/marcus/wsplus/internal/config"
	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/hooks"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/layoutdiff"
	"github.com/marcus/wsplus/internal/overrides"
	"github.com/marcus/wsplus/internal/settings"
	"github.com/marcus/wsplus/internal/state"
	"github.com/marcus/wsplus/internal/workspace"
)

// Context carries the shared collaborators handed to New.
type Context struct {
	Host   *host.Host
	Config *config.Config
	Store  *state.Store
	Clock  clock.Clock
	Logger *slog.Logger
	// Loop serializes entry points and timer callbacks. A nil Loop gets a
	// private one.
	Loop *event.Loop
	// Trailing enables the trailing autosave flush.
	Trailing bool
	// OnError receives autosave failures. Failures are always logged at
	// Error level.
	OnError func(error)
}

// Plugin is a running instance bound to one host.
type Plugin struct {
	h      *host.Host
	cfg    *config.Config
	store  *state.Store
	clock  clock.Clock
	logger *slog.Logger
	loop   *event.Loop

	native    host.Workspaces
	selection *state.Selection
	engine    *settings.Engine
	autosave  *autosave.Coordinator
	detector  *layoutdiff.Detector

	refs   []event.Ref
	closed bool
}

// New installs the hooks on ctx.Host and subscribes every handler. The host's
// Workspaces and Storage fields are replaced with their observed wrappers.
func New(ctx *Context) (*Plugin, error) {
	if ctx == nil || ctx.Host == nil || ctx.Host.Workspaces == nil {
		return nil, fmt.Errorf("plugin: host with a workspace store is required")
	}
	p := &Plugin{
		h:      ctx.Host,
		cfg:    ctx.Config,
		store:  ctx.Store,
		clock:  ctx.Clock,
		logger: ctx.Logger,
		loop:   ctx.Loop,
	}
	if p.cfg == nil {
		p.cfg = config.Default()
	}
	if p.store == nil {
		p.store = state.NewMemory()
	}
	if p.clock == nil {
		p.clock = clock.Real{}
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.loop == nil {
		p.loop = &event.Loop{}
	}
	if p.h.Events == nil {
		p.h.Events = event.NewWithLogger(p.logger)
	}

	h := p.h
	p.native = h.Workspaces
	if in, ok := p.native.(*hooks.Interceptor); ok {
		p.native = in.Native()
	}

	p.selection = state.NewSelection(p.native, p.clock, p.cfg.SuppressWindow)
	p.engine = settings.New(h, settings.Options{
		Config: p.cfg,
		Store:  p.store,
		Clock:  p.clock,
		Logger: p.logger.With("component", "settings"),
		Wrap:   p.loop.Wrap,
	})
	h.Workspaces = hooks.Install(h.Workspaces, hooks.Deps{
		Events:     h.Events,
		Modes:      p.engine,
		Suppressor: p.selection,
		Overrides:  overrides.NewResolver(h, p.logger.With("component", "overrides")),
		Clock:      p.clock,
		Logger:     p.logger.With("component", "hooks"),
	})
	if h.Storage != nil {
		h.Storage = hooks.WrapLocalStorage(h.Storage, p.onStorageSave)
	}

	p.detector = layoutdiff.New(p.logger.With("component", "layoutdiff"), p.cfg.VolatileKeys...)

	var opts []autosave.Option
	if ctx.Trailing {
		opts = append(opts, autosave.WithTrailing())
	}
	p.autosave = autosave.New(autosave.Options{
		Config:     p.cfg,
		Clock:      p.clock,
		Logger:     p.logger.With("component", "autosave"),
		Wrap:       p.loop.Wrap,
		Active:     func() string { return h.Workspaces.Active() },
		Suppressed: p.selection.Suppressed,
		Modified:   p.modified,
		Save:       func(name string) error { return h.Workspaces.SaveWorkspace(name) },
		OnError: func(name string, err error) {
			if ctx.OnError != nil {
				ctx.OnError(fmt.Errorf("autosave %q: %w", name, err))
			}
		},
	}, opts...)

	p.engine.Register(h.Events)
	p.autosave.Register(h.Events)
	p.refs = append(p.refs,
		h.Events.On(event.WorkspaceSave, p.onSave),
		h.Events.On(event.WorkspaceDelete, p.onDelete),
		h.Events.On(event.WorkspaceRename, p.onRename),
		h.Events.On(event.LayoutReady, p.onLayoutReady),
	)
	return p, nil
}

// Close unsubscribes every handler and cancels pending autosaves.
func (p *Plugin) Close() {
	p.loop.Run(func() {
		if p.closed {
			return
		}
		p.closed = true
		for _, ref := range p.refs {
			p.h.Events.Off(ref)
		}
		p.refs = nil
		p.autosave.Unregister(p.h.Events)
		p.engine.Unregister(p.h.Events)
	})
}

// Host returns the host with the hooks installed.
func (p *Plugin) Host() *host.Host { return p.h }

// Config returns the plugin configuration.
func (p *Plugin) Config() *config.Config { return p.cfg }

// Engine returns the settings engine.
func (p *Plugin) Engine() *settings.Engine { return p.engine }

// Dispatch delivers a host event on the plugin loop.
func (p *Plugin) Dispatch(ev event.Event) {
	p.loop.Run(func() { p.h.Events.Trigger(ev) })
}

// DispatchChange runs change on the plugin loop and delivers the event it
// returns, if any, before the loop is released.
func (p *Plugin) DispatchChange(change func() (event.Event, bool)) {
	p.loop.Run(func() {
		if ev, ok := change(); ok {
			p.h.Events.Trigger(ev)
		}
	})
}

// Save saves the live layout under name. Modes are snapshotted without moving
// the active workspace pointer.
func (p *Plugin) Save(name string) error {
	return p.loop.RunErr(func() error { return p.save(name) })
}

func (p *Plugin) save(name string) error {
	if workspace.IsMode(name) {
		return p.engine.SaveMode(name)
	}
	return p.h.Workspaces.SaveWorkspace(name)
}

// Load loads name, or toggles it when name is a mode.
func (p *Plugin) Load(ctx context.Context, name string) error {
	return p.loop.RunErr(func() error { return p.h.Workspaces.LoadWorkspace(ctx, name) })
}

// Delete deletes name.
func (p *Plugin) Delete(name string) error {
	return p.loop.RunErr(func() error { return p.h.Workspaces.DeleteWorkspace(name) })
}

// Rename moves oldName to newName. See rename for the rollback rules.
func (p *Plugin) Rename(oldName, newName string) error {
	return p.loop.RunErr(func() error { return p.rename(oldName, newName) })
}

// Annotate applies fn to the metadata of name and persists the store.
func (p *Plugin) Annotate(name string, fn func(*workspace.Metadata)) error {
	return p.loop.RunErr(func() error {
		ws := p.h.Workspaces.Get(name)
		if ws == nil {
			return fmt.Errorf("annotate %q: %w", name, workspace.ErrNotFound)
		}
		fn(ws.Metadata())
		return p.h.Workspaces.Persist()
	})
}

// Status is the summary shown in a status bar.
type Status struct {
	Workspace string
	Mode      string
	Modified  bool
	Autosaves int
}

// GlobalLabel is the mode label shown when no mode is active.
const GlobalLabel = "Global"

// Status reports the active workspace, the active mode label and whether the
// live layout differs from the saved copy.
func (p *Plugin) Status() Status {
	var s Status
	p.loop.Run(func() {
		s.Workspace = p.h.Workspaces.Active()
		s.Mode = GlobalLabel
		if mode := p.engine.ActiveMode(); mode != "" {
			s.Mode = workspace.DisplayName(mode)
		}
		s.Modified = s.Workspace != "" && p.modified(s.Workspace)
		s.Autosaves = p.autosave.Saves
	})
	return s
}

// Diagnostic is a health check result.
type Diagnostic struct {
	ID     string
	Status string
	Detail string
}

// Diagnostics reports the state of each wired component.
func (p *Plugin) Diagnostics() []Diagnostic {
	var out []Diagnostic
	p.loop.Run(func() {
		_, hooked := p.h.Workspaces.(hooks.Installer)
		out = append(out, Diagnostic{ID: "hooks", Status: onOff(hooked)})
		out = append(out, Diagnostic{ID: "workspaces", Status: onOff(p.h.Workspaces.Enabled()),
			Detail: fmt.Sprintf("%d saved", len(p.h.Workspaces.Names()))})
		out = append(out, Diagnostic{ID: "modes", Status: onOff(p.cfg.WorkspaceSettings),
			Detail: p.engine.State().String()})
		detail := p.cfg.AutosaveInterval.String()
		if p.selection.Suppressed() {
			detail += ", suppressed"
		}
		out = append(out, Diagnostic{ID: "autosave", Status: onOff(p.cfg.SaveOnChange), Detail: detail})
	})
	return out
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// modified reports whether the live layout differs from the stored copy of
// name.
func (p *Plugin) modified(name string) bool {
	saved := p.h.Workspaces.Get(name)
	var l workspace.Layout
	if saved != nil {
		l = saved.Layout
	}
	return p.detector.IsModified(p.h.Layout.Current(), l, saved != nil)
}

func (p *Plugin) onStorageSave(key string) {
	if key == host.FoldStateKey {
		p.autosave.NotifyState()
	}
}
