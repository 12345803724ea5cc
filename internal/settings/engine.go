package settings

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/marcus/wsplus/internal/clock"
	"github.com/marcus/wsplus/internal/config"
	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/state"
	"github.com/marcus/wsplus/internal/workspace"
)

const (
	defaultReadyInterval = 100 * time.Millisecond
	defaultReadyAttempts = 50
)

// Options configures an Engine.
type Options struct {
	Config *config.Config
	Store  *state.Store
	Clock  clock.Clock
	Logger *slog.Logger

	// Wrap binds timer callbacks to the caller's event loop.
	Wrap func(func()) func()

	// ReadyInterval and ReadyAttempts bound the wait for a stable layout
	// before a forced reload.
	ReadyInterval time.Duration
	ReadyAttempts int
}

// Engine owns mode toggling and settings application.
type Engine struct {
	h      *host.Host
	cfg    *config.Config
	store  *state.Store
	clock  clock.Clock
	logger *slog.Logger
	wrap   func(func()) func()

	readyInterval time.Duration
	readyAttempts int

	reloadPending bool
	applying      bool
	refs          []event.Ref
}

// New creates an Engine. h.Workspaces should be the hooked store.
func New(h *host.Host, opts Options) *Engine {
	e := &Engine{
		h:             h,
		cfg:           opts.Config,
		store:         opts.Store,
		clock:         opts.Clock,
		logger:        opts.Logger,
		wrap:          opts.Wrap,
		readyInterval: opts.ReadyInterval,
		readyAttempts: opts.ReadyAttempts,
	}
	if e.cfg == nil {
		e.cfg = config.Default()
	}
	if e.store == nil {
		e.store = state.NewMemory()
	}
	if e.clock == nil {
		e.clock = clock.Real{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.wrap == nil {
		e.wrap = func(fn func()) func() { return fn }
	}
	if e.readyInterval <= 0 {
		e.readyInterval = defaultReadyInterval
	}
	if e.readyAttempts <= 0 {
		e.readyAttempts = defaultReadyAttempts
	}
	return e
}

// State reports which settings layer is in effect.
func (e *Engine) State() State {
	if !e.cfg.WorkspaceSettings {
		return Disabled
	}
	if e.linkedMode() != "" {
		return ModeActive
	}
	return Global
}

// ActiveMode returns the mode linked from the active workspace if it exists.
func (e *Engine) ActiveMode() string {
	if !e.cfg.WorkspaceSettings {
		return ""
	}
	return e.linkedMode()
}

func (e *Engine) linkedMode() string {
	ws := e.h.Workspaces
	cur := ws.Get(ws.Active())
	if cur == nil || cur.Meta == nil || cur.Meta.Mode == "" {
		return ""
	}
	if !workspace.IsMode(cur.Meta.Mode) || ws.Get(cur.Meta.Mode) == nil {
		return ""
	}
	return cur.Meta.Mode
}

// healMode clears a dangling mode link on the active workspace and returns the
// valid linked mode, if any.
func (e *Engine) healMode() (string, error) {
	ws := e.h.Workspaces
	cur := ws.Get(ws.Active())
	if cur == nil || cur.Meta == nil || cur.Meta.Mode == "" {
		return "", nil
	}
	if mode := e.linkedMode(); mode != "" {
		return mode, nil
	}
	e.logger.Debug("clearing dangling mode link", "workspace", ws.Active(), "mode", cur.Meta.Mode)
	cur.Meta.Mode = ""
	if err := ws.Persist(); err != nil {
		return "", fmt.Errorf("persist after clearing mode link: %w", err)
	}
	return "", nil
}

// ToggleMode links modeName to the active workspace, or unlinks it if it is
// already linked, then merges the sidebar layout and applies settings.
func (e *Engine) ToggleMode(ctx context.Context, modeName string) error {
	if !e.cfg.WorkspaceSettings {
		e.logger.Debug("skip: modes disabled", "mode", modeName)
		return nil
	}
	ws := e.h.Workspaces
	active := ws.Active()
	cur := ws.Get(active)
	if cur == nil {
		e.logger.Debug("skip: no active workspace for mode", "mode", modeName)
		return nil
	}

	meta := cur.Metadata()
	if meta.Mode == modeName {
		meta.Mode = ""
	} else {
		meta.Mode = modeName
	}

	mode := ws.Get(modeName)
	src, fold := cur.Layout, meta
	if meta.Mode != "" && mode != nil && mode.Meta.SavesSidebar() {
		src, fold = mode.Layout, mode.Meta
	}
	if err := e.mergeSidebar(src); err != nil {
		return err
	}
	if err := e.restoreFold(fold); err != nil {
		return err
	}

	if err := ws.Persist(); err != nil {
		return fmt.Errorf("persist mode link: %w", err)
	}
	if err := e.Apply(ctx); err != nil {
		return err
	}
	e.h.Events.Trigger(event.Event{Type: event.WorkspaceLoad, Name: modeName})
	return nil
}

// mergeSidebar applies src as the live layout while keeping the live main region.
func (e *Engine) mergeSidebar(src workspace.Layout) error {
	next, err := src.Clone()
	if err != nil {
		return fmt.Errorf("clone sidebar layout: %w", err)
	}
	if next == nil {
		next = workspace.Layout{}
	}
	live := e.h.Layout.Current()
	if main, ok := live[workspace.RegionMain]; ok {
		next[workspace.RegionMain] = main
	} else {
		delete(next, workspace.RegionMain)
	}
	return e.h.Layout.Change(next)
}

func (e *Engine) restoreFold(meta *workspace.Metadata) error {
	if meta == nil || len(meta.ExplorerFoldState) == 0 {
		return nil
	}
	fold := append([]string(nil), meta.ExplorerFoldState...)
	if err := e.h.Storage.Save(host.FoldStateKey, fold); err != nil {
		return fmt.Errorf("restore fold state: %w", err)
	}
	return nil
}

// Effective computes the settings that Apply would push to the host.
func (e *Engine) Effective() (map[string]any, error) {
	global, ok := e.store.GlobalSettings()
	if !ok {
		global = e.h.Settings.Snapshot()
	}

	modeName, err := e.healMode()
	if err != nil {
		return nil, err
	}
	var modeSettings map[string]any
	if modeName != "" {
		if m := e.h.Workspaces.Get(modeName); m != nil && m.Meta != nil {
			modeSettings = m.Meta.AppSettings
		}
	}

	eff := Resolve(global, modeSettings)
	if e.cfg.SystemDarkMode {
		if e.h.Env.PrefersDark() {
			eff[KeyTheme] = DarkTheme
		} else {
			eff[KeyTheme] = LightTheme
		}
	}
	return eff, nil
}

// Apply resolves the effective settings and pushes them to the host. If the
// editor engine changes and auto-reload is on, a reload is scheduled once the
// layout is ready.
func (e *Engine) Apply(ctx context.Context) error {
	if !e.cfg.WorkspaceSettings {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	eff, err := e.Effective()
	if err != nil {
		return err
	}

	needsReload := false
	if e.cfg.ReloadLivePreview {
		if want, ok := eff[KeyLivePreview].(bool); ok && want != e.h.Env.LivePreviewLoaded() {
			needsReload = true
		}
	}

	if err := e.applyToHost(eff); err != nil {
		return err
	}

	if needsReload && !e.reloadPending {
		e.reloadPending = true
		e.clock.AfterFunc(e.readyInterval, e.wrap(func() { e.tryReload(1) }))
	}
	return nil
}

func (e *Engine) applyToHost(eff map[string]any) error {
	s := e.h.Settings
	e.applying = true
	s.SetTransitions(false)
	defer func() {
		s.SetTransitions(true)
		e.applying = false
	}()

	s.Replace(eff)
	if err := s.Persist(); err != nil {
		return fmt.Errorf("persist settings: %w", err)
	}
	if theme, ok := eff[KeyTheme].(string); ok && theme != "" {
		s.ApplyTheme(theme)
	}
	if size, ok := number(eff[KeyFontSize]); ok {
		s.ApplyFont(size)
	}
	s.ReapplyCSS()
	return nil
}

func (e *Engine) tryReload(attempt int) {
	if e.h.Layout.Ready() {
		e.reloadPending = false
		e.logger.Info("reloading to switch editor engine")
		if err := e.h.Env.Reload(); err != nil {
			e.logger.Error("reload failed", "err", err)
		}
		return
	}
	if attempt >= e.readyAttempts {
		e.reloadPending = false
		e.logger.Warn("layout never became ready; skipping reload", "attempts", attempt)
		return
	}
	e.clock.AfterFunc(e.readyInterval, e.wrap(func() { e.tryReload(attempt + 1) }))
}

// SaveMode snapshots the current host settings into the named mode without
// moving the active workspace pointer.
func (e *Engine) SaveMode(name string) error {
	ws := e.h.Workspaces
	prev := ws.Active()
	if err := ws.SaveWorkspace(name); err != nil {
		return err
	}
	if ws.Active() != prev {
		ws.SetActive(prev)
		return ws.Persist()
	}
	return nil
}

// CaptureBaseline stores the current host settings as the global baseline if
// none exists yet.
func (e *Engine) CaptureBaseline() error {
	if _, ok := e.store.GlobalSettings(); ok {
		return nil
	}
	e.logger.Debug("capturing global settings baseline")
	return e.store.SetGlobalSettings(e.h.Settings.Snapshot())
}

// Register subscribes the engine's handlers to d.
func (e *Engine) Register(d *event.Dispatcher) {
	e.refs = append(e.refs,
		d.On(event.WorkspaceSave, e.onSave),
		d.On(event.WorkspaceLoad, e.onLoad),
		d.On(event.WorkspaceDelete, e.onDelete),
		d.On(event.ConfigChanged, e.onConfigChanged),
		d.On(event.LayoutReady, e.onLayoutReady),
	)
}

// Unregister removes the handlers added by Register.
func (e *Engine) Unregister(d *event.Dispatcher) {
	for _, ref := range e.refs {
		d.Off(ref)
	}
	e.refs = nil
}

func (e *Engine) onSave(ev event.Event) {
	if ev.Meta == nil {
		return
	}
	if workspace.IsMode(ev.Name) {
		if e.cfg.WorkspaceSettings {
			ev.Meta.AppSettings = e.h.Settings.Snapshot()
		}
		return
	}
	if v, ok := e.h.Storage.Load(host.FoldStateKey); ok {
		if fold, ok := stringSlice(v); ok {
			ev.Meta.ExplorerFoldState = fold
		}
	}
}

func (e *Engine) onLoad(ev event.Event) {
	if workspace.IsMode(ev.Name) {
		return
	}
	if ws := e.h.Workspaces.Get(ev.Name); ws != nil {
		if err := e.restoreFold(ws.Meta); err != nil {
			e.logger.Error("restore fold state", "workspace", ev.Name, "err", err)
		}
	}
	if err := e.store.SetActiveWorkspace(e.h.Env.Platform(), ev.Name); err != nil {
		e.logger.Error("remember active workspace", "workspace", ev.Name, "err", err)
	}
	if err := e.Apply(context.Background()); err != nil {
		e.logger.Error("apply settings", "workspace", ev.Name, "err", err)
	}
}

func (e *Engine) onDelete(ev event.Event) {
	if !workspace.IsMode(ev.Name) {
		return
	}
	ws := e.h.Workspaces
	wasActive := false
	changed := false
	for _, name := range ws.Names() {
		w := ws.Get(name)
		if w == nil || w.Meta == nil || w.Meta.Mode != ev.Name {
			continue
		}
		if name == ws.Active() {
			wasActive = true
		}
		w.Meta.Mode = ""
		changed = true
	}
	if !changed {
		return
	}
	if err := ws.Persist(); err != nil {
		e.logger.Error("persist after mode delete", "mode", ev.Name, "err", err)
		return
	}
	if wasActive {
		if err := e.Apply(context.Background()); err != nil {
			e.logger.Error("apply settings", "err", err)
		}
	}
}

func (e *Engine) onConfigChanged(event.Event) {
	if !e.cfg.WorkspaceSettings || e.applying {
		return
	}
	if mode := e.ActiveMode(); mode != "" {
		if err := e.SaveMode(mode); err != nil {
			e.logger.Error("save mode after config change", "mode", mode, "err", err)
		}
		return
	}
	if err := e.store.SetGlobalSettings(e.h.Settings.Snapshot()); err != nil {
		e.logger.Error("refresh global settings", "err", err)
	}
}

func (e *Engine) onLayoutReady(event.Event) {
	if err := e.CaptureBaseline(); err != nil {
		e.logger.Error("capture global settings", "err", err)
	}
	ws := e.h.Workspaces
	name := e.store.ActiveWorkspace(e.h.Env.Platform())
	if name == "" || name == ws.Active() || ws.Get(name) == nil {
		return
	}
	if err := ws.LoadWorkspace(context.Background(), name); err != nil {
		e.logger.Error("restore platform workspace", "workspace", name, "err", err)
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func stringSlice(v any) ([]string, bool) {
	switch s := v.(type) {
	case []string:
		return append([]string(nil), s...), true
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	}
	return nil, false
}
