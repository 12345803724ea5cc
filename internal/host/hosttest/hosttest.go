// Package hosttest provides in-memory fakes for the host collaborators.
package hosttest

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/workspace"
)

// Fakes holds the typed fakes behind a host.Host.
type Fakes struct {
	Host       *host.Host
	Workspaces *Workspaces
	Settings   *Settings
	Storage    *Storage
	Files      *Files
	Periodic   *Periodic
	Templates  *Templates
	Layout     *Layout
	Env        *Env
	Commands   *Commands
	Events     *event.Dispatcher
}

// New builds a host backed entirely by fakes.
func New() *Fakes {
	f := &Fakes{
		Settings:  &Settings{Config: map[string]any{}},
		Storage:   &Storage{Data: map[string]any{}},
		Files:     &Files{Paths: map[string]bool{}},
		Templates: &Templates{Date: "YYYY-MM-DD", Time: "HH:mm"},
		Layout:    &Layout{Live: workspace.Layout{}},
		Env:       &Env{Plat: host.Desktop},
		Commands:  &Commands{Registered: map[string]host.Command{}, Keys: map[string][]string{}},
		Events:    event.New(),
	}
	f.Workspaces = &Workspaces{Store: map[string]*workspace.Workspace{}, Layout: f.Layout}
	f.Periodic = &Periodic{Series: map[host.Granularity]host.PeriodicSettings{}, Files: f.Files}
	f.Host = &host.Host{
		Workspaces: f.Workspaces,
		Settings:   f.Settings,
		Storage:    f.Storage,
		Files:      f.Files,
		Periodic:   f.Periodic,
		Templates:  f.Templates,
		Layout:     f.Layout,
		Env:        f.Env,
		Commands:   f.Commands,
		Events:     f.Events,
	}
	return f
}

// Workspaces is an in-memory workspace store with native primitives that
// behave like the host's: save captures the live layout without metadata,
// load swaps the live layout.
type Workspaces struct {
	Store      map[string]*workspace.Workspace
	ActiveName string
	Disabled   bool
	Layout     *Layout

	PersistCount int
	PersistErr   error
	SaveErr      error
	DeleteErr    error
	LoadErr      error

	Calls []string
}

func (w *Workspaces) Enabled() bool { return !w.Disabled }

func (w *Workspaces) Get(name string) *workspace.Workspace { return w.Store[name] }

func (w *Workspaces) Set(name string, ws *workspace.Workspace) { w.Store[name] = ws }

func (w *Workspaces) Remove(name string) { delete(w.Store, name) }

func (w *Workspaces) Names() []string {
	return slices.Sorted(maps.Keys(w.Store))
}

func (w *Workspaces) Active() string { return w.ActiveName }

func (w *Workspaces) SetActive(name string) { w.ActiveName = name }

func (w *Workspaces) Persist() error {
	w.PersistCount++
	return w.PersistErr
}

func (w *Workspaces) SaveWorkspace(name string) error {
	w.Calls = append(w.Calls, "save:"+name)
	if w.SaveErr != nil {
		return w.SaveErr
	}
	live, err := w.Layout.Current().Clone()
	if err != nil {
		return err
	}
	w.Store[name] = workspace.New(live)
	w.ActiveName = name
	return w.Persist()
}

func (w *Workspaces) DeleteWorkspace(name string) error {
	w.Calls = append(w.Calls, "delete:"+name)
	if w.DeleteErr != nil {
		return w.DeleteErr
	}
	delete(w.Store, name)
	if w.ActiveName == name {
		w.ActiveName = ""
	}
	return w.Persist()
}

func (w *Workspaces) LoadWorkspace(_ context.Context, name string) error {
	w.Calls = append(w.Calls, "load:"+name)
	if w.LoadErr != nil {
		return w.LoadErr
	}
	ws := w.Store[name]
	if ws == nil {
		return fmt.Errorf("load %q: %w", name, workspace.ErrNotFound)
	}
	l, err := ws.Layout.Clone()
	if err != nil {
		return err
	}
	if err := w.Layout.Change(l); err != nil {
		return err
	}
	w.ActiveName = name
	return w.Persist()
}

// Put stores a workspace with the given layout and metadata.
func (w *Workspaces) Put(name string, l workspace.Layout, meta *workspace.Metadata) *workspace.Workspace {
	if l == nil {
		l = workspace.Layout{}
	}
	ws := &workspace.Workspace{Layout: l, Meta: meta}
	w.Store[name] = ws
	return ws
}

// Settings is an in-memory settings store that records applications.
type Settings struct {
	Config       map[string]any
	Theme        string
	Font         float64
	CSSCount     int
	Transitions  []bool
	PersistCount int
	PersistErr   error
}

func (s *Settings) Snapshot() map[string]any { return maps.Clone(s.Config) }

func (s *Settings) Get(key string) any { return s.Config[key] }

func (s *Settings) Replace(cfg map[string]any) { s.Config = maps.Clone(cfg) }

func (s *Settings) Persist() error {
	s.PersistCount++
	return s.PersistErr
}

func (s *Settings) ApplyTheme(name string) { s.Theme = name }

func (s *Settings) ApplyFont(size float64) { s.Font = size }

func (s *Settings) ReapplyCSS() { s.CSSCount++ }

func (s *Settings) SetTransitions(enabled bool) { s.Transitions = append(s.Transitions, enabled) }

// Storage is an in-memory local storage.
type Storage struct {
	Data    map[string]any
	SaveErr error
}

func (s *Storage) Load(key string) (any, bool) {
	v, ok := s.Data[key]
	return v, ok
}

func (s *Storage) Save(key string, value any) error {
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Data[key] = value
	return nil
}

// Files is a set of existing vault paths.
type Files struct {
	Paths map[string]bool
}

// Add marks paths as existing.
func (f *Files) Add(paths ...string) {
	for _, p := range paths {
		f.Paths[host.NormalizePath(p)] = true
	}
}

func (f *Files) Exists(p string) bool { return f.Paths[host.NormalizePath(p)] }

func (f *Files) Resolve(p string) (string, bool) {
	n := host.NormalizePath(p)
	return n, f.Paths[n]
}

// Periodic is a periodic note facility over Files.
type Periodic struct {
	Series    map[host.Granularity]host.PeriodicSettings
	Files     *Files
	Created   []string
	CreateErr error
}

func (p *Periodic) Settings(g host.Granularity) (host.PeriodicSettings, bool) {
	s, ok := p.Series[g]
	return s, ok && s.Enabled
}

func (p *Periodic) Get(g host.Granularity, date time.Time) (string, bool) {
	s, ok := p.Settings(g)
	if !ok {
		return "", false
	}
	path := s.NotePath(g, date)
	return path, p.Files.Exists(path)
}

func (p *Periodic) Create(_ context.Context, g host.Granularity, date time.Time) (string, error) {
	if p.CreateErr != nil {
		return "", p.CreateErr
	}
	s, ok := p.Settings(g)
	if !ok {
		return "", fmt.Errorf("periodic %s notes disabled", g)
	}
	path := s.NotePath(g, date)
	p.Files.Add(path)
	p.Created = append(p.Created, path)
	return path, nil
}

// Templates holds fixed template formats.
type Templates struct {
	Date string
	Time string
}

func (t *Templates) DateFormat() string { return t.Date }

func (t *Templates) TimeFormat() string { return t.Time }

// Layout is the live layout. Ready returns false for the first NotReady calls.
type Layout struct {
	Live        workspace.Layout
	ChangeCount int
	ChangeErr   error
	NotReady    int
	ReadyCalls  int
}

func (l *Layout) Current() workspace.Layout { return l.Live }

func (l *Layout) Change(nl workspace.Layout) error {
	if l.ChangeErr != nil {
		return l.ChangeErr
	}
	l.ChangeCount++
	l.Live = nl
	return nil
}

func (l *Layout) Ready() bool {
	l.ReadyCalls++
	return l.ReadyCalls > l.NotReady
}

// Env is a fixed environment that counts reloads.
type Env struct {
	Plat        host.Platform
	Dark        bool
	LivePreview bool
	Reloads     int
	ReloadErr   error
}

func (e *Env) Platform() host.Platform { return e.Plat }

func (e *Env) PrefersDark() bool { return e.Dark }

func (e *Env) LivePreviewLoaded() bool { return e.LivePreview }

func (e *Env) Reload() error {
	e.Reloads++
	return e.ReloadErr
}

// Commands is an in-memory command and hotkey registry.
type Commands struct {
	Registered map[string]host.Command
	Keys       map[string][]string
}

func (c *Commands) Add(cmd host.Command) { c.Registered[cmd.ID] = cmd }

func (c *Commands) Remove(id string) { delete(c.Registered, id) }

func (c *Commands) Hotkeys(id string) []string { return c.Keys[id] }

func (c *Commands) SetHotkeys(id string, keys []string) { c.Keys[id] = keys }

func (c *Commands) RemoveHotkeys(id string) { delete(c.Keys, id) }
