// Package host declares the collaborators the workspace engine consumes from
// its host application: the workspace store, the settings store, local
// storage, files, periodic notes, the live layout and the environment.
package host

import (
	"context"
	"time"

	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/workspace"
)

// Workspaces is the host's named layout store and its native primitives.
type Workspaces interface {
	// Enabled reports whether the host workspaces feature is turned on.
	Enabled() bool

	Get(name string) *workspace.Workspace
	Set(name string, ws *workspace.Workspace)
	Remove(name string)
	Names() []string

	// Active is the active workspace pointer.
	Active() string
	SetActive(name string)

	// Persist flushes the store to disk.
	Persist() error

	// SaveWorkspace captures the live layout under name.
	SaveWorkspace(name string) error
	// DeleteWorkspace removes name from the store and persists.
	DeleteWorkspace(name string) error
	// LoadWorkspace applies the stored layout for name and makes it active.
	LoadWorkspace(ctx context.Context, name string) error
}

// Settings is the host's application settings store.
type Settings interface {
	// Snapshot returns a copy of the current configuration.
	Snapshot() map[string]any
	Get(key string) any
	// Replace swaps the whole configuration object.
	Replace(cfg map[string]any)
	Persist() error

	ApplyTheme(name string)
	ApplyFont(size float64)
	ReapplyCSS()
	// SetTransitions enables or disables UI transitions while settings swap.
	SetTransitions(enabled bool)
}

// FoldStateKey is the local storage key holding the file explorer's expanded folders.
const FoldStateKey = "file-explorer-unfold"

// LocalStorage is the host's per-vault key/value store.
type LocalStorage interface {
	Load(key string) (any, bool)
	Save(key string, value any) error
}

// Files resolves paths in the host's file store.
type Files interface {
	Exists(path string) bool
	// Resolve returns the normalized path of an existing file.
	Resolve(path string) (string, bool)
}

// Granularity is a periodic note period.
type Granularity string

const (
	Day     Granularity = "day"
	Week    Granularity = "week"
	Month   Granularity = "month"
	Quarter Granularity = "quarter"
	Year    Granularity = "year"
)

// Granularities lists every period, finest first.
var Granularities = []Granularity{Day, Week, Month, Quarter, Year}

// PeriodicSettings configures one periodic note series.
type PeriodicSettings struct {
	Enabled bool   `json:"enabled"`
	Folder  string `json:"folder,omitempty"`
	Format  string `json:"format,omitempty"`
}

// PeriodicNotes is the host's periodic note facility.
type PeriodicNotes interface {
	Settings(g Granularity) (PeriodicSettings, bool)
	// Get returns the path of the note for the period containing date.
	Get(g Granularity, date time.Time) (string, bool)
	// Create creates the note for the period containing date and returns its path.
	Create(ctx context.Context, g Granularity, date time.Time) (string, error)
}

// Templates exposes the host's configured template formats.
type Templates interface {
	DateFormat() string
	TimeFormat() string
}

// Layout is the live workspace layout.
type Layout interface {
	Current() workspace.Layout
	Change(l workspace.Layout) error
	// Ready reports whether the host has finished applying a layout.
	Ready() bool
}

// Platform distinguishes the per-platform active workspace pointers.
type Platform string

const (
	Desktop Platform = "desktop"
	Mobile  Platform = "mobile"
)

// Env is the process environment around the host.
type Env interface {
	Platform() Platform
	PrefersDark() bool
	// LivePreviewLoaded reports the editor engine the process started with.
	LivePreviewLoaded() bool
	// Reload restarts the host process.
	Reload() error
}

// Command is a registered host command.
type Command struct {
	ID   string
	Name string
	Run  func(ctx context.Context) error
}

// Commands is the host command and hotkey registry.
type Commands interface {
	Add(cmd Command)
	Remove(id string)
	Hotkeys(id string) []string
	SetHotkeys(id string, keys []string)
	RemoveHotkeys(id string)
}

// Host bundles every collaborator. It is built once and passed to each
// component constructor.
type Host struct {
	Workspaces Workspaces
	Settings   Settings
	Storage    LocalStorage
	Files      Files
	Periodic   PeriodicNotes
	Templates  Templates
	Layout     Layout
	Env        Env
	Commands   Commands
	Events     *event.Dispatcher
}
