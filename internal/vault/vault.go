// Package vault is a filesystem host: a directory of notes with the
// workspace store, settings, live layout and local storage kept under
// <root>/.wsplus.
package vault

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/marcus/wsplus/internal/clock"
	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/host"
)

// Dir is the vault metadata directory name.
const Dir = ".wsplus"

// File names inside Dir.
const (
	DBFile        = "workspaces.db"
	AppFile       = "app.json"
	LayoutFile    = "layout.json"
	StorageFile   = "local-storage.json"
	HotkeysFile   = "hotkeys.json"
	PeriodicFile  = "periodic-notes.json"
	TemplatesFile = "templates.json"
)

// Options configures Open.
type Options struct {
	Logger   *slog.Logger
	Clock    clock.Clock
	Platform host.Platform
	// PrefersDark overrides the terminal background query.
	PrefersDark func() bool
}

// Vault is an opened vault.
type Vault struct {
	Root string

	Store     *Store
	Settings  *AppSettings
	Layout    *LiveLayout
	Storage   *LocalStorage
	Files     *Files
	Periodic  *Periodic
	Templates *Templates
	Commands  *Commands
	Env       *Env

	logger *slog.Logger
	events *event.Dispatcher
	host   *host.Host
}

// Open opens the vault at root, creating the metadata directory if needed.
func Open(root string, opts Options) (*Vault, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("open vault: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open vault: %s is not a directory", abs)
	}
	if err := os.MkdirAll(filepath.Join(abs, Dir), 0755); err != nil {
		return nil, fmt.Errorf("create %s: %w", Dir, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	v := &Vault{Root: abs, logger: logger, events: event.NewWithLogger(logger)}
	v.Files = &Files{root: abs}

	if v.Settings, err = openSettings(v.Path(AppFile), logger); err != nil {
		return nil, err
	}
	if v.Layout, err = openLayout(v.Path(LayoutFile)); err != nil {
		return nil, err
	}
	if v.Storage, err = openStorage(v.Path(StorageFile)); err != nil {
		return nil, err
	}
	if v.Periodic, err = openPeriodic(v.Path(PeriodicFile), v.Files); err != nil {
		return nil, err
	}
	if v.Templates, err = openTemplates(v.Path(TemplatesFile)); err != nil {
		return nil, err
	}
	if v.Commands, err = openCommands(v.Path(HotkeysFile), logger); err != nil {
		return nil, err
	}
	v.Env = newEnv(opts.Platform, opts.PrefersDark, v.Settings, v.Layout, logger)
	if v.Store, err = OpenStore(v.Path(DBFile), v.Layout, opts.Clock); err != nil {
		return nil, err
	}

	v.host = &host.Host{
		Workspaces: v.Store,
		Settings:   v.Settings,
		Storage:    v.Storage,
		Files:      v.Files,
		Periodic:   v.Periodic,
		Templates:  v.Templates,
		Layout:     v.Layout,
		Env:        v.Env,
		Commands:   v.Commands,
		Events:     v.events,
	}
	return v, nil
}

// Path returns the path of a file inside the metadata directory.
func (v *Vault) Path(name string) string {
	return filepath.Join(v.Root, Dir, name)
}

// StateDir is where plugin-local state lives.
func (v *Vault) StateDir() string { return filepath.Join(v.Root, Dir) }

// Host returns the host view of the vault. The same Host is returned on
// every call, so wrappers installed on it stick.
func (v *Vault) Host() *host.Host { return v.host }

// Close releases the database.
func (v *Vault) Close() error {
	v.events.Close()
	return v.Store.Close()
}
