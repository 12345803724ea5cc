// Package state holds plugin-local state: the persisted global settings
// baseline and per-platform active workspace (state.json), and the runtime
// selection state that gates autosave.
package state

import (
	"encoding/json"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/marcus/wsplus/internal/host"
)

// State is the persisted part of the selection state.
type State struct {
	// GlobalSettings is the pre-mode host settings baseline.
	GlobalSettings map[string]any `json:"globalSettings,omitempty"`

	ActiveWorkspaceDesktop string `json:"activeWorkspaceDesktop,omitempty"`
	ActiveWorkspaceMobile  string `json:"activeWorkspaceMobile,omitempty"`
}

// Store guards State and writes it to disk on every change.
type Store struct {
	mu      sync.RWMutex
	path    string
	current *State
}

// Open loads state.json from dir.
func Open(dir string) (*Store, error) {
	s := &Store{path: filepath.Join(dir, "state.json")}
	if err := s.Load(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewMemory returns a store that never touches disk.
func NewMemory() *Store {
	return &Store{current: &State{}}
}

// Load reads state from disk.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &State{}
	if s.path == "" {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil // no state file yet, use defaults
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, s.current)
}

// Save writes state to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil || s.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s.current, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// GlobalSettings returns a copy of the baseline and whether one was captured.
func (s *Store) GlobalSettings() (map[string]any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil || s.current.GlobalSettings == nil {
		return nil, false
	}
	return maps.Clone(s.current.GlobalSettings), true
}

// SetGlobalSettings replaces the baseline.
func (s *Store) SetGlobalSettings(settings map[string]any) error {
	s.mu.Lock()
	if s.current == nil {
		s.current = &State{}
	}
	s.current.GlobalSettings = maps.Clone(settings)
	s.mu.Unlock()
	return s.Save()
}

// ActiveWorkspace returns the last active workspace on platform p.
func (s *Store) ActiveWorkspace(p host.Platform) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return ""
	}
	if p == host.Mobile {
		return s.current.ActiveWorkspaceMobile
	}
	return s.current.ActiveWorkspaceDesktop
}

// SetActiveWorkspace remembers name as the active workspace on platform p.
func (s *Store) SetActiveWorkspace(p host.Platform, name string) error {
	s.mu.Lock()
	if s.current == nil {
		s.current = &State{}
	}
	if p == host.Mobile {
		s.current.ActiveWorkspaceMobile = name
	} else {
		s.current.ActiveWorkspaceDesktop = name
	}
	s.mu.Unlock()
	return s.Save()
}
