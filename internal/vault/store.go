package vault

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/marcus/wsplus/internal/clock"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/workspace"
)

const schema = `
CREATE TABLE IF NOT EXISTS workspaces (
    name TEXT PRIMARY KEY,
    data TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

const (
	kvActive  = "active"
	kvEnabled = "enabled"
)

// Store is the workspace store backed by sqlite. Workspaces are held in
// memory and written back as a whole on Persist.
type Store struct {
	db     *sql.DB
	layout host.Layout
	clock  clock.Clock

	mu      sync.Mutex
	items   map[string]*workspace.Workspace
	updated map[string]time.Time
	active  string
	enabled bool
}

// OpenStore opens (creating if needed) the database at path and loads every
// workspace.
func OpenStore(path string, layout host.Layout, c clock.Clock) (*Store, error) {
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if c == nil {
		c = clock.Real{}
	}
	s := &Store{
		db:      db,
		layout:  layout,
		clock:   c,
		items:   map[string]*workspace.Workspace{},
		updated: map[string]time.Time{},
		enabled: true,
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT name, data, updated_at FROM workspaces`)
	if err != nil {
		return fmt.Errorf("query workspaces: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var name, data, updatedAt string
		if err := rows.Scan(&name, &data, &updatedAt); err != nil {
			return fmt.Errorf("scan workspace: %w", err)
		}
		ws := &workspace.Workspace{}
		if err := json.Unmarshal([]byte(data), ws); err != nil {
			return fmt.Errorf("decode workspace %q: %w", name, err)
		}
		s.items[name] = ws
		if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
			s.updated[name] = t
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	kv, err := s.readKV()
	if err != nil {
		return err
	}
	s.active = kv[kvActive]
	if v, ok := kv[kvEnabled]; ok {
		s.enabled = v != "false"
	}
	return nil
}

func (s *Store) readKV() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM kv`)
	if err != nil {
		return nil, fmt.Errorf("query kv: %w", err)
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

func (s *Store) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled turns the workspaces feature on or off. It takes effect on the
// next Persist.
func (s *Store) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enabled = enabled
}

func (s *Store) Get(name string) *workspace.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[name]
}

func (s *Store) Set(name string, ws *workspace.Workspace) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[name] = ws
	s.updated[name] = s.clock.Now()
}

func (s *Store) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, name)
	delete(s.updated, name)
}

func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Sorted(maps.Keys(s.items))
}

func (s *Store) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Store) SetActive(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = name
}

// UpdatedAt returns when name was last written.
func (s *Store) UpdatedAt(name string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.updated[name]
	return t, ok
}

// Persist replaces the database contents with the in-memory store.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM workspaces`); err != nil {
		return fmt.Errorf("clear workspaces: %w", err)
	}
	for name, ws := range s.items {
		data, err := json.Marshal(ws)
		if err != nil {
			return fmt.Errorf("encode workspace %q: %w", name, err)
		}
		updated, ok := s.updated[name]
		if !ok {
			updated = s.clock.Now()
			s.updated[name] = updated
		}
		if _, err := tx.Exec(`INSERT INTO workspaces (name, data, updated_at) VALUES (?, ?, ?)`,
			name, string(data), updated.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("write workspace %q: %w", name, err)
		}
	}
	enabled := "true"
	if !s.enabled {
		enabled = "false"
	}
	for k, v := range map[string]string{kvActive: s.active, kvEnabled: enabled} {
		if _, err := tx.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return fmt.Errorf("write %s: %w", k, err)
		}
	}
	return tx.Commit()
}

// SaveWorkspace stores a copy of the live layout under name with no metadata
// and makes it active.
func (s *Store) SaveWorkspace(name string) error {
	live, err := s.layout.Current().Clone()
	if err != nil {
		return fmt.Errorf("copy live layout: %w", err)
	}
	s.Set(name, workspace.New(live))
	s.SetActive(name)
	return s.Persist()
}

// DeleteWorkspace removes name. Deleting the active workspace clears the
// pointer.
func (s *Store) DeleteWorkspace(name string) error {
	if s.Get(name) == nil {
		return fmt.Errorf("delete %q: %w", name, workspace.ErrNotFound)
	}
	s.Remove(name)
	if s.Active() == name {
		s.SetActive("")
	}
	return s.Persist()
}

// LoadWorkspace makes the stored layout for name live.
func (s *Store) LoadWorkspace(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ws := s.Get(name)
	if ws == nil {
		return fmt.Errorf("load %q: %w", name, workspace.ErrNotFound)
	}
	l, err := ws.Layout.Clone()
	if err != nil {
		return fmt.Errorf("copy layout %q: %w", name, err)
	}
	if err := s.layout.Change(l); err != nil {
		return fmt.Errorf("apply layout %q: %w", name, err)
	}
	s.SetActive(name)
	return s.Persist()
}
