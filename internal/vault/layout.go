package vault

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/marcus/wsplus/internal/workspace"
)

// LiveLayout is the current pane layout kept in layout.json.
type LiveLayout struct {
	path string

	mu        sync.Mutex
	live      workspace.Layout
	lastWrite uint64
}

func openLayout(path string) (*LiveLayout, error) {
	l := &LiveLayout{path: path}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// DefaultLayout is the layout of a fresh vault: an empty editor and a file
// explorer in the left sidebar.
func DefaultLayout() workspace.Layout {
	explorer := workspace.NewLeaf(newID(), "")
	explorer["state"] = map[string]any{"type": "file-explorer", "state": map[string]any{}}
	return workspace.Layout{
		workspace.RegionMain: workspace.NewContainer(newID(), workspace.NodeSplit,
			workspace.NewContainer(newID(), workspace.NodeTabs, workspace.NewLeaf(newID(), ""))),
		"left": workspace.NewContainer(newID(), workspace.NodeSplit,
			workspace.NewContainer(newID(), workspace.NodeTabs, explorer)),
	}
}

// newID returns a 16 hex digit leaf id.
func newID() string {
	id := uuid.New()
	return fmt.Sprintf("%x", id[:8])
}

// Reload re-reads layout.json. A missing file yields DefaultLayout.
func (l *LiveLayout) Reload() error {
	live := workspace.Layout{}
	ok, err := readJSON(l.path, &live)
	if err != nil {
		return fmt.Errorf("read %s: %w", l.path, err)
	}
	if !ok {
		live = DefaultLayout()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.live = live
	return nil
}

// Current returns a copy of the live layout.
func (l *LiveLayout) Current() workspace.Layout {
	l.mu.Lock()
	defer l.mu.Unlock()
	c, err := l.live.Clone()
	if err != nil {
		return l.live
	}
	return c
}

// Change replaces the live layout and writes it to disk.
func (l *LiveLayout) Change(nl workspace.Layout) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	h, err := writeJSON(l.path, nl)
	if err != nil {
		return fmt.Errorf("write %s: %w", l.path, err)
	}
	l.live = nl
	l.lastWrite = h
	return nil
}

// Ready is always true; the file is applied synchronously.
func (l *LiveLayout) Ready() bool { return true }

func (l *LiveLayout) ownWrite() bool {
	l.mu.Lock()
	last := l.lastWrite
	l.mu.Unlock()
	return last != 0 && fileHash(l.path) == last
}
