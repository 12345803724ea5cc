package state

import (
	"sync"
	"time"

	"github.com/marcus/wsplus/internal/clock"
	"github.com/marcus/wsplus/internal/host"
)

// DefaultSuppressWindow bounds how long autosave stays suppressed after a load.
const DefaultSuppressWindow = 2500 * time.Millisecond

// Selection is the runtime view of what is active and whether autosave is
// currently suppressed.
type Selection struct {
	workspaces host.Workspaces
	clock      clock.Clock
	window     time.Duration

	mu         sync.Mutex
	suppressed bool
	timer      clock.Timer
	gen        int
}

// NewSelection creates a Selection over the workspace store.
func NewSelection(ws host.Workspaces, c clock.Clock, window time.Duration) *Selection {
	if c == nil {
		c = clock.Real{}
	}
	if window <= 0 {
		window = DefaultSuppressWindow
	}
	return &Selection{workspaces: ws, clock: c, window: window}
}

// SuppressAutosave blocks autosave until the window elapses. Calling it again
// restarts the window.
func (s *Selection) SuppressAutosave() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.suppressed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(s.window, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen == gen {
			s.suppressed = false
			s.timer = nil
		}
	})
}

// Suppressed reports whether autosave is currently blocked.
func (s *Selection) Suppressed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.suppressed
}

// ActiveWorkspace mirrors the store's active pointer.
func (s *Selection) ActiveWorkspace() string {
	return s.workspaces.Active()
}

// ActiveMode returns the mode linked from the active workspace, or "".
func (s *Selection) ActiveMode() string {
	ws := s.workspaces.Get(s.workspaces.Active())
	if ws == nil || ws.Meta == nil {
		return ""
	}
	return ws.Meta.Mode
}
