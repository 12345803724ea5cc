package picker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/marcus/wsplus/internal/config"
	"github.com/marcus/wsplus/internal/workspace"
)

// Controller applies picker actions to a State through a Backend.
type Controller struct {
	backend Backend
	cfg     *config.Config
	logger  *slog.Logger
}

// NewController creates a Controller.
func NewController(b Backend, cfg *config.Config, logger *slog.Logger) *Controller {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{backend: b, cfg: cfg, logger: logger}
}

// Config returns the configuration the controller acts under.
func (c *Controller) Config() *config.Config { return c.cfg }

// Open returns a fresh state listing kind with the active item selected.
func (c *Controller) Open(kind Kind) *State {
	s := &State{Kind: kind}
	c.Refresh(s)
	for i, m := range s.Matches {
		if m.Active {
			s.Selected = i
			break
		}
	}
	return s
}

// Refresh reloads items from the backend and reapplies the filter, keeping
// the selection in range.
func (c *Controller) Refresh(s *State) {
	items := c.backend.Items(s.Kind)
	for i := range items {
		items[i].Label = workspace.DisplayName(items[i].Name)
	}

	if s.Filter == "" {
		s.Matches = make([]Match, len(items))
		for i, it := range items {
			s.Matches[i] = Match{Item: it}
		}
	} else {
		labels := make([]string, len(items))
		for i, it := range items {
			labels[i] = it.Label
		}
		found := fuzzy.Find(s.Filter, labels)
		s.Matches = make([]Match, len(found))
		for i, f := range found {
			s.Matches[i] = Match{Item: items[f.Index], Indexes: f.MatchedIndexes}
		}
	}
	s.Selected = clamp(s.Selected, 0, len(s.Matches)-1)
}

// SetFilter changes the filter text and resets the selection to the best match.
func (c *Controller) SetFilter(s *State, text string) {
	if text == s.Filter {
		return
	}
	s.Filter = text
	s.Selected = 0
	s.Scroll = 0
	c.Refresh(s)
}

// Move shifts the selection by delta, wrapping at both ends.
func (c *Controller) Move(s *State, delta int) {
	n := len(s.Matches)
	if n == 0 || s.Renaming {
		return
	}
	s.Selected = ((s.Selected+delta)%n + n) % n
}

// Enter commits a rename in progress, saves the typed name when nothing
// matches, or loads the selection.
func (c *Controller) Enter(ctx context.Context, s *State) error {
	if s.Renaming {
		return c.CommitRename(s)
	}
	sel, ok := s.Selection()
	if !ok {
		if strings.TrimSpace(s.Filter) != "" && !c.cfg.SaveOnSwitch {
			return c.SaveAs(s)
		}
		s.Notice = "No match found."
		return nil
	}
	if c.cfg.SaveOnSwitch && s.Kind == Workspaces {
		if err := c.backend.SaveActive(); err != nil {
			return fmt.Errorf("save before switch: %w", err)
		}
	}
	if err := c.backend.Load(ctx, sel.Name); err != nil {
		return err
	}
	c.Close(s)
	return nil
}

// SaveAs saves the live state under the typed name, or the selected name if
// nothing is typed, then closes.
func (c *Controller) SaveAs(s *State) error {
	name := strings.TrimSpace(s.Filter)
	if name == "" {
		sel, ok := s.Selection()
		if !ok {
			return ErrEmptyName
		}
		name = sel.Name
	} else if s.Kind == Modes {
		name = workspace.ModeName(name)
	}
	if err := c.backend.SaveAs(name); err != nil {
		return err
	}
	s.Notice = fmt.Sprintf("Successfully saved %s: %s", s.Kind.Noun(), workspace.DisplayName(name))
	c.Close(s)
	return nil
}

// SaveAndLoad saves the active workspace, then loads the selection.
func (c *Controller) SaveAndLoad(ctx context.Context, s *State) error {
	sel, ok := s.Selection()
	if !ok {
		return ErrNoSelection
	}
	if err := c.backend.SaveActive(); err != nil {
		return fmt.Errorf("save active workspace: %w", err)
	}
	if err := c.backend.Load(ctx, sel.Name); err != nil {
		return err
	}
	c.Close(s)
	return nil
}

// ToggleRename starts renaming the selection, or cancels a rename in progress.
func (c *Controller) ToggleRename(s *State) {
	if s.Renaming {
		s.Renaming = false
		s.RenameText = ""
		return
	}
	sel, ok := s.Selection()
	if !ok {
		return
	}
	s.Renaming = true
	s.RenameText = sel.Label
}

// CommitRename renames the selection to RenameText. An unchanged name just
// leaves rename mode. On error the state stays in rename mode.
func (c *Controller) CommitRename(s *State) error {
	sel, ok := s.Selection()
	if !ok || !s.Renaming {
		return ErrNoSelection
	}
	text := strings.TrimSpace(s.RenameText)
	if text == "" {
		return ErrEmptyName
	}
	newName := text
	if s.Kind == Modes {
		newName = workspace.ModeName(text)
	}
	if newName == sel.Name {
		s.Renaming = false
		s.RenameText = ""
		return nil
	}
	if c.backend.Exists(newName) {
		return fmt.Errorf("rename %q to %q: %w", sel.Name, newName, ErrNameTaken)
	}
	if err := c.backend.Rename(sel.Name, newName); err != nil {
		return err
	}

	s.Renaming = false
	s.RenameText = ""
	c.Refresh(s)
	if i := s.indexOf(newName); i >= 0 {
		s.Selected = i
	}
	return nil
}

// Delete removes the selection, or asks for confirmation first when the
// delete prompt is enabled.
func (c *Controller) Delete(s *State) error {
	sel, ok := s.Selection()
	if !ok {
		return ErrNoSelection
	}
	if c.cfg.ShowDeletePrompt {
		s.Confirm = sel.Name
		return nil
	}
	return c.remove(s, sel.Name)
}

// ConfirmDelete performs the pending delete.
func (c *Controller) ConfirmDelete(s *State) error {
	name := s.Confirm
	s.Confirm = ""
	if name == "" {
		return nil
	}
	return c.remove(s, name)
}

// CancelConfirm drops the pending delete.
func (c *Controller) CancelConfirm(s *State) {
	s.Confirm = ""
}

func (c *Controller) remove(s *State, name string) error {
	prev := s.Selected
	if err := c.backend.Delete(name); err != nil {
		return err
	}
	c.Refresh(s)
	s.Selected = clamp(prev-1, 0, len(s.Matches)-1)
	s.Notice = fmt.Sprintf("Deleted %s: %s", s.Kind.Noun(), workspace.DisplayName(name))
	return nil
}

// Escape backs out of the innermost state: confirmation, then rename, then
// the picker itself.
func (c *Controller) Escape(s *State) {
	switch {
	case s.Confirm != "":
		c.CancelConfirm(s)
	case s.Renaming:
		c.ToggleRename(s)
	default:
		c.Close(s)
	}
}

// Close marks the picker closed and notifies the backend once.
func (c *Controller) Close(s *State) {
	if s.Closed {
		return
	}
	s.Closed = true
	c.backend.Closed()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return min(max(v, lo), hi)
}
