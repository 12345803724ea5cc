package picker

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/marcus/wsplus/internal/config"
	"github.com/marcus/wsplus/internal/workspace"
)

type fakeBackend struct {
	names      []string
	active     string
	activeMode string
	desc       map[string]string

	calls  []string
	closed int

	saveErr   error
	loadErr   error
	renameErr error
	deleteErr error
}

func newBackend(names ...string) *fakeBackend {
	return &fakeBackend{names: names, desc: map[string]string{}}
}

func (b *fakeBackend) Items(kind Kind) []Item {
	sorted := slices.Sorted(slices.Values(b.names))
	var out []Item
	for _, n := range sorted {
		if workspace.IsMode(n) != (kind == Modes) {
			continue
		}
		active := n == b.active
		if kind == Modes {
			active = n == b.activeMode
		}
		out = append(out, Item{Name: n, Description: b.desc[n], Active: active})
	}
	return out
}

func (b *fakeBackend) Exists(name string) bool { return slices.Contains(b.names, name) }

func (b *fakeBackend) SaveAs(name string) error {
	b.calls = append(b.calls, "save:"+name)
	if b.saveErr != nil {
		return b.saveErr
	}
	if !b.Exists(name) {
		b.names = append(b.names, name)
	}
	return nil
}

func (b *fakeBackend) SaveActive() error {
	b.calls = append(b.calls, "save-active")
	return b.saveErr
}

func (b *fakeBackend) Load(_ context.Context, name string) error {
	b.calls = append(b.calls, "load:"+name)
	return b.loadErr
}

func (b *fakeBackend) Delete(name string) error {
	b.calls = append(b.calls, "delete:"+name)
	if b.deleteErr != nil {
		return b.deleteErr
	}
	b.names = slices.DeleteFunc(b.names, func(n string) bool { return n == name })
	return nil
}

func (b *fakeBackend) Rename(oldName, newName string) error {
	b.calls = append(b.calls, "rename:"+oldName+">"+newName)
	if b.renameErr != nil {
		return b.renameErr
	}
	i := slices.Index(b.names, oldName)
	b.names[i] = newName
	return nil
}

func (b *fakeBackend) Closed() { b.closed++ }

func (b *fakeBackend) assertCalls(t *testing.T, want ...string) {
	t.Helper()
	if !slices.Equal(b.calls, want) {
		t.Fatalf("calls = %v, want %v", b.calls, want)
	}
}

func newController(b *fakeBackend, mutate ...func(*config.Config)) *Controller {
	cfg := config.Default()
	for _, fn := range mutate {
		fn(cfg)
	}
	return NewController(b, cfg, nil)
}

func labels(s *State) []string {
	out := make([]string, len(s.Matches))
	for i, m := range s.Matches {
		out[i] = m.Label
	}
	return out
}

func TestOpen_SelectsActiveAndSplitsKinds(t *testing.T) {
	b := newBackend("Daily", "Inbox", "Research", "mode: Writing", "mode: Focus")
	b.active = "Inbox"
	b.activeMode = "mode: Writing"
	c := newController(b)

	s := c.Open(Workspaces)
	if got := labels(s); !slices.Equal(got, []string{"Daily", "Inbox", "Research"}) {
		t.Errorf("workspace labels = %v", got)
	}
	if sel, _ := s.Selection(); sel.Name != "Inbox" {
		t.Errorf("selected %q, want the active workspace", sel.Name)
	}

	s = c.Open(Modes)
	if got := labels(s); !slices.Equal(got, []string{"Focus", "Writing"}) {
		t.Errorf("mode labels = %v", got)
	}
	if sel, _ := s.Selection(); sel.Name != "mode: Writing" {
		t.Errorf("selected %q, want the active mode", sel.Name)
	}
}

func TestFilterAndMove(t *testing.T) {
	b := newBackend("Daily", "Inbox", "Research")
	c := newController(b)
	s := c.Open(Workspaces)

	c.SetFilter(s, "inb")
	if got := labels(s); !slices.Equal(got, []string{"Inbox"}) {
		t.Fatalf("filtered = %v", got)
	}
	if !slices.Equal(s.Matches[0].Indexes, []int{0, 1, 2}) {
		t.Errorf("indexes = %v", s.Matches[0].Indexes)
	}

	c.SetFilter(s, "")
	c.Move(s, -1)
	if s.Selected != 2 {
		t.Errorf("up from top = %d, want wrap to 2", s.Selected)
	}
	c.Move(s, 1)
	if s.Selected != 0 {
		t.Errorf("down from bottom = %d, want wrap to 0", s.Selected)
	}

	c.SetFilter(s, "zzz")
	c.Move(s, 1)
	if _, ok := s.Selection(); ok {
		t.Error("selection with no matches")
	}
}

func TestEnter(t *testing.T) {
	t.Run("loads selection and closes", func(t *testing.T) {
		b := newBackend("Daily", "Inbox")
		c := newController(b)
		s := c.Open(Workspaces)
		c.Move(s, 1)

		if err := c.Enter(context.Background(), s); err != nil {
			t.Fatal(err)
		}
		b.assertCalls(t, "load:Inbox")
		if !s.Closed || b.closed != 1 {
			t.Errorf("closed=%v backend closed %d times", s.Closed, b.closed)
		}
	})

	t.Run("save on switch saves active first", func(t *testing.T) {
		b := newBackend("Daily", "Inbox")
		c := newController(b, func(cfg *config.Config) { cfg.SaveOnSwitch = true })
		s := c.Open(Workspaces)
		if err := c.Enter(context.Background(), s); err != nil {
			t.Fatal(err)
		}
		b.assertCalls(t, "save-active", "load:Daily")
	})

	t.Run("no match saves typed name", func(t *testing.T) {
		b := newBackend("Daily")
		c := newController(b)
		s := c.Open(Workspaces)
		c.SetFilter(s, "Project X")
		if err := c.Enter(context.Background(), s); err != nil {
			t.Fatal(err)
		}
		b.assertCalls(t, "save:Project X")
		if !s.Closed {
			t.Error("picker left open")
		}
	})

	t.Run("no match with save on switch does nothing", func(t *testing.T) {
		b := newBackend("Daily")
		c := newController(b, func(cfg *config.Config) { cfg.SaveOnSwitch = true })
		s := c.Open(Workspaces)
		c.SetFilter(s, "Project X")
		if err := c.Enter(context.Background(), s); err != nil {
			t.Fatal(err)
		}
		b.assertCalls(t)
		if s.Closed || s.Notice == "" {
			t.Errorf("closed=%v notice=%q", s.Closed, s.Notice)
		}
	})

	t.Run("load error keeps picker open", func(t *testing.T) {
		b := newBackend("Daily")
		b.loadErr = errors.New("boom")
		c := newController(b)
		s := c.Open(Workspaces)
		if err := c.Enter(context.Background(), s); !errors.Is(err, b.loadErr) {
			t.Fatalf("err = %v", err)
		}
		if s.Closed {
			t.Error("closed after failed load")
		}
	})
}

func TestSaveAs(t *testing.T) {
	b := newBackend("Daily", "mode: Writing")
	c := newController(b)

	s := c.Open(Workspaces)
	if err := c.SaveAs(s); err != nil {
		t.Fatal(err)
	}
	s = c.Open(Modes)
	c.SetFilter(s, "Focus")
	if err := c.SaveAs(s); err != nil {
		t.Fatal(err)
	}
	b.assertCalls(t, "save:Daily", "save:mode: Focus")
	if s.Notice != "Successfully saved mode: Focus" {
		t.Errorf("notice = %q", s.Notice)
	}

	empty := c.Open(Workspaces)
	b.names = nil
	c.Refresh(empty)
	if err := c.SaveAs(empty); !errors.Is(err, ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
}

func TestSaveAndLoad(t *testing.T) {
	b := newBackend("Daily", "Inbox")
	b.active = "Daily"
	c := newController(b)
	s := c.Open(Workspaces)
	c.Move(s, 1)

	if err := c.SaveAndLoad(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	b.assertCalls(t, "save-active", "load:Inbox")

	b.calls = nil
	b.saveErr = errors.New("disk")
	s = c.Open(Workspaces)
	if err := c.SaveAndLoad(context.Background(), s); !errors.Is(err, b.saveErr) {
		t.Fatalf("err = %v", err)
	}
	b.assertCalls(t, "save-active")
}

func TestRename(t *testing.T) {
	b := newBackend("Daily", "Inbox", "Research")
	c := newController(b)
	s := c.Open(Workspaces)
	c.Move(s, 2)

	c.ToggleRename(s)
	if !s.Renaming || s.RenameText != "Research" {
		t.Fatalf("renaming=%v text=%q", s.Renaming, s.RenameText)
	}
	c.Move(s, 1)
	if s.Selected != 2 {
		t.Error("selection moved while renaming")
	}

	s.RenameText = "Inbox"
	if err := c.CommitRename(s); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("err = %v, want ErrNameTaken", err)
	}
	if !s.Renaming {
		t.Error("failed rename left rename mode")
	}

	s.RenameText = "   "
	if err := c.CommitRename(s); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("err = %v, want ErrEmptyName", err)
	}

	s.RenameText = " Archive "
	if err := c.Enter(context.Background(), s); err != nil {
		t.Fatal(err)
	}
	b.assertCalls(t, "rename:Research>Archive")
	if s.Renaming {
		t.Error("still renaming after commit")
	}
	if sel, _ := s.Selection(); sel.Name != "Archive" {
		t.Errorf("selected %q after rename", sel.Name)
	}
	if s.Closed {
		t.Error("rename closed the picker")
	}
}

func TestRename_UnchangedAndModes(t *testing.T) {
	b := newBackend("mode: Draft")
	c := newController(b)
	s := c.Open(Modes)

	c.ToggleRename(s)
	if s.RenameText != "Draft" {
		t.Fatalf("rename text = %q, want label", s.RenameText)
	}
	if err := c.CommitRename(s); err != nil {
		t.Fatal(err)
	}
	b.assertCalls(t)

	c.ToggleRename(s)
	s.RenameText = "Final"
	if err := c.CommitRename(s); err != nil {
		t.Fatal(err)
	}
	b.assertCalls(t, "rename:mode: Draft>mode: Final")
}

func TestRename_BackendError(t *testing.T) {
	b := newBackend("Daily")
	b.renameErr = errors.New("persist failed")
	c := newController(b)
	s := c.Open(Workspaces)
	c.ToggleRename(s)
	s.RenameText = "Weekly"

	if err := c.CommitRename(s); !errors.Is(err, b.renameErr) {
		t.Fatalf("err = %v", err)
	}
	if !s.Renaming || s.RenameText != "Weekly" {
		t.Error("typed name lost after failure")
	}
}

func TestDelete(t *testing.T) {
	t.Run("with prompt", func(t *testing.T) {
		b := newBackend("Daily", "Inbox", "Research")
		c := newController(b)
		s := c.Open(Workspaces)
		c.Move(s, 2)

		if err := c.Delete(s); err != nil {
			t.Fatal(err)
		}
		if s.Confirm != "Research" {
			t.Fatalf("confirm = %q", s.Confirm)
		}
		b.assertCalls(t)

		c.Escape(s)
		if s.Confirm != "" || s.Closed {
			t.Fatal("escape should cancel the confirmation only")
		}
		b.assertCalls(t)

		_ = c.Delete(s)
		if err := c.ConfirmDelete(s); err != nil {
			t.Fatal(err)
		}
		b.assertCalls(t, "delete:Research")
		if s.Selected != 1 {
			t.Errorf("selected = %d, want previous row", s.Selected)
		}
	})

	t.Run("without prompt", func(t *testing.T) {
		b := newBackend("Daily", "Inbox")
		c := newController(b, func(cfg *config.Config) { cfg.ShowDeletePrompt = false })
		s := c.Open(Workspaces)
		if err := c.Delete(s); err != nil {
			t.Fatal(err)
		}
		b.assertCalls(t, "delete:Daily")
		if s.Selected != 0 || len(s.Matches) != 1 {
			t.Errorf("selected=%d matches=%d", s.Selected, len(s.Matches))
		}
	})

	t.Run("nothing selected", func(t *testing.T) {
		c := newController(newBackend())
		s := c.Open(Workspaces)
		if err := c.Delete(s); !errors.Is(err, ErrNoSelection) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestEscape(t *testing.T) {
	b := newBackend("Daily")
	c := newController(b)
	s := c.Open(Workspaces)

	c.ToggleRename(s)
	s.RenameText = "changed"
	c.Escape(s)
	if s.Renaming || s.RenameText != "" || s.Closed {
		t.Fatalf("escape from rename: %+v", s)
	}

	c.Escape(s)
	c.Escape(s)
	if !s.Closed || b.closed != 1 {
		t.Errorf("closed=%v, backend notified %d times", s.Closed, b.closed)
	}
}
