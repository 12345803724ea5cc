package picker

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(Model)
	}
	return m, cmd
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestModel_TypingFiltersAndEnterLoads(t *testing.T) {
	b := newBackend("Daily", "Inbox", "Research")
	m := New(context.Background(), newController(b), Workspaces)

	m, _ = send(t, m, runes("i"), runes("n"), runes("b"))
	if m.State().Filter != "inb" || len(m.State().Matches) != 1 {
		t.Fatalf("filter=%q matches=%d", m.State().Filter, len(m.State().Matches))
	}

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	b.assertCalls(t, "load:Inbox")
	if !isQuit(cmd) {
		t.Error("enter after load should quit")
	}
	if m.View() != "" {
		t.Error("closed picker still renders")
	}
}

func TestModel_Navigation(t *testing.T) {
	b := newBackend("Daily", "Inbox", "Research")
	m := New(context.Background(), newController(b), Workspaces)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyDown}, tea.KeyMsg{Type: tea.KeyCtrlN})
	if m.State().Selected != 2 {
		t.Fatalf("selected = %d", m.State().Selected)
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlP}, tea.KeyMsg{Type: tea.KeyUp}, tea.KeyMsg{Type: tea.KeyUp})
	if m.State().Selected != 2 {
		t.Errorf("selected = %d, want wrap to 2", m.State().Selected)
	}
}

func TestModel_RenameFlow(t *testing.T) {
	b := newBackend("Daily", "Research")
	m := New(context.Background(), newController(b), Workspaces)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	if !m.State().Renaming {
		t.Fatal("ctrl+r did not start rename")
	}
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlU}, runes("Weekly"))
	if m.State().RenameText != "Weekly" {
		t.Fatalf("rename text = %q", m.State().RenameText)
	}
	if m.State().Filter != "" {
		t.Error("rename typing leaked into the filter")
	}

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	b.assertCalls(t, "rename:Daily>Weekly")
	if m.State().Renaming || isQuit(cmd) {
		t.Error("rename should return to the list")
	}
	if m.Err() != nil {
		t.Errorf("err = %v", m.Err())
	}
}

func TestModel_RenameTakenShowsError(t *testing.T) {
	b := newBackend("Daily", "Research")
	m := New(context.Background(), newController(b), Workspaces)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR}, tea.KeyMsg{Type: tea.KeyCtrlU}, runes("Research"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.Err() == nil || !m.State().Renaming {
		t.Fatalf("err=%v renaming=%v", m.Err(), m.State().Renaming)
	}
	if !strings.Contains(m.View(), ErrNameTaken.Error()) {
		t.Error("view does not show the error")
	}
}

func TestModel_DeleteWithConfirmation(t *testing.T) {
	b := newBackend("Daily", "Research")
	m := New(context.Background(), newController(b), Workspaces)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlD})
	if !strings.Contains(m.View(), "Workspace Delete Confirmation") {
		t.Fatal("confirmation dialog not shown")
	}
	b.assertCalls(t)

	m, _ = send(t, m, runes("n"))
	b.assertCalls(t)
	if m.State().Confirm != "" {
		t.Fatal("cancel left a pending delete")
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlD}, runes("y"))
	b.assertCalls(t, "delete:Daily")
	if len(m.State().Matches) != 1 {
		t.Errorf("matches = %d", len(m.State().Matches))
	}
}

func TestModel_EscapeQuits(t *testing.T) {
	b := newBackend("Daily")
	m := New(context.Background(), newController(b), Workspaces)

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !isQuit(cmd) || !m.State().Closed || b.closed != 1 {
		t.Errorf("quit=%v closed=%v notified=%d", isQuit(cmd), m.State().Closed, b.closed)
	}
}

func TestModel_EmptyStateHint(t *testing.T) {
	b := newBackend("Daily")
	m := New(context.Background(), newController(b), Modes)

	m, _ = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 40}, runes("zzz"))
	view := m.View()
	if !strings.Contains(view, "No match found. Shift+Enter to save as new mode.") {
		t.Errorf("empty-state hint missing:\n%s", view)
	}
}

func TestEnsureVisible(t *testing.T) {
	tests := []struct {
		cursor, scroll, want int
	}{
		{0, 0, 0},
		{9, 0, 0},
		{10, 0, 1},
		{3, 5, 3},
		{14, 5, 5},
	}
	for _, tt := range tests {
		if got := ensureVisible(tt.cursor, tt.scroll, maxVisible); got != tt.want {
			t.Errorf("ensureVisible(%d, %d) = %d, want %d", tt.cursor, tt.scroll, got, tt.want)
		}
	}
}
