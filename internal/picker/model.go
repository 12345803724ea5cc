package picker

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcus/wsplus/internal/keymap"
	"github.com/marcus/wsplus/internal/ui"
	"github.com/marcus/wsplus/internal/workspace"
)

const maxVisible = 10

// Model is the bubbletea front end for a Controller.
type Model struct {
	ctx   context.Context
	ctl   *Controller
	state *State
	keys  keymap.Picker

	filter textinput.Model
	rename textinput.Model
	dialog *ui.ConfirmDialog

	width  int
	height int
	err    error
}

// New creates a picker model listing kind.
func New(ctx context.Context, ctl *Controller, kind Kind) Model {
	filter := textinput.New()
	filter.Placeholder = "Type " + kind.Noun() + " name..."
	filter.Prompt = "› "
	filter.CharLimit = 120
	filter.Focus()

	rename := textinput.New()
	rename.Prompt = ""
	rename.CharLimit = 120

	return Model{
		ctx:    ctx,
		ctl:    ctl,
		state:  ctl.Open(kind),
		keys:   keymap.DefaultPicker(),
		filter: filter,
		rename: rename,
	}
}

// State returns the current picker state.
func (m Model) State() *State { return m.state }

// Err returns the error from the last action, if any.
func (m Model) Err() error { return m.err }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m.forward(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := m.state
	if m.dialog != nil {
		switch m.dialog.HandleKey(msg) {
		case ui.Accepted:
			m.dialog = nil
			m.err = m.ctl.ConfirmDelete(s)
		case ui.Cancelled:
			m.dialog = nil
			m.ctl.CancelConfirm(s)
		}
		return m, nil
	}

	m.err = nil
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctl.Close(s)
	case key.Matches(msg, m.keys.Back):
		m.ctl.Escape(s)
	case key.Matches(msg, m.keys.Up):
		m.ctl.Move(s, -1)
	case key.Matches(msg, m.keys.Down):
		m.ctl.Move(s, 1)
	case key.Matches(msg, m.keys.Rename):
		m.ctl.ToggleRename(s)
	case key.Matches(msg, m.keys.SaveAndLoad):
		m.err = m.ctl.SaveAndLoad(m.ctx, s)
	case key.Matches(msg, m.keys.SaveAs):
		m.err = m.ctl.SaveAs(s)
	case key.Matches(msg, m.keys.Delete):
		m.err = m.ctl.Delete(s)
	case key.Matches(msg, m.keys.Load):
		m.err = m.ctl.Enter(m.ctx, s)
	default:
		return m.forward(msg)
	}
	return m.sync()
}

// forward sends msg to the focused input and feeds the result back into the
// state.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.state.Renaming {
		m.rename, cmd = m.rename.Update(msg)
		m.state.RenameText = m.rename.Value()
		return m, cmd
	}
	m.filter, cmd = m.filter.Update(msg)
	m.ctl.SetFilter(m.state, m.filter.Value())
	m.state.Scroll = ensureVisible(m.state.Selected, m.state.Scroll, maxVisible)
	return m, cmd
}

// sync aligns the inputs and dialog with the state after an action.
func (m Model) sync() (tea.Model, tea.Cmd) {
	s := m.state
	if s.Closed {
		return m, tea.Quit
	}
	if s.Confirm != "" && m.dialog == nil {
		m.dialog = ui.NewDeleteDialog(s.Kind.Noun(), workspace.DisplayName(s.Confirm))
	}
	if s.Renaming && !m.rename.Focused() {
		m.rename.SetValue(s.RenameText)
		m.rename.CursorEnd()
		m.filter.Blur()
		cmd := m.rename.Focus()
		return m, cmd
	}
	if !s.Renaming && m.rename.Focused() {
		m.rename.Blur()
		m.rename.SetValue("")
		cmd := m.filter.Focus()
		return m, cmd
	}
	s.Scroll = ensureVisible(s.Selected, s.Scroll, maxVisible)
	return m, nil
}

// ensureVisible adjusts scroll so cursor stays within the visible rows.
func ensureVisible(cursor, scroll, visible int) int {
	if cursor < scroll {
		return cursor
	}
	if cursor >= scroll+visible {
		return cursor - visible + 1
	}
	return scroll
}
