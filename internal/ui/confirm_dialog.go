package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/wsplus/internal/styles"
)

// DefaultDialogWidth is the dialog width when none is set.
const DefaultDialogWidth = 50

// Result is the outcome of a key press on a dialog.
type Result int

const (
	// Pending means the dialog is still open.
	Pending Result = iota
	// Accepted means the user confirmed.
	Accepted
	// Cancelled means the user backed out. Cancelling has no side effects.
	Cancelled
)

// ConfirmDialog asks a yes/no question. The confirm button has focus first.
type ConfirmDialog struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Danger       bool
	Width        int

	cancelFocused bool
}

// NewConfirmDialog creates a dialog with default labels.
func NewConfirmDialog(title, message string) *ConfirmDialog {
	return &ConfirmDialog{
		Title:        title,
		Message:      message,
		ConfirmLabel: "Confirm",
		CancelLabel:  "Cancel",
		Width:        DefaultDialogWidth,
	}
}

// NewDeleteDialog creates the delete confirmation shown by the picker.
func NewDeleteDialog(kind, name string) *ConfirmDialog {
	d := NewConfirmDialog(
		strings.ToUpper(kind[:1])+kind[1:]+" Delete Confirmation",
		"Do you really want to delete the '"+name+"' "+kind+"?",
	)
	d.ConfirmLabel = "Delete"
	d.Danger = true
	return d
}

// Focused returns the label of the focused button.
func (d *ConfirmDialog) Focused() string {
	if d.cancelFocused {
		return d.CancelLabel
	}
	return d.ConfirmLabel
}

// HandleKey updates focus or resolves the dialog.
func (d *ConfirmDialog) HandleKey(msg tea.KeyMsg) Result {
	switch msg.String() {
	case "tab", "shift+tab", "left", "right", "h", "l":
		d.cancelFocused = !d.cancelFocused
	case "enter":
		if d.cancelFocused {
			return Cancelled
		}
		return Accepted
	case "y", "Y":
		return Accepted
	case "n", "N", "esc", "q":
		return Cancelled
	}
	return Pending
}

// Render draws the dialog box.
func (d *ConfirmDialog) Render() string {
	width := d.Width
	if width <= 0 {
		width = DefaultDialogWidth
	}
	inner := width - 4

	confirm, cancel := styles.ButtonNormal, styles.ButtonNormal
	if d.cancelFocused {
		cancel = styles.ButtonFocused
	} else if d.Danger {
		confirm = styles.ButtonDanger
	} else {
		confirm = styles.ButtonFocused
	}
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		confirm.Render(d.ConfirmLabel), "  ", cancel.Render(d.CancelLabel))

	body := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render(d.Title),
		"",
		styles.Body.Width(inner).Render(d.Message),
		"",
		buttons,
	)
	box := styles.ModalBox
	if d.Danger {
		box = box.BorderForeground(styles.Error)
	}
	return box.Width(width - 2).Render(body)
}
