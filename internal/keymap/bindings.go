// Package keymap defines the picker key bindings. Terminals cannot report
// every modifier combination the picker documents, so each binding also
// carries a ctrl alias.
package keymap

import "github.com/charmbracelet/bubbles/key"

// Picker holds the picker bindings.
type Picker struct {
	Load        key.Binding
	SaveAs      key.Binding
	SaveAndLoad key.Binding
	Rename      key.Binding
	Delete      key.Binding
	Back        key.Binding
	Up          key.Binding
	Down        key.Binding
	Quit        key.Binding
}

// DefaultPicker returns the default picker bindings.
func DefaultPicker() Picker {
	return Picker{
		Load:        key.NewBinding(key.WithKeys("enter"), key.WithHelp("↵", "switch")),
		SaveAs:      key.NewBinding(key.WithKeys("shift+enter", "ctrl+s"), key.WithHelp("shift ↵", "save")),
		SaveAndLoad: key.NewBinding(key.WithKeys("alt+enter"), key.WithHelp("alt ↵", "save and switch")),
		Rename:      key.NewBinding(key.WithKeys("ctrl+enter", "ctrl+r"), key.WithHelp("ctrl ↵", "rename")),
		Delete:      key.NewBinding(key.WithKeys("shift+delete", "ctrl+d"), key.WithHelp("shift ⌫", "delete")),
		Back:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Up:          key.NewBinding(key.WithKeys("up", "ctrl+p")),
		Down:        key.NewBinding(key.WithKeys("down", "ctrl+n")),
		Quit:        key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// Instructions returns the bindings shown in the picker footer. With
// autosave on, plain enter is the only way to switch, so save hints are
// dropped.
func (p Picker) Instructions(saveOnChange bool) []key.Binding {
	var out []key.Binding
	if saveOnChange {
		out = append(out, p.Load)
	} else {
		out = append(out, p.SaveAs, p.SaveAndLoad)
	}
	return append(out, p.Rename, p.Delete, p.Back)
}
