// Package picker implements the workspace and mode picker: a filterable list
// with load, save, rename and delete actions. Controller holds the state
// transitions; Model renders them with bubbletea.
package picker

import (
	"context"
	"errors"
)

var (
	// ErrNameTaken is returned when a save-as or rename target already exists.
	ErrNameTaken = errors.New("name already in use")
	// ErrEmptyName is returned when a save-as or rename has no name.
	ErrEmptyName = errors.New("name is empty")
	// ErrNoSelection is returned by actions that need a selected item.
	ErrNoSelection = errors.New("nothing selected")
)

// Kind selects which half of the store the picker lists.
type Kind int

const (
	Workspaces Kind = iota
	Modes
)

// Noun is the user-facing name for one item of the kind.
func (k Kind) Noun() string {
	if k == Modes {
		return "mode"
	}
	return "workspace"
}

func (k Kind) String() string { return k.Noun() + "s" }

// Item is one row in the list.
type Item struct {
	Name        string // store name
	Label       string // display name, filled in by the controller
	Description string
	Mobile      bool
	Active      bool
}

// Backend is the store the picker acts on. Names are store names; mode names
// carry their prefix.
type Backend interface {
	Items(kind Kind) []Item
	Exists(name string) bool
	SaveAs(name string) error
	SaveActive() error
	Load(ctx context.Context, name string) error
	Delete(name string) error
	Rename(oldName, newName string) error
	// Closed is called once when the picker closes.
	Closed()
}

// Match is an item that passed the filter, with the byte offsets of the
// matched characters in its label.
type Match struct {
	Item
	Indexes []int
}

// State is the picker state threaded through every controller call.
type State struct {
	Kind     Kind
	Filter   string
	Matches  []Match
	Selected int
	Scroll   int

	Renaming   bool
	RenameText string

	// Confirm is the name awaiting delete confirmation, if any.
	Confirm string

	Closed bool
	Notice string
}

// Selection returns the selected match.
func (s *State) Selection() (Match, bool) {
	if s.Selected < 0 || s.Selected >= len(s.Matches) {
		return Match{}, false
	}
	return s.Matches[s.Selected], true
}

func (s *State) indexOf(name string) int {
	for i, m := range s.Matches {
		if m.Name == name {
			return i
		}
	}
	return -1
}
