// Package workspace defines saved pane layouts, the metadata attached to them,
// and the naming rules that distinguish modes from regular workspaces.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MetadataKey is the attachment point for Metadata inside a serialized workspace.
const MetadataKey = "workspaces-plus:settings-v1"

// ErrNotFound is returned when a named workspace does not exist in the store.
var ErrNotFound = errors.New("workspace not found")

var modePattern = regexp.MustCompile(`(?i)^mode:\s*`)

// Metadata is the plugin-owned data stored alongside a workspace layout.
type Metadata struct {
	Description       string            `json:"description,omitempty"`
	Mode              string            `json:"mode,omitempty"` // linked mode; only on regular workspaces
	ExplorerFoldState []string          `json:"explorerFoldState,omitempty"`
	FileOverrides     map[string]string `json:"fileOverrides,omitempty"` // leaf id -> template path
	SaveSidebar       *bool             `json:"saveSidebar,omitempty"`   // only meaningful on modes
	AppSettings       map[string]any    `json:"appSettings,omitempty"`   // only meaningful on modes
}

// SavesSidebar reports whether a mode should carry its sidebar layout.
func (m *Metadata) SavesSidebar() bool {
	return m != nil && m.SaveSidebar != nil && *m.SaveSidebar
}

// Workspace is a named layout snapshot. The name is the store key and is not
// part of the value.
type Workspace struct {
	Layout Layout
	Meta   *Metadata
}

// New wraps a layout in a Workspace with no metadata.
func New(l Layout) *Workspace {
	if l == nil {
		l = Layout{}
	}
	return &Workspace{Layout: l}
}

// Metadata returns the workspace metadata, creating it on first access.
func (w *Workspace) Metadata() *Metadata {
	if w.Meta == nil {
		w.Meta = &Metadata{}
	}
	return w.Meta
}

// MarshalJSON writes the layout object with the metadata attached under MetadataKey.
func (w Workspace) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(w.Layout)+1)
	for k, v := range w.Layout {
		if k == MetadataKey {
			continue
		}
		out[k] = v
	}
	if w.Meta != nil {
		out[MetadataKey] = w.Meta
	}
	return json.Marshal(out)
}

// UnmarshalJSON splits the metadata attachment from the layout regions.
func (w *Workspace) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Layout = make(Layout, len(raw))
	w.Meta = nil
	for k, v := range raw {
		if k == MetadataKey {
			if string(v) == "null" {
				continue
			}
			var meta Metadata
			if err := json.Unmarshal(v, &meta); err != nil {
				return fmt.Errorf("decode %s: %w", MetadataKey, err)
			}
			w.Meta = &meta
			continue
		}
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return fmt.Errorf("decode region %q: %w", k, err)
		}
		w.Layout[k] = val
	}
	return nil
}

// Clone returns a deep copy that shares nothing with w.
func (w *Workspace) Clone() (*Workspace, error) {
	data, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	var out Workspace
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IsMode reports whether name follows the mode naming pattern.
func IsMode(name string) bool {
	return modePattern.MatchString(name)
}

// ModeName returns the store name for a mode label.
func ModeName(label string) string {
	if IsMode(label) {
		return label
	}
	return "mode: " + strings.TrimSpace(label)
}

// DisplayName strips the mode prefix for display. Regular names are returned unchanged.
func DisplayName(name string) string {
	return modePattern.ReplaceAllString(name, "")
}
