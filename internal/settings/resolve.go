// Package settings computes the effective host settings from the global
// baseline and the active mode, and keeps modes and workspaces in sync with
// the host as they are saved, loaded and deleted.
package settings

// Resolve layers mode over global, key by key. Neither input is modified.
func Resolve(global, mode map[string]any) map[string]any {
	out := make(map[string]any, len(global)+len(mode))
	for k, v := range global {
		out[k] = v
	}
	for k, v := range mode {
		out[k] = v
	}
	return out
}

// State is the settings layer currently in effect.
type State int

const (
	// Global means no mode is linked to the active workspace.
	Global State = iota
	// ModeActive means the active workspace links an existing mode.
	ModeActive
	// Disabled means modes are turned off.
	Disabled
)

func (s State) String() string {
	switch s {
	case Global:
		return "global"
	case ModeActive:
		return "mode"
	case Disabled:
		return "disabled"
	}
	return "unknown"
}

// Theme names applied when following the OS color scheme.
const (
	DarkTheme  = "obsidian"
	LightTheme = "moonstone"
)

// Well-known host setting keys.
const (
	KeyTheme       = "theme"
	KeyFontSize    = "baseFontSize"
	KeyLivePreview = "livePreview"
)
