package config

import "time"

// Config is the plugin configuration stored in <vault>/.wsplus/config.json.
type Config struct {
	// ShowInstructions shows the key hint footer in the picker.
	ShowInstructions bool `json:"showInstructions"`
	// ShowDeletePrompt asks for confirmation before deleting from the picker.
	ShowDeletePrompt bool `json:"showDeletePrompt"`
	// SaveOnSwitch saves the active workspace before loading another one.
	SaveOnSwitch bool `json:"saveOnSwitch"`
	// SaveOnChange autosaves the active workspace on layout changes.
	SaveOnChange bool `json:"saveOnChange"`
	// WorkspaceSettings enables modes.
	WorkspaceSettings bool `json:"workspaceSettings"`
	// SystemDarkMode picks the theme from the OS color scheme.
	SystemDarkMode bool `json:"systemDarkMode"`
	// ReloadLivePreview reloads the host when a mode flips the editor engine.
	ReloadLivePreview bool `json:"reloadLivePreview"`

	AutosaveInterval time.Duration `json:"autosaveInterval"`
	SuppressWindow   time.Duration `json:"suppressWindow"`

	// VolatileKeys are layout keys ignored by modification detection, in
	// addition to the built-in set.
	VolatileKeys []string `json:"volatileKeys,omitempty"`

	UI UIConfig `json:"ui"`
}

// UIConfig configures the picker appearance.
type UIConfig struct {
	// Theme is "auto", "dark" or "light".
	Theme string `json:"theme"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		ShowInstructions: true,
		ShowDeletePrompt: true,
		AutosaveInterval: 2 * time.Second,
		SuppressWindow:   2500 * time.Millisecond,
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.AutosaveInterval <= 0 {
		c.AutosaveInterval = 2 * time.Second
	}
	if c.SuppressWindow <= 0 {
		c.SuppressWindow = 2500 * time.Millisecond
	}
	switch c.UI.Theme {
	case "auto", "dark", "light":
	default:
		c.UI.Theme = "auto"
	}
	return nil
}
