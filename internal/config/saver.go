package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// saveConfig is the JSON-marshaling intermediary that uses string durations.
type saveConfig struct {
	ShowInstructions  bool     `json:"showInstructions"`
	ShowDeletePrompt  bool     `json:"showDeletePrompt"`
	SaveOnSwitch      bool     `json:"saveOnSwitch"`
	SaveOnChange      bool     `json:"saveOnChange"`
	WorkspaceSettings bool     `json:"workspaceSettings"`
	SystemDarkMode    bool     `json:"systemDarkMode"`
	ReloadLivePreview bool     `json:"reloadLivePreview"`
	AutosaveInterval  string   `json:"autosaveInterval,omitempty"`
	SuppressWindow    string   `json:"suppressWindow,omitempty"`
	VolatileKeys      []string `json:"volatileKeys,omitempty"`
	UI                UIConfig `json:"ui"`
}

// toSaveConfig converts Config to the JSON-serializable format.
func toSaveConfig(cfg *Config) saveConfig {
	return saveConfig{
		ShowInstructions:  cfg.ShowInstructions,
		ShowDeletePrompt:  cfg.ShowDeletePrompt,
		SaveOnSwitch:      cfg.SaveOnSwitch,
		SaveOnChange:      cfg.SaveOnChange,
		WorkspaceSettings: cfg.WorkspaceSettings,
		SystemDarkMode:    cfg.SystemDarkMode,
		ReloadLivePreview: cfg.ReloadLivePreview,
		AutosaveInterval:  cfg.AutosaveInterval.String(),
		SuppressWindow:    cfg.SuppressWindow.String(),
		VolatileKeys:      cfg.VolatileKeys,
		UI:                cfg.UI,
	}
}

// Save writes cfg to path. Keys in an existing file that Config does not
// manage are kept.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	merged := map[string]json.RawMessage{}
	if existing, err := os.ReadFile(path); err == nil {
		// Unparseable files are overwritten.
		_ = json.Unmarshal(existing, &merged)
		if merged == nil {
			merged = map[string]json.RawMessage{}
		}
	}

	managed, err := json.Marshal(toSaveConfig(cfg))
	if err != nil {
		return err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(managed, &fields); err != nil {
		return err
	}
	for k, v := range fields {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
