package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	configDir  = ".wsplus"
	configFile = "config.json"
)

// rawConfig is the JSON-unmarshaling intermediary.
type rawConfig struct {
	ShowInstructions  *bool    `json:"showInstructions"`
	ShowDeletePrompt  *bool    `json:"showDeletePrompt"`
	SaveOnSwitch      *bool    `json:"saveOnSwitch"`
	SaveOnChange      *bool    `json:"saveOnChange"`
	WorkspaceSettings *bool    `json:"workspaceSettings"`
	SystemDarkMode    *bool    `json:"systemDarkMode"`
	ReloadLivePreview *bool    `json:"reloadLivePreview"`
	AutosaveInterval  string   `json:"autosaveInterval"`
	SuppressWindow    string   `json:"suppressWindow"`
	VolatileKeys      []string `json:"volatileKeys"`
	UI                UIConfig `json:"ui"`
}

// ConfigPath returns the config file path inside a vault.
func ConfigPath(vault string) string {
	return filepath.Join(vault, configDir, configFile)
}

// Load loads configuration for the vault at root.
func Load(vault string) (*Config, error) {
	return LoadFrom(ConfigPath(vault))
}

// LoadFrom loads configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	mergeConfig(cfg, &raw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// mergeConfig merges raw config values into the config.
func mergeConfig(cfg *Config, raw *rawConfig) {
	setBool := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	setBool(&cfg.ShowInstructions, raw.ShowInstructions)
	setBool(&cfg.ShowDeletePrompt, raw.ShowDeletePrompt)
	setBool(&cfg.SaveOnSwitch, raw.SaveOnSwitch)
	setBool(&cfg.SaveOnChange, raw.SaveOnChange)
	setBool(&cfg.WorkspaceSettings, raw.WorkspaceSettings)
	setBool(&cfg.SystemDarkMode, raw.SystemDarkMode)
	setBool(&cfg.ReloadLivePreview, raw.ReloadLivePreview)

	if raw.AutosaveInterval != "" {
		if d, err := time.ParseDuration(raw.AutosaveInterval); err == nil {
			cfg.AutosaveInterval = d
		} else {
			slog.Warn("invalid autosaveInterval", "value", raw.AutosaveInterval, "err", err)
		}
	}
	if raw.SuppressWindow != "" {
		if d, err := time.ParseDuration(raw.SuppressWindow); err == nil {
			cfg.SuppressWindow = d
		} else {
			slog.Warn("invalid suppressWindow", "value", raw.SuppressWindow, "err", err)
		}
	}

	if len(raw.VolatileKeys) > 0 {
		cfg.VolatileKeys = append([]string(nil), raw.VolatileKeys...)
	}

	if raw.UI.Theme != "" {
		cfg.UI.Theme = raw.UI.Theme
	}
}
