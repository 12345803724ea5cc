package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/wsplus/internal/config"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Show the plugin configuration",
		Args:    cobra.NoArgs,
		GroupID: "settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.vault)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			w := cmd.OutOrStdout()
			printSection(w, config.ConfigPath(o.vault))
			printLabelValue(w, "showInstructions", strconv.FormatBool(cfg.ShowInstructions))
			printLabelValue(w, "showDeletePrompt", strconv.FormatBool(cfg.ShowDeletePrompt))
			printLabelValue(w, "saveOnSwitch", strconv.FormatBool(cfg.SaveOnSwitch))
			printLabelValue(w, "saveOnChange", strconv.FormatBool(cfg.SaveOnChange))
			printLabelValue(w, "workspaceSettings", strconv.FormatBool(cfg.WorkspaceSettings))
			printLabelValue(w, "systemDarkMode", strconv.FormatBool(cfg.SystemDarkMode))
			printLabelValue(w, "reloadLivePreview", strconv.FormatBool(cfg.ReloadLivePreview))
			printLabelValue(w, "autosaveInterval", cfg.AutosaveInterval.String())
			printLabelValue(w, "suppressWindow", cfg.SuppressWindow.String())
			printLabelValue(w, "volatileKeys", strings.Join(cfg.VolatileKeys, ", "))
			printLabelValue(w, "ui.theme", cfg.UI.Theme)
			return nil
		},
	}
	cmd.AddCommand(newConfigSetCmd(o))
	return cmd
}

func newConfigSetCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(o.vault)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := setConfigKey(cfg, args[0], args[1]); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := config.Save(config.ConfigPath(o.vault), cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			printSuccess(cmd.OutOrStdout(), "Set %s = %s", args[0], args[1])
			return nil
		},
	}
}

func setConfigKey(cfg *config.Config, key, value string) error {
	bools := map[string]*bool{
		"showInstructions":  &cfg.ShowInstructions,
		"showDeletePrompt":  &cfg.ShowDeletePrompt,
		"saveOnSwitch":      &cfg.SaveOnSwitch,
		"saveOnChange":      &cfg.SaveOnChange,
		"workspaceSettings": &cfg.WorkspaceSettings,
		"systemDarkMode":    &cfg.SystemDarkMode,
		"reloadLivePreview": &cfg.ReloadLivePreview,
	}
	if dst, ok := bools[key]; ok {
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	switch key {
	case "autosaveInterval", "suppressWindow":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
		if key == "autosaveInterval" {
			cfg.AutosaveInterval = d
		} else {
			cfg.SuppressWindow = d
		}
	case "volatileKeys":
		cfg.VolatileKeys = nil
		for _, k := range strings.Split(value, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.VolatileKeys = append(cfg.VolatileKeys, k)
			}
		}
	case "ui.theme":
		switch value {
		case "auto", "dark", "light":
			cfg.UI.Theme = value
		default:
			return fmt.Errorf("ui.theme must be auto, dark or light")
		}
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
