package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/wsplus/internal/config"
	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/plugin"
	"github.com/marcus/wsplus/internal/state"
	"github.com/marcus/wsplus/internal/styles"
	"github.com/marcus/wsplus/internal/vault"
)

// options are the global flags.
type options struct {
	vault string
	debug bool
	// stderr receives log output; tests point it elsewhere.
	stderr io.Writer
	// onError receives autosave failures.
	onError func(error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&options{stderr: os.Stderr})
}

func newRootCmdWith(opts *options) *cobra.Command {

	root := &cobra.Command{
		Use:   "wsplus",
		Short: "Workspaces and modes for a notes vault",
		Long: `wsplus saves, loads and switches named pane layouts ("workspaces") in a vault,
and layers "modes" (named settings bundles) on top of them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	root.PersistentFlags().StringVar(&opts.vault, "vault", ".", "vault root directory")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddGroup(
		&cobra.Group{ID: "interactive", Title: "Interactive:"},
		&cobra.Group{ID: "workspaces", Title: "Workspaces:"},
		&cobra.Group{ID: "modes", Title: "Modes:"},
		&cobra.Group{ID: "settings", Title: "Settings:"},
	)
	root.AddCommand(
		newPickCmd(opts),
		newModesCmd(opts),
		newWatchCmd(opts),
		newListCmd(opts),
		newSaveCmd(opts),
		newLoadCmd(opts),
		newDeleteCmd(opts),
		newRenameCmd(opts),
		newShowCmd(opts),
		newStatusCmd(opts),
		newModeCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// session is an opened vault with the plugin running on it.
type session struct {
	vault  *vault.Vault
	plugin *plugin.Plugin
	cfg    *config.Config
	logger *slog.Logger
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(o.stderr, &slog.HandlerOptions{Level: level}))
}

// open opens the vault, starts the plugin and signals layout-ready the way a
// host does on startup.
func (o *options) open(trailing bool) (*session, error) {
	logger := o.logger()

	v, err := vault.Open(o.vault, vault.Options{Logger: logger})
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(v.Root)
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("load config: %w", err)
	}
	store, err := state.Open(v.StateDir())
	if err != nil {
		v.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	p, err := plugin.New(&plugin.Context{
		Host:     v.Host(),
		Config:   cfg,
		Store:    store,
		Logger:   logger,
		Trailing: trailing,
		OnError:  o.onError,
	})
	if err != nil {
		v.Close()
		return nil, err
	}

	styles.ApplyTheme(styles.Resolve(cfg.UI.Theme, v.Settings.Theme()))
	p.Dispatch(event.Event{Type: event.LayoutReady})
	return &session{vault: v, plugin: p, cfg: cfg, logger: logger}, nil
}

func (s *session) Close() {
	s.plugin.Close()
	if err := s.vault.Close(); err != nil {
		s.logger.Error("close vault", "err", err)
	}
}
