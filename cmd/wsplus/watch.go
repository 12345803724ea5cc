package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marcus/wsplus/internal/vault"
)

func newWatchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Autosave the active workspace while the vault changes",
		Long: `Watch the vault state files and feed external changes to the plugin: layout
edits trigger the autosave debounce and settings edits keep the active mode in
sync. Runs until interrupted.`,
		Args:    cobra.NoArgs,
		GroupID: "interactive",
		RunE: func(cmd *cobra.Command, args []string) error {
			o.onError = func(err error) { printWarning(cmd.ErrOrStderr(), "%v", err) }
			s, err := o.open(true)
			if err != nil {
				return err
			}
			defer s.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			st := s.plugin.Status()
			active := st.Workspace
			if active == "" {
				active = "(none)"
			}
			printSuccess(cmd.OutOrStdout(), "Watching %s (workspace %s, mode %s)", s.vault.Root, active, st.Mode)
			if err := s.vault.Watch(ctx, func(c vault.Change) { s.plugin.DispatchChange(c) }); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Stopped after %d autosaves", s.plugin.Status().Autosaves)
			return nil
		},
	}
}
