package main

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/wsplus/internal/picker"
)

func newPickCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "pick",
		Aliases: []string{"p"},
		Short:   "Open the workspace picker",
		Args:    cobra.NoArgs,
		GroupID: "interactive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runPicker(cmd, picker.Workspaces)
		},
	}
}

func newModesCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "modes",
		Short:   "Open the mode picker",
		Args:    cobra.NoArgs,
		GroupID: "interactive",
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runPicker(cmd, picker.Modes)
		},
	}
}

func (o *options) runPicker(cmd *cobra.Command, kind picker.Kind) error {
	s, err := o.open(false)
	if err != nil {
		return err
	}
	defer s.Close()

	ctl := picker.NewController(s.plugin.Backend(), s.cfg, s.logger.With("component", "picker"))
	model := picker.New(cmd.Context(), ctl, kind)
	final, err := tea.NewProgram(model,
		tea.WithContext(cmd.Context()),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	).Run()
	if err != nil {
		return err
	}

	m, ok := final.(picker.Model)
	if !ok {
		return nil
	}
	if err := m.Err(); err != nil {
		return err
	}
	if notice := m.State().Notice; notice != "" {
		printSuccess(cmd.OutOrStdout(), "%s", notice)
	}
	return nil
}
