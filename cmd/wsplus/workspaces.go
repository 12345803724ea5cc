package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/marcus/wsplus/internal/picker"
	"github.com/marcus/wsplus/internal/styles"
	"github.com/marcus/wsplus/internal/workspace"
)

// resolveName maps a user-typed name to a store name, accepting a bare mode
// label for an existing mode.
func (s *session) resolveName(arg string) string {
	ws := s.vault.Store
	if ws.Get(arg) != nil || workspace.IsMode(arg) {
		return arg
	}
	if mode := workspace.ModeName(arg); ws.Get(mode) != nil {
		return mode
	}
	return arg
}

func newListCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "List saved workspaces and modes",
		Args:    cobra.NoArgs,
		GroupID: "workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			b := s.plugin.Backend()
			for _, kind := range []picker.Kind{picker.Workspaces, picker.Modes} {
				printSection(w, strings.ToUpper(kind.String()[:1])+kind.String()[1:])
				items := b.Items(kind)
				if len(items) == 0 {
					_, _ = dimColor.Fprintln(w, "  (none)")
					continue
				}
				width := 0
				for _, it := range items {
					width = max(width, runewidth.StringWidth(workspace.DisplayName(it.Name)))
				}
				for _, it := range items {
					s.printItem(w, it, width)
				}
			}
			return nil
		},
	}
}

func (s *session) printItem(w io.Writer, it picker.Item, width int) {
	marker := "  "
	nameColor := color.New(color.Reset)
	if it.Active {
		marker = activeColor.Sprint("* ")
		nameColor = activeColor
	}
	platform := "desktop"
	if it.Mobile {
		platform = "mobile"
	}
	saved := ""
	if t, ok := s.vault.Store.UpdatedAt(it.Name); ok {
		saved = "saved " + humanize.Time(t)
	}
	line := fmt.Sprintf("%s%s  %-7s  %s", marker,
		nameColor.Sprint(runewidth.FillRight(workspace.DisplayName(it.Name), width)),
		platform, dimColor.Sprint(saved))
	fmt.Fprintln(w, strings.TrimRight(line, " "))
	if it.Description != "" {
		fmt.Fprintf(w, "    %s\n", dimColor.Sprint(it.Description))
	}
}

func newSaveCmd(o *options) *cobra.Command {
	var (
		description string
		sidebar     bool
		overrideArg []string
	)
	cmd := &cobra.Command{
		Use:   "save [NAME]",
		Short: "Save the live layout as a workspace (or settings as a mode)",
		Long: `Save the live layout under NAME, or under the active workspace when NAME is
omitted. Names starting with "mode:" save a mode: the current settings are
snapshotted and the active workspace is left unchanged.`,
		Args:    cobra.MaximumNArgs(1),
		GroupID: "workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			var name string
			if len(args) == 1 {
				name = strings.TrimSpace(args[0])
			} else {
				name = s.vault.Store.Active()
			}
			if name == "" {
				return errors.New("no workspace name given and no active workspace")
			}
			overrides, err := parseOverrides(overrideArg)
			if err != nil {
				return err
			}

			if err := s.plugin.Save(name); err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("description") || flags.Changed("sidebar") || len(overrides) > 0 {
				err := s.plugin.Annotate(name, func(m *workspace.Metadata) {
					if flags.Changed("description") {
						m.Description = description
					}
					if flags.Changed("sidebar") {
						m.SaveSidebar = &sidebar
					}
					if len(overrides) > 0 {
						if m.FileOverrides == nil {
							m.FileOverrides = map[string]string{}
						}
						maps.Copy(m.FileOverrides, overrides)
					}
				})
				if err != nil {
					return err
				}
			}
			kind := picker.Workspaces
			if workspace.IsMode(name) {
				kind = picker.Modes
			}
			printSuccess(cmd.OutOrStdout(), "Saved %s: %s", kind.Noun(), workspace.DisplayName(name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "description shown in the picker")
	cmd.Flags().BoolVar(&sidebar, "sidebar", false, "modes only: carry the sidebar layout")
	cmd.Flags().StringSliceVar(&overrideArg, "override", nil, "LEAF=TEMPLATE file override, repeatable")
	return cmd
}

// parseOverrides parses LEAF=TEMPLATE pairs.
func parseOverrides(args []string) (map[string]string, error) {
	out := map[string]string{}
	for _, a := range args {
		leaf, tmpl, ok := strings.Cut(a, "=")
		if !ok || strings.TrimSpace(leaf) == "" || strings.TrimSpace(tmpl) == "" {
			return nil, fmt.Errorf("invalid override %q, want LEAF=TEMPLATE", a)
		}
		out[strings.TrimSpace(leaf)] = strings.TrimSpace(tmpl)
	}
	return out, nil
}

func newLoadCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "load NAME",
		Short:   "Load a workspace (loading a mode toggles it)",
		Args:    cobra.ExactArgs(1),
		GroupID: "workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			name := s.resolveName(args[0])
			if s.vault.Store.Get(name) == nil {
				return fmt.Errorf("load %q: %w", name, workspace.ErrNotFound)
			}
			if err := s.plugin.Load(cmd.Context(), name); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Loaded %s", workspace.DisplayName(name))
			return nil
		},
	}
}

func newDeleteCmd(o *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete NAME",
		Short:   "Delete a workspace or mode",
		Args:    cobra.ExactArgs(1),
		GroupID: "workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			name := s.resolveName(args[0])
			if s.vault.Store.Get(name) == nil {
				return fmt.Errorf("delete %q: %w", name, workspace.ErrNotFound)
			}
			if s.cfg.ShowDeletePrompt && !yes {
				noun := picker.Workspaces.Noun()
				if workspace.IsMode(name) {
					noun = picker.Modes.Noun()
				}
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Do you really want to delete the '%s' %s?", workspace.DisplayName(name), noun))
				if err != nil {
					return err
				}
				if !ok {
					printWarning(cmd.OutOrStdout(), "Cancelled")
					return nil
				}
			}
			if err := s.plugin.Delete(name); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Deleted %s", workspace.DisplayName(name))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question on in. Anything but y/yes is no.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

func newRenameCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "rename OLD NEW",
		Short:   "Rename a workspace or mode",
		Args:    cobra.ExactArgs(2),
		GroupID: "workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			oldName := s.resolveName(args[0])
			newName := strings.TrimSpace(args[1])
			if newName == "" {
				return picker.ErrEmptyName
			}
			if workspace.IsMode(oldName) && !workspace.IsMode(newName) {
				newName = workspace.ModeName(newName)
			}
			if err := s.plugin.Rename(oldName, newName); err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Renamed %s to %s", workspace.DisplayName(oldName), workspace.DisplayName(newName))
			return nil
		},
	}
}

func newModeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "mode NAME",
		Short:   "Toggle a mode on the active workspace",
		Args:    cobra.ExactArgs(1),
		GroupID: "modes",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			if !s.cfg.WorkspaceSettings {
				return errors.New(`modes are disabled; set "workspaceSettings": true in .wsplus/config.json`)
			}
			if s.vault.Store.Active() == "" {
				return errors.New("no active workspace; load one first")
			}
			name := args[0]
			if !workspace.IsMode(name) {
				name = workspace.ModeName(name)
			}
			if s.vault.Store.Get(name) == nil {
				return fmt.Errorf("mode %q: %w", workspace.DisplayName(name), workspace.ErrNotFound)
			}
			if err := s.plugin.Load(cmd.Context(), name); err != nil {
				return err
			}
			st := s.plugin.Status()
			printSuccess(cmd.OutOrStdout(), "%s: mode %s", st.Workspace, st.Mode)
			return nil
		},
	}
}

func newShowCmd(o *options) *cobra.Command {
	var showLayout bool
	cmd := &cobra.Command{
		Use:     "show NAME",
		Short:   "Show a workspace or mode in detail",
		Args:    cobra.ExactArgs(1),
		GroupID: "workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			name := s.resolveName(args[0])
			ws := s.vault.Store.Get(name)
			if ws == nil {
				return fmt.Errorf("show %q: %w", name, workspace.ErrNotFound)
			}
			return s.show(cmd.OutOrStdout(), name, ws, showLayout)
		},
	}
	cmd.Flags().BoolVar(&showLayout, "layout", false, "print the layout JSON")
	return cmd
}

func (s *session) show(w io.Writer, name string, ws *workspace.Workspace, showLayout bool) error {
	printSection(w, workspace.DisplayName(name))
	kind := picker.Workspaces.Noun()
	if workspace.IsMode(name) {
		kind = picker.Modes.Noun()
	}
	printLabelValue(w, "Kind", kind)
	if t, ok := s.vault.Store.UpdatedAt(name); ok {
		printLabelValue(w, "Saved", humanize.Time(t))
	}

	meta := ws.Meta
	if meta != nil {
		if meta.Mode != "" {
			printLabelValue(w, "Mode", workspace.DisplayName(meta.Mode))
		}
		if meta.SaveSidebar != nil {
			printLabelValue(w, "Sidebar", fmt.Sprint(*meta.SaveSidebar))
		}
		if len(meta.AppSettings) > 0 {
			printLabelValue(w, "Settings", strings.Join(slices.Sorted(maps.Keys(meta.AppSettings)), ", "))
		}
		if n := len(meta.ExplorerFoldState); n > 0 {
			printLabelValue(w, "Expanded folders", humanize.Comma(int64(n)))
		}
		for _, leaf := range slices.Sorted(maps.Keys(meta.FileOverrides)) {
			printLabelValue(w, "Override "+leaf, meta.FileOverrides[leaf])
		}
		if meta.Description != "" {
			out, err := renderMarkdown(meta.Description)
			if err != nil {
				return err
			}
			fmt.Fprint(w, out)
		}
	}

	if showLayout {
		data, err := json.MarshalIndent(ws.Layout, "", "  ")
		if err != nil {
			return err
		}
		formatter := "terminal256"
		if color.NoColor {
			formatter = "noop"
		}
		if err := quick.Highlight(w, string(data)+"\n", "json", formatter, styles.GetSyntaxTheme()); err != nil {
			return err
		}
	}
	return nil
}

func renderMarkdown(md string) (string, error) {
	style := styles.GetMarkdownTheme()
	if color.NoColor {
		style = "notty"
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return "", err
	}
	return r.Render(md)
}

func newStatusCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show the active workspace, mode and health",
		Args:    cobra.NoArgs,
		GroupID: "workspaces",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(false)
			if err != nil {
				return err
			}
			defer s.Close()

			w := cmd.OutOrStdout()
			st := s.plugin.Status()
			active := st.Workspace
			if active == "" {
				active = "(none)"
			}
			printSection(w, "Status")
			printLabelValue(w, "Workspace", active)
			printLabelValue(w, "Mode", st.Mode)
			modified := "no"
			if st.Modified {
				modified = warningColor.Sprint("yes")
			}
			printLabelValue(w, "Modified", modified)

			printSection(w, "Components")
			for _, d := range s.plugin.Diagnostics() {
				value := d.Status
				if d.Detail != "" {
					value += dimColor.Sprintf(" (%s)", d.Detail)
				}
				printLabelValue(w, d.ID, value)
			}
			return nil
		},
	}
}

