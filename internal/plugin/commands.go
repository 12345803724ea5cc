package plugin

import (
	"context"
	"fmt"

	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/picker"
	"github.com/marcus/wsplus/internal/workspace"
)

// CommandPrefix prefixes the id of every per-workspace load command.
const CommandPrefix = "load:"

// CommandID returns the load command id for name.
func CommandID(name string) string { return CommandPrefix + name }

func (p *Plugin) loadCommand(name string) host.Command {
	return host.Command{
		ID:   CommandID(name),
		Name: "Load: " + name,
		Run:  func(ctx context.Context) error { return p.Load(ctx, name) },
	}
}

// registerCommands adds a load command for every stored workspace and mode.
func (p *Plugin) registerCommands() {
	if p.h.Commands == nil {
		return
	}
	for _, name := range p.h.Workspaces.Names() {
		p.h.Commands.Add(p.loadCommand(name))
	}
}

func (p *Plugin) onSave(event.Event) {
	p.registerCommands()
}

func (p *Plugin) onLayoutReady(event.Event) {
	p.registerCommands()
}

func (p *Plugin) onDelete(ev event.Event) {
	if p.h.Commands == nil {
		return
	}
	id := CommandID(ev.Name)
	p.h.Commands.Remove(id)
	p.h.Commands.RemoveHotkeys(id)
}

// onRename replaces the old load command and carries its hotkeys over.
func (p *Plugin) onRename(ev event.Event) {
	if p.h.Commands == nil {
		return
	}
	oldID := CommandID(ev.OldName)
	keys := p.h.Commands.Hotkeys(oldID)
	p.h.Commands.Remove(oldID)
	p.h.Commands.RemoveHotkeys(oldID)
	p.registerCommands()
	if len(keys) > 0 {
		p.h.Commands.SetHotkeys(CommandID(ev.Name), keys)
	}
}

// rename moves oldName to newName. Empty names and a disabled store are
// silent no-ops. Otherwise it moves the entry, re-points the active workspace and, for
// modes, every workspace linked to it. If the store fails to persist, the
// in-memory changes are reverted and the error returned.
func (p *Plugin) rename(oldName, newName string) error {
	ws := p.h.Workspaces
	if oldName == "" || newName == "" || !ws.Enabled() {
		p.logger.Debug("skip rename", "old", oldName, "new", newName, "enabled", ws.Enabled())
		return nil
	}
	w := ws.Get(oldName)
	if w == nil {
		return fmt.Errorf("rename %q: %w", oldName, workspace.ErrNotFound)
	}
	if oldName == newName {
		return nil
	}
	if ws.Get(newName) != nil {
		return fmt.Errorf("rename %q to %q: %w", oldName, newName, picker.ErrNameTaken)
	}

	wasActive := ws.Active() == oldName
	var relinked []*workspace.Metadata
	ws.Set(newName, w)
	ws.Remove(oldName)
	if wasActive {
		ws.SetActive(newName)
	}
	if workspace.IsMode(oldName) {
		for _, name := range ws.Names() {
			if other := ws.Get(name); other != nil && other.Meta != nil && other.Meta.Mode == oldName {
				other.Meta.Mode = newName
				relinked = append(relinked, other.Meta)
			}
		}
	}

	if err := ws.Persist(); err != nil {
		ws.Remove(newName)
		ws.Set(oldName, w)
		if wasActive {
			ws.SetActive(oldName)
		}
		for _, m := range relinked {
			m.Mode = oldName
		}
		return fmt.Errorf("persist rename %q to %q: %w", oldName, newName, err)
	}

	for _, plat := range []host.Platform{host.Desktop, host.Mobile} {
		if p.store.ActiveWorkspace(plat) != oldName {
			continue
		}
		if err := p.store.SetActiveWorkspace(plat, newName); err != nil {
			p.logger.Error("remember renamed workspace", "platform", plat, "err", err)
		}
	}

	p.logger.Debug("renamed", "old", oldName, "new", newName, "relinked", len(relinked))
	p.h.Events.Trigger(event.Event{Type: event.WorkspaceRename, Name: newName, OldName: oldName})
	return nil
}
