package plugin

import (
	"context"

	"github.com/marcus/wsplus/internal/event"
	"github.com/marcus/wsplus/internal/picker"
	"github.com/marcus/wsplus/internal/workspace"
)

// mobileDrawer is the left region type of layouts saved on mobile.
const mobileDrawer = "mobile-drawer"

// Backend returns the picker backend for this plugin.
func (p *Plugin) Backend() picker.Backend { return backend{p} }

type backend struct{ p *Plugin }

func (b backend) Items(kind picker.Kind) []picker.Item {
	p := b.p
	var items []picker.Item
	p.loop.Run(func() {
		ws := p.h.Workspaces
		activeMode := p.engine.ActiveMode()
		for _, name := range ws.Names() {
			if workspace.IsMode(name) != (kind == picker.Modes) {
				continue
			}
			w := ws.Get(name)
			if w == nil {
				continue
			}
			it := picker.Item{Name: name, Mobile: isMobile(w.Layout)}
			if w.Meta != nil {
				it.Description = w.Meta.Description
			}
			if kind == picker.Modes {
				it.Active = name == activeMode
			} else {
				it.Active = name == ws.Active()
			}
			items = append(items, it)
		}
	})
	return items
}

func (b backend) Exists(name string) bool {
	var ok bool
	b.p.loop.Run(func() { ok = b.p.h.Workspaces.Get(name) != nil })
	return ok
}

func (b backend) SaveAs(name string) error { return b.p.Save(name) }

func (b backend) SaveActive() error {
	p := b.p
	return p.loop.RunErr(func() error {
		name := p.h.Workspaces.Active()
		if name == "" {
			return nil
		}
		return p.save(name)
	})
}

func (b backend) Load(ctx context.Context, name string) error { return b.p.Load(ctx, name) }

func (b backend) Delete(name string) error { return b.p.Delete(name) }

func (b backend) Rename(oldName, newName string) error { return b.p.Rename(oldName, newName) }

// Closed nudges layout observers so autosave and status re-evaluate.
func (b backend) Closed() {
	b.p.Dispatch(event.Event{Type: event.LayoutChange})
}

func isMobile(l workspace.Layout) bool {
	left, ok := l["left"].(map[string]any)
	return ok && left["type"] == mobileDrawer
}
