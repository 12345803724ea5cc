// Package event provides the normalized workspace lifecycle event stream.
package event

import (
	"log/slog"
	"sync"

	"github.com/marcus/wsplus/internal/workspace"
)

// Type identifies an event kind.
type Type string

const (
	WorkspaceSave   Type = "workspace-save"
	WorkspaceDelete Type = "workspace-delete"
	WorkspaceLoad   Type = "workspace-load"
	WorkspaceRename Type = "workspace-rename"
	LayoutChange    Type = "layout-change"
	LayoutReady     Type = "layout-ready"
	Resize          Type = "resize"
	ConfigChanged   Type = "config-changed"
)

// Event is a single notification. Only the fields relevant to the type are set.
type Event struct {
	Type    Type
	Name    string              // workspace or mode name
	OldName string              // previous name, rename only
	Meta    *workspace.Metadata // pre-save metadata reference, save only
}

// Handler receives events.
type Handler func(Event)

// Ref identifies a subscription for Off.
type Ref struct {
	typ Type
	id  uint64
}

type subscription struct {
	id uint64
	fn Handler
}

// Dispatcher delivers events synchronously, in subscription order.
type Dispatcher struct {
	mu     sync.RWMutex
	subs   map[Type][]subscription
	nextID uint64
	closed bool
	logger *slog.Logger
}

// New creates a dispatcher that logs to the default logger.
func New() *Dispatcher {
	return NewWithLogger(slog.Default())
}

// NewWithLogger creates a dispatcher that traces deliveries to logger.
func NewWithLogger(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		subs:   make(map[Type][]subscription),
		logger: logger,
	}
}

// On subscribes fn to events of type t.
func (d *Dispatcher) On(t Type, fn Handler) Ref {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.subs[t] = append(d.subs[t], subscription{id: d.nextID, fn: fn})
	return Ref{typ: t, id: d.nextID}
}

// Off removes a subscription. Unknown refs are ignored.
func (d *Dispatcher) Off(ref Ref) {
	d.mu.Lock()
	defer d.mu.Unlock()
	subs := d.subs[ref.typ]
	for i, s := range subs {
		if s.id == ref.id {
			d.subs[ref.typ] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Trigger delivers ev to every current subscriber of its type. Handlers added
// or removed during delivery take effect on the next Trigger.
func (d *Dispatcher) Trigger(ev Event) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return
	}
	subs := append([]subscription(nil), d.subs[ev.Type]...)
	d.mu.RUnlock()

	d.logger.Debug("event", "type", ev.Type, "name", ev.Name)
	for _, s := range subs {
		s.fn(ev)
	}
}

// Close drops all subscriptions; later triggers are ignored.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.subs = make(map[Type][]subscription)
}
