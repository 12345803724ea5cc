// Package autosave saves the active workspace after layout-affecting events,
// at most once per debounce window.
package autosave

import (
	"log/slog"
	"time"

	"github.com/marcus/wsplus/internal/clock"
	"github.com/marcus/wsplus/internal/config"
	"github.com/marcus/wsplus/internal/event"
)

// DefaultInterval is the debounce window used when the config has none.
const DefaultInterval = 2 * time.Second

// SaveFunc saves the named workspace.
type SaveFunc func(name string) error

// Options wires a Coordinator to its collaborators. Active and Save are
// required.
type Options struct {
	Config *config.Config
	Clock  clock.Clock
	Logger *slog.Logger

	// Wrap binds timer callbacks to the caller's event loop.
	Wrap func(func()) func()

	// Active returns the current active workspace name.
	Active func() string
	// Suppressed reports whether a recent load blocks autosave.
	Suppressed func() bool
	// Modified reports whether the live layout differs from the saved copy
	// of name. Nil means always save.
	Modified func(name string) bool

	Save SaveFunc

	// OnError receives failed saves. Failures are never retried.
	OnError func(name string, err error)
}

// Option tunes a Coordinator.
type Option func(*Coordinator)

// WithTrailing fires the last absorbed event when the window closes.
func WithTrailing() Option {
	return func(c *Coordinator) { c.trailing = true }
}

// WithInterval overrides the configured debounce window.
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// pending is an open debounce window. name is the workspace captured by the
// latest event; absorbed is set once an event lands inside the window.
// state is set when an absorbed event changed workspace state outside the
// layout tree.
type pending struct {
	deadline time.Time
	name     string
	absorbed bool
	state    bool
}

// Coordinator debounces autosaves. It is not safe for concurrent use; event
// handlers and timer callbacks must be serialized by the caller.
type Coordinator struct {
	opts     Options
	interval time.Duration
	trailing bool

	window *pending
	timer  clock.Timer
	refs   []event.Ref

	// Saves counts successful saves, for status reporting.
	Saves int
}

// New creates a Coordinator.
func New(opts Options, options ...Option) *Coordinator {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Wrap == nil {
		opts.Wrap = func(fn func()) func() { return fn }
	}
	c := &Coordinator{opts: opts, interval: opts.Config.AutosaveInterval}
	if c.interval <= 0 {
		c.interval = DefaultInterval
	}
	for _, o := range options {
		o(c)
	}
	return c
}

// Register subscribes the coordinator to layout-affecting events and to
// settings changes.
func (c *Coordinator) Register(d *event.Dispatcher) {
	for _, t := range []event.Type{event.LayoutChange, event.Resize, event.ConfigChanged} {
		c.refs = append(c.refs, d.On(t, c.handle))
	}
}

// Unregister removes the subscriptions and cancels any open window.
func (c *Coordinator) Unregister(d *event.Dispatcher) {
	for _, ref := range c.refs {
		d.Off(ref)
	}
	c.refs = nil
	c.Stop()
}

func (c *Coordinator) handle(ev event.Event) {
	if ev.Type == event.ConfigChanged {
		c.NotifyState()
		return
	}
	c.Notify()
}

// Notify records a layout-affecting event against the active workspace. The
// save is skipped when the live layout matches the stored one.
func (c *Coordinator) Notify() { c.notify(false) }

// NotifyState records a change to workspace state kept outside the layout
// tree, such as folder fold state or app settings. The layout comparison does
// not apply to it.
func (c *Coordinator) NotifyState() { c.notify(true) }

func (c *Coordinator) notify(state bool) {
	name := c.opts.Active()
	if c.window != nil {
		c.window.name = name
		c.window.absorbed = true
		c.window.state = c.window.state || state
		return
	}
	c.fire(name, state)
	c.open(name)
}

// Pending reports whether a debounce window is open.
func (c *Coordinator) Pending() bool { return c.window != nil }

// Stop cancels the open window without firing.
func (c *Coordinator) Stop() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.window = nil
}

func (c *Coordinator) open(name string) {
	w := &pending{deadline: c.opts.Clock.Now().Add(c.interval), name: name}
	c.window = w
	c.timer = c.opts.Clock.AfterFunc(c.interval, c.opts.Wrap(func() { c.close(w) }))
}

func (c *Coordinator) close(w *pending) {
	if c.window != w {
		return
	}
	c.window = nil
	c.timer = nil
	if c.trailing && w.absorbed {
		c.fire(w.name, w.state)
		c.open(w.name)
	}
}

// fire saves name if every guard still holds. state skips the layout
// comparison.
func (c *Coordinator) fire(name string, state bool) {
	log := c.opts.Logger
	switch {
	case !c.opts.Config.SaveOnChange:
		log.Debug("autosave skip: disabled")
		return
	case c.opts.Suppressed != nil && c.opts.Suppressed():
		log.Debug("autosave skip: suppressed after load", "workspace", name)
		return
	case name == "":
		log.Debug("autosave skip: no active workspace")
		return
	case name != c.opts.Active():
		log.Debug("autosave skip: workspace changed", "captured", name, "active", c.opts.Active())
		return
	case !state && c.opts.Modified != nil && !c.opts.Modified(name):
		log.Debug("autosave skip: unchanged", "workspace", name)
		return
	}

	log.Debug("autosave", "workspace", name)
	if err := c.opts.Save(name); err != nil {
		log.Error("autosave failed", "workspace", name, "err", err)
		if c.opts.OnError != nil {
			c.opts.OnError(name, err)
		}
		return
	}
	c.Saves++
}
