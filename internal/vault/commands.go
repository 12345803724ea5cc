package vault

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"

	"github.com/marcus/wsplus/internal/host"
)

// Commands is the command registry. Commands live in memory; hotkey
// assignments persist in hotkeys.json.
type Commands struct {
	path   string
	logger *slog.Logger

	mu       sync.Mutex
	commands map[string]host.Command
	hotkeys  map[string][]string
}

func openCommands(path string, logger *slog.Logger) (*Commands, error) {
	c := &Commands{
		path:     path,
		logger:   logger,
		commands: map[string]host.Command{},
		hotkeys:  map[string][]string{},
	}
	if _, err := readJSON(path, &c.hotkeys); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return c, nil
}

func (c *Commands) Add(cmd host.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.commands[cmd.ID] = cmd
}

func (c *Commands) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.commands, id)
}

// Get returns the command registered under id.
func (c *Commands) Get(id string) (host.Command, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cmd, ok := c.commands[id]
	return cmd, ok
}

// IDs returns every registered command id, sorted.
func (c *Commands) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Sorted(maps.Keys(c.commands))
}

func (c *Commands) Hotkeys(id string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.hotkeys[id])
}

func (c *Commands) SetHotkeys(id string, keys []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hotkeys[id] = slices.Clone(keys)
	c.persistLocked()
}

func (c *Commands) RemoveHotkeys(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.hotkeys[id]; !ok {
		return
	}
	delete(c.hotkeys, id)
	c.persistLocked()
}

func (c *Commands) persistLocked() {
	if _, err := writeJSON(c.path, c.hotkeys); err != nil {
		c.logger.Error("write hotkeys", "path", c.path, "err", err)
	}
}
