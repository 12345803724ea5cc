// Package layoutdiff decides whether the live layout differs from the saved
// copy of the active workspace, ignoring transient UI state.
package layoutdiff

import (
	"bytes"
	"encoding/json"
	"log/slog"

	"github.com/cespare/xxhash/v2"

	"github.com/marcus/wsplus/internal/workspace"
)

// DefaultVolatileKeys are layout fields that track transient UI state.
var DefaultVolatileKeys = []string{"active", "dimension", "width", "history", "eState", "lastOpenFiles"}

// Detector compares layouts with volatile keys stripped.
type Detector struct {
	volatile map[string]struct{}
	logger   *slog.Logger
}

// New creates a detector that strips the default volatile keys plus extra.
func New(logger *slog.Logger, extra ...string) *Detector {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Detector{volatile: make(map[string]struct{}), logger: logger}
	for _, k := range DefaultVolatileKeys {
		d.volatile[k] = struct{}{}
	}
	for _, k := range extra {
		d.volatile[k] = struct{}{}
	}
	d.volatile[workspace.MetadataKey] = struct{}{}
	return d
}

// IsModified reports whether live differs from saved. A workspace that is not
// in the store is always modified. Any failure while comparing reports false.
func (d *Detector) IsModified(live, saved workspace.Layout, inStore bool) (modified bool) {
	if !inStore {
		return true
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Debug("layout compare panicked", "panic", r)
			modified = false
		}
	}()

	a, err := d.canonical(live)
	if err != nil {
		d.logger.Debug("layout compare skipped", "err", err)
		return false
	}
	b, err := d.canonical(saved)
	if err != nil {
		d.logger.Debug("layout compare skipped", "err", err)
		return false
	}
	if xxhash.Sum64(a) != xxhash.Sum64(b) {
		return true
	}
	return !bytes.Equal(a, b)
}

// Fingerprint returns a stable hash of the layout with volatile keys stripped.
func (d *Detector) Fingerprint(l workspace.Layout) (uint64, error) {
	data, err := d.canonical(l)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(data), nil
}

// canonical deep-clones l through JSON, strips volatile keys and re-encodes.
// encoding/json sorts map keys, so equal trees produce equal bytes.
func (d *Detector) canonical(l workspace.Layout) ([]byte, error) {
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return json.Marshal(d.strip(tree))
}

func (d *Detector) strip(v any) any {
	switch n := v.(type) {
	case map[string]any:
		for k, child := range n {
			if _, ok := d.volatile[k]; ok {
				delete(n, k)
				continue
			}
			n[k] = d.strip(child)
		}
		return n
	case []any:
		for i := range n {
			n[i] = d.strip(n[i])
		}
		return n
	}
	return v
}
