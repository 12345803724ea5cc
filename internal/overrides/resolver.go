package overrides

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/marcus/wsplus/internal/datefmt"
	"github.com/marcus/wsplus/internal/host"
	"github.com/marcus/wsplus/internal/workspace"
)

// Resolver patches layouts with the files named by workspace overrides.
type Resolver struct {
	renderer *Renderer
	files    host.Files
	periodic host.PeriodicNotes
	logger   *slog.Logger
}

// NewResolver creates a resolver over the host's file store and periodic
// notes. periodic may be nil when the host has no periodic notes.
func NewResolver(h *host.Host, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		renderer: NewRenderer(h.Templates),
		files:    h.Files,
		periodic: h.Periodic,
		logger:   logger,
	}
}

// Apply resolves every override in meta against l, in place. Overrides whose
// file does not exist or whose leaf is gone are removed from meta. Periodic
// notes named by an override are created first if missing.
func (r *Resolver) Apply(ctx context.Context, meta *workspace.Metadata, l workspace.Layout, now time.Time) error {
	if meta == nil || len(meta.FileOverrides) == 0 {
		return nil
	}

	for _, leafID := range slices.Sorted(maps.Keys(meta.FileOverrides)) {
		if err := ctx.Err(); err != nil {
			return err
		}
		tmpl := meta.FileOverrides[leafID]
		target := host.NormalizePath(r.renderer.Render(tmpl, now))

		if _, err := r.ensurePeriodicNote(ctx, target); err != nil {
			return fmt.Errorf("create periodic note %q: %w", target, err)
		}

		file, ok := r.files.Resolve(target)
		if !ok {
			r.logger.Warn("stale file override", "leaf", leafID, "path", target)
			delete(meta.FileOverrides, leafID)
			continue
		}
		if !l.SetLeafFile(leafID, file) {
			r.logger.Debug("override leaf no longer exists", "leaf", leafID)
			delete(meta.FileOverrides, leafID)
		}
	}
	return nil
}

// ensurePeriodicNote creates the periodic note at p if p is exactly the path
// of some enabled series' note. It returns the matched granularity.
func (r *Resolver) ensurePeriodicNote(ctx context.Context, p string) (host.Granularity, error) {
	if r.periodic == nil {
		return "", nil
	}
	base := strings.TrimSuffix(path.Base(p), ".md")

	for _, g := range host.Granularities {
		s, ok := r.periodic.Settings(g)
		if !ok {
			continue
		}
		format := s.FormatFor(g)
		if i := strings.LastIndex(format, "/"); i >= 0 {
			format = format[i+1:]
		}
		date, err := datefmt.Parse(base, format, time.Local)
		if err != nil {
			continue
		}
		if s.NotePath(g, date) != p {
			continue
		}
		if _, exists := r.periodic.Get(g, date); !exists {
			created, err := r.periodic.Create(ctx, g, date)
			if err != nil {
				return g, err
			}
			r.logger.Debug("created periodic note", "granularity", g, "path", created)
		}
		return g, nil
	}
	return "", nil
}
