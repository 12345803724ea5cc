package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/marcus/wsplus/internal/host"
)

// Files resolves vault-relative paths under the vault root. Paths never
// escape the root, symlinks included.
type Files struct {
	root string
}

func (f *Files) abs(p string) (string, error) {
	return securejoin.SecureJoin(f.root, host.NormalizePath(p))
}

func (f *Files) Exists(p string) bool {
	full, err := f.abs(p)
	if err != nil {
		return false
	}
	info, err := os.Stat(full)
	return err == nil && !info.IsDir()
}

// Resolve returns the normalized path of p, trying a ".md" suffix for bare
// link paths.
func (f *Files) Resolve(p string) (string, bool) {
	n := host.NormalizePath(p)
	if f.Exists(n) {
		return n, true
	}
	if !strings.HasSuffix(n, ".md") && f.Exists(n+".md") {
		return n + ".md", true
	}
	return "", false
}

// create makes an empty file at p if none exists.
func (f *Files) create(p string) error {
	full, err := f.abs(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return err
	}
	fh, err := os.OpenFile(full, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if errors.Is(err, os.ErrExist) {
		return nil
	}
	if err != nil {
		return err
	}
	return fh.Close()
}

// Periodic is the periodic notes configuration kept in periodic-notes.json.
type Periodic struct {
	files *Files

	mu     sync.Mutex
	series map[host.Granularity]host.PeriodicSettings
}

func openPeriodic(path string, files *Files) (*Periodic, error) {
	p := &Periodic{files: files, series: map[host.Granularity]host.PeriodicSettings{}}
	if _, err := readJSON(path, &p.series); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p, nil
}

func (p *Periodic) Settings(g host.Granularity) (host.PeriodicSettings, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.series[g]
	return s, ok && s.Enabled
}

func (p *Periodic) Get(g host.Granularity, date time.Time) (string, bool) {
	s, ok := p.Settings(g)
	if !ok {
		return "", false
	}
	path := s.NotePath(g, date)
	return path, p.files.Exists(path)
}

func (p *Periodic) Create(ctx context.Context, g host.Granularity, date time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s, ok := p.Settings(g)
	if !ok {
		return "", fmt.Errorf("periodic %s notes are disabled", g)
	}
	path := s.NotePath(g, date)
	if err := p.files.create(path); err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	return path, nil
}

// Templates holds the template date and time formats from templates.json.
type Templates struct {
	Date string `json:"dateFormat"`
	Time string `json:"timeFormat"`
}

func openTemplates(path string) (*Templates, error) {
	t := &Templates{}
	if _, err := readJSON(path, t); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if t.Date == "" {
		t.Date = "YYYY-MM-DD"
	}
	if t.Time == "" {
		t.Time = "HH:mm"
	}
	return t, nil
}

func (t *Templates) DateFormat() string { return t.Date }

func (t *Templates) TimeFormat() string { return t.Time }
