package vault

import (
	"log/slog"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/marcus/wsplus/internal/host"
)

// Env is the process environment. Reload re-reads the settings and layout
// files and picks up the editor engine from app.json.
type Env struct {
	platform    host.Platform
	prefersDark func() bool
	settings    *AppSettings
	layout      *LiveLayout
	logger      *slog.Logger

	mu          sync.Mutex
	livePreview bool
	reloads     int
}

func newEnv(p host.Platform, prefersDark func() bool, s *AppSettings, l *LiveLayout, logger *slog.Logger) *Env {
	if p == "" {
		p = host.Desktop
	}
	if prefersDark == nil {
		prefersDark = lipgloss.HasDarkBackground
	}
	e := &Env{platform: p, prefersDark: prefersDark, settings: s, layout: l, logger: logger}
	e.livePreview = livePreviewOf(s)
	return e
}

// livePreviewOf reads the editor engine flag; absent means live preview.
func livePreviewOf(s *AppSettings) bool {
	v, ok := s.Get("livePreview").(bool)
	return !ok || v
}

func (e *Env) Platform() host.Platform { return e.platform }

func (e *Env) PrefersDark() bool { return e.prefersDark() }

func (e *Env) LivePreviewLoaded() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.livePreview
}

func (e *Env) Reload() error {
	if err := e.settings.Reload(); err != nil {
		return err
	}
	if err := e.layout.Reload(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.livePreview = livePreviewOf(e.settings)
	e.reloads++
	e.logger.Info("vault reloaded", "livePreview", e.livePreview)
	return nil
}

// Reloads counts calls to Reload.
func (e *Env) Reloads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reloads
}
