package vault

import (
	"fmt"
	"log/slog"
	"sync"
)

// AppSettings is the host configuration kept in app.json.
type AppSettings struct {
	path   string
	logger *slog.Logger

	mu          sync.Mutex
	cfg         map[string]any
	lastWrite   uint64
	theme       string
	fontSize    float64
	transitions bool
	cssLoads    int
}

func openSettings(path string, logger *slog.Logger) (*AppSettings, error) {
	s := &AppSettings{path: path, logger: logger, transitions: true}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads app.json from disk.
func (s *AppSettings) Reload() error {
	cfg := map[string]any{}
	if _, err := readJSON(s.path, &cfg); err != nil {
		return fmt.Errorf("read %s: %w", s.path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	if theme, ok := cfg["theme"].(string); ok {
		s.theme = theme
	}
	if size, ok := cfg["baseFontSize"].(float64); ok {
		s.fontSize = size
	}
	return nil
}

func (s *AppSettings) Snapshot() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMap(s.cfg)
}

func (s *AppSettings) Get(key string) any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg[key]
}

func (s *AppSettings) Replace(cfg map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cloneMap(cfg)
}

// Set changes a single key in memory.
func (s *AppSettings) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg[key] = value
}

func (s *AppSettings) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := writeJSON(s.path, s.cfg)
	if err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.lastWrite = h
	return nil
}

// ownWrite reports whether the file on disk is the one this process last
// wrote.
func (s *AppSettings) ownWrite() bool {
	s.mu.Lock()
	last := s.lastWrite
	s.mu.Unlock()
	return last != 0 && fileHash(s.path) == last
}

func (s *AppSettings) ApplyTheme(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theme = name
	s.logger.Debug("theme applied", "theme", name)
}

func (s *AppSettings) ApplyFont(size float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fontSize = size
}

func (s *AppSettings) ReapplyCSS() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cssLoads++
}

func (s *AppSettings) SetTransitions(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transitions = enabled
}

// Theme returns the applied theme name.
func (s *AppSettings) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// FontSize returns the applied base font size.
func (s *AppSettings) FontSize() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fontSize
}
