package vault

import (
	"fmt"
	"sync"
)

// LocalStorage is the per-vault key/value store kept in local-storage.json.
type LocalStorage struct {
	path string

	mu   sync.Mutex
	data map[string]any
}

func openStorage(path string) (*LocalStorage, error) {
	s := &LocalStorage{path: path, data: map[string]any{}}
	if _, err := readJSON(path, &s.data); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return s, nil
}

func (s *LocalStorage) Load(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *LocalStorage) Save(key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	if _, err := writeJSON(s.path, s.data); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}
