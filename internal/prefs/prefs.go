// Package prefs stores user preferences as opaque key/value pairs.
package prefs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore keeps preferences in a single YAML document.
type FileStore struct {
	path string
	mu   sync.Mutex
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get(_ context.Context, keys ...string) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return nil, err
	}
	return pick(all, keys), nil
}

// Set merges values into the stored document.
func (s *FileStore) Set(_ context.Context, values map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.read()
	if err != nil {
		return err
	}
	for k, v := range values {
		all[k] = v
	}
	return s.write(all)
}

func (s *FileStore) read() (map[string]any, error) {
	all := map[string]any{}
	b, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	if err := yaml.Unmarshal(b, &all); err != nil {
		return nil, fmt.Errorf("failed to parse preferences: %w", err)
	}
	if all == nil {
		all = map[string]any{}
	}
	return all, nil
}

func (s *FileStore) write(all map[string]any) error {
	b, err := yaml.Marshal(all)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Memory is an in-process store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]any
}

func NewMemory() *Memory {
	return &Memory{data: map[string]any{}}
}

func (m *Memory) Get(_ context.Context, keys ...string) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return pick(m.data, keys), nil
}

func (m *Memory) Set(_ context.Context, values map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.data[k] = v
	}
	return nil
}

func pick(all map[string]any, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := all[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Strings converts a stored list back to []string. YAML decodes lists as
// []any, so both shapes are accepted.
func Strings(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return append([]string(nil), list...), true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
