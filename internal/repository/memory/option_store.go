package memory

import (
	"bytes"
	"context"
	"sync"

	"github.com/VladKovDev/cryptocart/internal/domain/option"
)

type OptionStore struct {
	mu      sync.RWMutex
	options map[string][]byte
}

func NewOptionStore() *OptionStore {
	return &OptionStore{options: make(map[string][]byte)}
}

func (s *OptionStore) Get(_ context.Context, name string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.options[name]
	if !ok {
		return nil, option.ErrNotFound
	}
	return bytes.Clone(v), nil
}

func (s *OptionStore) Set(_ context.Context, name string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.options[name]; ok && bytes.Equal(old, value) {
		return false, nil
	}
	s.options[name] = bytes.Clone(value)
	return true, nil
}

func (s *OptionStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.options, name)
	return nil
}
