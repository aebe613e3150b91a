package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryBackend keeps everything in process memory
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[int64]map[string]string
}

// NewMemoryBackend creates an empty in-memory backend
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[int64]map[string]string)}
}

// Profile returns the store of a profile
func (b *MemoryBackend) Profile(id int64) Store {
	return &memoryStore{backend: b, profile: id}
}

// Profiles lists profiles with at least one key
func (b *MemoryBackend) Profiles(_ context.Context) ([]int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]int64, 0, len(b.data))
	for id, values := range b.data {
		if len(values) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// Close is a no-op
func (b *MemoryBackend) Close() error { return nil }

// NewMemoryStore returns a standalone single-profile store
func NewMemoryStore() Store {
	return NewMemoryBackend().Profile(0)
}

type memoryStore struct {
	backend *MemoryBackend
	profile int64
}

func (s *memoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.backend.mu.RLock()
	defer s.backend.mu.RUnlock()
	value, ok := s.backend.data[s.profile][key]
	return value, ok, nil
}

func (s *memoryStore) Set(_ context.Context, key, value string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	values, ok := s.backend.data[s.profile]
	if !ok {
		values = make(map[string]string)
		s.backend.data[s.profile] = values
	}
	values[key] = value
	return nil
}

func (s *memoryStore) Remove(_ context.Context, key string) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.data[s.profile], key)
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	s.backend.mu.Lock()
	defer s.backend.mu.Unlock()
	delete(s.backend.data, s.profile)
	return nil
}
