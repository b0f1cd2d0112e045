package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore keeps documents in process memory. Everything is lost on exit.
type MemoryStore struct {
	mutex     sync.RWMutex
	documents map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{documents: make(map[string][]byte)}
}

func (s *MemoryStore) Save(_ context.Context, key string, data []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.documents[key] = append([]byte(nil), data...)
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, exists := s.documents[key]
	if !exists {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.documents, key)
	return nil
}

func (s *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var keys []string
	for key := range s.documents {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
