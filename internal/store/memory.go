package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the process-local fallback backend. It mirrors the Redis
// list and hash semantics the rest of the system relies on, but nothing
// survives a restart and it cannot be shared across processes.
type MemoryStore struct {
	mu       sync.RWMutex
	lists    map[string][][]byte
	hashes   map[string]map[string]string
	deadline map[string]time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		lists:    make(map[string][][]byte),
		hashes:   make(map[string]map[string]string),
		deadline: make(map[string]time.Time),
	}
}

func (s *MemoryStore) AppendBounded(ctx context.Context, key string, value []byte, maxLen int64) error {
	cp := make([]byte, len(value))
	copy(cp, value)

	s.mu.Lock()
	defer s.mu.Unlock()
	list := append([][]byte{cp}, s.lists[key]...)
	if maxLen > 0 && int64(len(list)) > maxLen {
		list = list[:maxLen]
	}
	s.lists[key] = list
	return nil
}

func (s *MemoryStore) ReadRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.lists[key]
	length := int64(len(list))
	if length == 0 {
		return nil, nil
	}

	if start < 0 {
		start += length
	}
	if stop < 0 {
		stop += length
	}
	if start < 0 {
		start = 0
	}
	if stop >= length {
		stop = length - 1
	}
	if start > stop || start >= length {
		return nil, nil
	}

	out := make([][]byte, 0, stop-start+1)
	for _, v := range list[start : stop+1] {
		cp := make([]byte, len(v))
		copy(cp, v)
		out = append(out, cp)
	}
	return out, nil
}

func (s *MemoryStore) SetAt(ctx context.Context, key string, index int64, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.lists[key]
	length := int64(len(list))
	if index < 0 {
		index += length
	}
	if index < 0 || index >= length {
		return ErrIndexOutOfRange
	}

	cp := make([]byte, len(value))
	copy(cp, value)
	list[index] = cp
	return nil
}

func (s *MemoryStore) SetField(ctx context.Context, key, field, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(key)
	hash := s.hashes[key]
	if hash == nil {
		hash = make(map[string]string)
		s.hashes[key] = hash
	}
	hash[field] = value
	if ttl > 0 {
		s.deadline[key] = time.Now().Add(ttl)
	}
	return nil
}

// GetField reads a hash field. It is not part of the Store contract but is
// handy for tests and diagnostics.
func (s *MemoryStore) GetField(key, field string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expireLocked(key)
	hash, ok := s.hashes[key]
	if !ok {
		return "", false
	}
	v, ok := hash[field]
	return v, ok
}

func (s *MemoryStore) expireLocked(key string) {
	if dl, ok := s.deadline[key]; ok && time.Now().After(dl) {
		delete(s.hashes, key)
		delete(s.deadline, key)
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
