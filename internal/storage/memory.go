package storage

import (
	"context"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record), now: time.Now}
}

func (s *MemoryStore) Load(ctx context.Context, key string) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.Payload = slices.Clone(rec.Payload)
	return rec, nil
}

func (s *MemoryStore) Save(ctx context.Context, key string, payload []byte, expected int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := s.records[key].Revision
	if current != expected {
		return current, ErrStaleRevision
	}
	next := current + 1
	s.records[key] = Record{
		Key:       key,
		Revision:  next,
		Payload:   slices.Clone(payload),
		UpdatedAt: s.now().UTC(),
	}
	return next, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
