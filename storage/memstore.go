package storage

import (
	"bytes"
	"sync"
)

// MemStore is an in-memory implementation of Store for tests and dry runs.
type MemStore struct {
	mu      sync.RWMutex
	buckets map[string]map[string][]byte
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{buckets: make(map[string]map[string][]byte)}
}

// Get returns a copy of the value under bucket/key.
func (s *MemStore) Get(bucket string, key []byte) ([]byte, error) {
	if err := checkKey(bucket, key); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.buckets[bucket][string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(v), nil
}

// Write applies the batch under a single lock.
func (s *MemStore) Write(batch *Batch) error {
	if err := batch.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, op := range batch.ops {
		b, ok := s.buckets[op.Bucket]
		if !ok {
			b = make(map[string][]byte)
			s.buckets[op.Bucket] = b
		}
		if op.Delete {
			delete(b, string(op.Key))
			continue
		}
		b[string(op.Key)] = bytes.Clone(op.Value)
	}
	return nil
}

// Scan visits matching keys in ascending order.
func (s *MemStore) Scan(bucket string, prefix []byte, fn func(key, value []byte) error) error {
	if bucket == "" {
		return ErrInvalidBucket
	}
	s.mu.RLock()
	var pairs []kv
	for k, v := range s.buckets[bucket] {
		if bytes.HasPrefix([]byte(k), prefix) {
			pairs = append(pairs, kv{key: []byte(k), value: bytes.Clone(v)})
		}
	}
	s.mu.RUnlock()
	return emit(pairs, fn)
}

// Close is a no-op.
func (s *MemStore) Close() error { return nil }
