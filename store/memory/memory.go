// Package memory provides an in-memory Repository implementation
// (for testing/dev).
package memory

import (
	"context"
	"sync"

	"github.com/warp/sales-engine/sales"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store keeps one collection in memory with the same semantics as the
// durable backends: insertion order, permissive upsert, ids never reused.
type Store[T sales.Entity[T]] struct {
	mu        sync.RWMutex
	records   []T
	highWater int
}

func New[T sales.Entity[T]]() *Store[T] {
	return &Store[T]{records: []T{}}
}

// Seed replaces the collection contents, for test setup. Ids are taken as
// given and the high-water mark follows the seeded max.
func (s *Store[T]) Seed(records []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]T{}, records...)
	s.highWater = sales.MaxID(s.records)
}

func (s *Store[T]) LoadAll(_ context.Context) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, len(s.records))
	copy(out, s.records)
	return out, nil
}

func (s *Store[T]) Upsert(_ context.Context, record T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.GetID() == 0 {
		record = record.WithID(sales.NextID(s.records, s.highWater))
		s.records = append(s.records, record)
	} else {
		replaced := false
		for i, r := range s.records {
			if r.GetID() == record.GetID() {
				s.records[i] = record
				replaced = true
				break
			}
		}
		if !replaced {
			s.records = append(s.records, record)
		}
	}

	if id := record.GetID(); id > s.highWater {
		s.highWater = id
	}
	return record, nil
}

func (s *Store[T]) Delete(_ context.Context, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.records {
		if r.GetID() == id {
			s.records = append(s.records[:i], s.records[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}
