/*
Package jsonstore persists one entity collection per JSON document.

PURPOSE:
  Primary storage backend. Each collection (people, products, orders) owns a
  single pretty-printed JSON array on disk; every mutation is a full
  read-modify-write of that document. Collections are small, so correctness
  and a human-readable file beat clever partial writes.

DOCUMENT LIFECYCLE:
  - Open() creates the data directory and an empty "[]" document if missing,
    for every entity type uniformly.
  - Reads decode the whole array. A document that exists but does not decode
    fails with sales.ErrCorruptStore; it is never replaced with an empty
    list, so a truncating rewrite cannot destroy evidence of the corruption.
  - Writes marshal the whole array with 2-space indentation and land via
    temp file + rename, so a crash mid-write leaves the old document intact.

ID ASSIGNMENT:
  nextID = one past the highest id the collection has ever held. The
  high-water mark lives on the Store instance and is re-derived from the
  stored max when the document is opened.

CONCURRENCY:
  Single active mutator assumed. Two Stores (or processes) racing on the
  same document are last-writer-wins; nothing here detects that.

SEE ALSO:
  - sales/repository.go: the contract this implements
  - store/sqlite: same contract over a database file
*/
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/warp/sales-engine/sales"
)

// =============================================================================
// STORE - One JSON document per collection
// =============================================================================

// Store persists one entity collection at path.
type Store[T sales.Entity[T]] struct {
	path      string
	highWater int
}

// Open prepares a collection document at path, creating the parent directory
// and an empty document if needed, and derives the id high-water mark from
// whatever the document already holds.
func Open[T sales.Entity[T]](path string) (*Store[T], error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("create %s: %w", path, err)
		}
	} else if err != nil {
		return nil, err
	}

	s := &Store[T]{path: path}
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	s.highWater = sales.MaxID(records)
	return s, nil
}

// LoadAll returns all records in stored order.
func (s *Store[T]) LoadAll(_ context.Context) ([]T, error) {
	return s.load()
}

// Upsert inserts or replaces a record and writes the document back. id 0 is
// assigned the next id; a nonzero id replaces its match or, if nothing
// matches, is inserted as-is (permissive upsert).
func (s *Store[T]) Upsert(_ context.Context, record T) (T, error) {
	var zero T
	records, err := s.load()
	if err != nil {
		return zero, err
	}

	switch {
	case record.GetID() == 0:
		record = record.WithID(sales.NextID(records, s.highWater))
		records = append(records, record)
	default:
		replaced := false
		for i, r := range records {
			if r.GetID() == record.GetID() {
				records[i] = record // wholesale replace, no field merge
				replaced = true
				break
			}
		}
		if !replaced {
			records = append(records, record)
		}
	}

	if id := record.GetID(); id > s.highWater {
		s.highWater = id
	}
	if err := s.write(records); err != nil {
		return zero, err
	}
	return record, nil
}

// Delete removes the record with the given id. Absence is a no-op.
func (s *Store[T]) Delete(_ context.Context, id int) (bool, error) {
	records, err := s.load()
	if err != nil {
		return false, err
	}
	for i, r := range records {
		if r.GetID() == id {
			records = append(records[:i], records[i+1:]...)
			return true, s.write(records)
		}
	}
	return false, nil
}

// =============================================================================
// DOCUMENT I/O
// =============================================================================

func (s *Store[T]) load() ([]T, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []T{}, nil
	}
	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &sales.CorruptStoreError{Path: s.path, Cause: err}
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// write lands the document atomically: marshal, write to a temp file in the
// same directory, rename over the original.
func (s *Store[T]) write(records []T) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
