/*
repository.go - Persistence contract for entity collections

PURPOSE:
  Defines the interface between the domain and durable storage. One
  Repository instance owns one entity collection (people, products or
  orders); the same generic contract is instantiated once per entity type
  instead of copy-pasting a store per entity.

CONTRACT:
  LoadAll: returns every record in stored order. A missing document is an
           empty collection; a present-but-undecodable one is ErrCorruptStore.
  Upsert:  insert-or-replace keyed by id. id==0 means "assign me one".
           A nonzero id that matches nothing is inserted under that id
           (permissive upsert - the legacy system behaves this way and
           callers rely on it when re-saving edited records).
  Delete:  removes by id, reports whether anything was removed. Absence is
           a no-op, not an error.

READ-MODIFY-WRITE:
  Every Upsert/Delete reloads the full collection, mutates it in memory and
  writes the whole document back. There is no partial write and no locking;
  two writers racing on the same document are last-writer-wins. Single
  active mutator is assumed.

ID ASSIGNMENT:
  Ids are positive, strictly increasing and never reused. The next id is
  one past the highest id the collection has ever held, so deleting the
  current highest record does not release its id. Backends track that
  high-water mark; after a reopen it is re-derived from the stored records,
  which is the best a plain record list can reconstruct.

IMPLEMENTATIONS:
  - store/jsonstore: one pretty-printed JSON document per collection
  - store/sqlite:    one table per collection, go-sqlite3
  - store/memory:    in-memory, for tests and dev

SEE ALSO:
  - filter.go: projections consume the slices LoadAll returns
*/
package sales

import "context"

// =============================================================================
// ENTITY CONSTRAINT
// =============================================================================

// Entity is the shape a record must have to live in a Repository: an integer
// identity plus a way to derive a copy with the identity filled in. The
// self-referential parameter keeps WithID returning the concrete type.
type Entity[T any] interface {
	GetID() int
	WithID(id int) T
}

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository persists one entity collection. It is the ONLY write path to
// that collection; callers re-pull via LoadAll after every mutation rather
// than patching their own copies.
type Repository[T Entity[T]] interface {
	// LoadAll returns all records in stored order. Missing document => empty.
	LoadAll(ctx context.Context) ([]T, error)

	// Upsert inserts or replaces the record and returns it with id populated.
	Upsert(ctx context.Context, record T) (T, error)

	// Delete removes the record with the given id if present.
	Delete(ctx context.Context, id int) (bool, error)
}

// NextID computes the id for a new record given the ids the collection
// currently holds and the highest id it has ever held.
func NextID[T Entity[T]](existing []T, highWater int) int {
	next := highWater + 1
	for _, r := range existing {
		if r.GetID() >= next {
			next = r.GetID() + 1
		}
	}
	if next < 1 {
		next = 1
	}
	return next
}

// MaxID returns the highest id in the collection, or 0 if it is empty.
func MaxID[T Entity[T]](records []T) int {
	max := 0
	for _, r := range records {
		if r.GetID() > max {
			max = r.GetID()
		}
	}
	return max
}
