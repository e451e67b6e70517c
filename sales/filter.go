/*
filter.go - Filtered, selection-aware collection projections

PURPOSE:
  Keeps a derived subset of an in-memory collection consistent while the
  collection and the filter inputs change underneath it. This is the engine
  behind every filtered grid in the application: products narrowed by name,
  code or price range, orders narrowed by customer and status.

PREDICATE MODEL:
  A predicate is just func(T) bool. Constructors below build the three kinds
  the application uses, and each constructor returns NIL when its input means
  "no filter" (blank search text, no bounds, no selection). A nil predicate
  is inactive and matches everything. Active predicates combine with AND.

RECOMPUTE CONTRACT:
  Full recompute, never incremental: every change rescans the whole source
  and re-evaluates every active predicate, preserving source order.
  Collections here are small in-memory lists; simplicity wins over
  incremental bookkeeping.

SELECTION:
  A Projection remembers the selected element by id, not by reference. After
  a recompute the selection sticks only if an element with that id is still
  in the filtered view; otherwise it becomes "none". A selection cleared
  this way is NOT restored when a later recompute readmits the element - it
  was cleared, not cached.

THREADING:
  Not safe for concurrent use. A Projection runs on whatever goroutine owns
  the source collection, same as the rest of this package.

SEE ALSO:
  - aggregate.go: SumOrderTotals is typically fed a projection's Items
*/
package sales

import (
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PREDICATES
// =============================================================================

// Predicate reports whether a record belongs in a filtered view.
type Predicate[T any] func(T) bool

// TextContains matches records whose field contains query, case-insensitive.
// Blank or whitespace-only query deactivates the filter (returns nil).
func TextContains[T any](field func(T) string, query string) Predicate[T] {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	query = strings.ToLower(query)
	return func(r T) bool {
		return strings.Contains(strings.ToLower(field(r)), query)
	}
}

// ValueBetween matches records whose decimal field lies in [min, max], both
// bounds inclusive and each optional. No bounds deactivates the filter.
func ValueBetween[T any](field func(T) decimal.Decimal, min, max *decimal.Decimal) Predicate[T] {
	if min == nil && max == nil {
		return nil
	}
	return func(r T) bool {
		v := field(r)
		if min != nil && v.LessThan(*min) {
			return false
		}
		if max != nil && v.GreaterThan(*max) {
			return false
		}
		return true
	}
}

// EqualTo matches records whose field equals *want exactly. A nil want means
// "no selection" and deactivates the filter.
func EqualTo[T any, V comparable](field func(T) V, want *V) Predicate[T] {
	if want == nil {
		return nil
	}
	w := *want
	return func(r T) bool { return field(r) == w }
}

// Apply returns the records satisfying every active predicate, in source
// order. Nil predicates are skipped. This is the pure core of the engine;
// Projection wraps it with selection tracking.
func Apply[T any](source []T, predicates ...Predicate[T]) []T {
	filtered := make([]T, 0, len(source))
next:
	for _, r := range source {
		for _, p := range predicates {
			if p != nil && !p(r) {
				continue next
			}
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// =============================================================================
// PROJECTION - Live filtered view with selection preservation
// =============================================================================

// Projection is a filtered view over a source collection. Changing the
// source or any predicate triggers a synchronous full recompute.
type Projection[T Entity[T]] struct {
	source     []T
	predicates map[string]Predicate[T]
	filtered   []T
	selectedID int // 0 = no selection
}

func NewProjection[T Entity[T]]() *Projection[T] {
	return &Projection[T]{predicates: make(map[string]Predicate[T])}
}

// SetSource replaces the source collection, typically with a fresh LoadAll
// result after a mutation, and recomputes.
func (p *Projection[T]) SetSource(source []T) {
	p.source = source
	p.recompute()
}

// SetPredicate installs or replaces the named predicate and recomputes.
// A nil predicate clears the slot (the filter field went blank).
func (p *Projection[T]) SetPredicate(name string, pred Predicate[T]) {
	if pred == nil {
		delete(p.predicates, name)
	} else {
		p.predicates[name] = pred
	}
	p.recompute()
}

// Items returns the current filtered view in source order. Callers must not
// mutate the returned slice.
func (p *Projection[T]) Items() []T { return p.filtered }

// Select marks the element with the given id as selected and reports whether
// it is present in the filtered view. Selecting an absent id is a no-op.
func (p *Projection[T]) Select(id int) bool {
	for _, r := range p.filtered {
		if r.GetID() == id {
			p.selectedID = id
			return true
		}
	}
	return false
}

// ClearSelection resets the selection to "none".
func (p *Projection[T]) ClearSelection() { p.selectedID = 0 }

// Selected returns the currently selected element, if any. The element is
// looked up in the live filtered view, never a stale copy.
func (p *Projection[T]) Selected() (T, bool) {
	var zero T
	if p.selectedID == 0 {
		return zero, false
	}
	for _, r := range p.filtered {
		if r.GetID() == p.selectedID {
			return r, true
		}
	}
	return zero, false
}

func (p *Projection[T]) recompute() {
	preds := make([]Predicate[T], 0, len(p.predicates))
	for _, pred := range p.predicates {
		preds = append(preds, pred)
	}
	p.filtered = Apply(p.source, preds...)

	// Re-locate the selection by id; drop it if the element left the view.
	if p.selectedID != 0 {
		found := false
		for _, r := range p.filtered {
			if r.GetID() == p.selectedID {
				found = true
				break
			}
		}
		if !found {
			p.selectedID = 0
		}
	}
}
