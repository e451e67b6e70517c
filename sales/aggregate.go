/*
aggregate.go - Order totals, product snapshots, person resolution

PURPOSE:
  The order-side invariants live here:
  - an order carries a value-copy of its products, frozen at save time
  - its total is the decimal sum of those copies, computed once and stored
    verbatim, never re-derived from live product records
  - an order points at its customer by name; resolving that name back to a
    Person is a plain lookup that may legitimately fail

HISTORICAL-SNAPSHOT GUARANTEE:
  Editing a product's price after a sale must not change what past orders
  say they were worth. BuildOrder snapshots and totals in one step so a
  caller cannot accidentally store live references.

SEE ALSO:
  - types.go: Order, Product, Person
  - filter.go: SumOrderTotals usually runs over a projection's Items
*/
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TOTALS
// =============================================================================

// ComputeTotal sums product values into a decimal total. Called once, when
// the order is built; the result is stored on the order and never recomputed.
func ComputeTotal(products []Product) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Value)
	}
	return total
}

// SumOrderTotals sums the stored totals of a set of orders, typically the
// filtered view shown to the user.
func SumOrderTotals(orders []Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		total = total.Add(o.Total)
	}
	return total
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// SnapshotProducts returns a value-copy of the selected products. Product is
// a plain value type, so copying the slice severs every tie to the source
// collection.
func SnapshotProducts(selected []Product) []Product {
	snapshot := make([]Product, len(selected))
	copy(snapshot, selected)
	return snapshot
}

// BuildOrder assembles a new or edited order from the current selection:
// products are snapshotted, the total is computed from the snapshot, and the
// sale date is stamped. Pass id 0 for a new order; an edit keeps its id and
// gets a fresh snapshot of whatever is now selected.
func BuildOrder(id int, person Person, selected []Product, payment PaymentMethod, status OrderStatus, at time.Time) Order {
	snapshot := SnapshotProducts(selected)
	return Order{
		ID:         id,
		PersonName: person.Name,
		Products:   snapshot,
		Total:      ComputeTotal(snapshot),
		SaleDate:   at,
		Payment:    payment,
		Status:     status,
	}
}

// =============================================================================
// REFERENCE RESOLUTION
// =============================================================================

// ResolvePerson finds the first Person whose name exactly matches the
// order's stored person name. A false result means the reference is an
// unresolved historical one (the person was deleted or renamed since the
// sale) - callers should offer a re-pick, not fail.
func ResolvePerson(order Order, people []Person) (Person, bool) {
	for _, p := range people {
		if p.Name == order.PersonName {
			return p, true
		}
	}
	return Person{}, false
}
