/*
Package sales provides the core domain model for the sales tracker.

PURPOSE:
  This package contains the entity types and the pure logic that keeps
  collections of them coherent: identity assignment, filtered projections,
  order aggregation, and cross-entity reference resolution. It performs no
  I/O itself; persistence lives behind the Repository interface (see
  repository.go) with concrete backends under store/.

KEY CONCEPTS IN THIS FILE (types.go):
  - Person:  a customer, identified by an integer id
  - Product: a sellable item with a decimal unit value
  - Order:   a sale, referencing a Person BY NAME and carrying a value-copy
             snapshot of the sold products

DESIGN PRINCIPLES:
  1. Value semantics: entities are plain values; Upsert replaces wholesale
  2. Precision: uses decimal.Decimal for all money, never float64
  3. Snapshot rule: an Order freezes its products and total at save time;
     later Product edits never change historical Orders
  4. Denormalized person reference: Order.PersonName is a name string, not a
     foreign key. Renaming a Person orphans their historical Orders. This is
     a documented quirk of the system, kept on purpose.

USAGE:
  p := sales.Product{Name: "Widget", Code: "W1", Value: decimal.NewFromFloat(9.99)}
  p, _ = products.Upsert(ctx, p) // p.ID now assigned

SEE ALSO:
  - repository.go: persistence contract and id assignment
  - filter.go:     filtered, selection-aware projections
  - aggregate.go:  order totals, snapshots, person resolution
*/
package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// PERSON
// =============================================================================

// Person is a customer. TaxID is free-form text; its checksum is validated by
// the caller layer before a Person reaches the repository, never re-checked
// here.
type Person struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address,omitempty"`
}

func (p Person) GetID() int           { return p.ID }
func (p Person) WithID(id int) Person { p.ID = id; return p }

// =============================================================================
// PRODUCT
// =============================================================================

// Product is a sellable item. Value is a decimal unit price; float64 is never
// used for money anywhere in this module.
type Product struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Code  string          `json:"code"`
	Value decimal.Decimal `json:"value"`
}

func (p Product) GetID() int            { return p.ID }
func (p Product) WithID(id int) Product { p.ID = id; return p }

// =============================================================================
// ORDER
// =============================================================================

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCard     PaymentMethod = "card"
	PaymentBankSlip PaymentMethod = "bank_slip"
)

// ParsePaymentMethod converts external input into a PaymentMethod.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(s) {
	case PaymentCash, PaymentCard, PaymentBankSlip:
		return PaymentMethod(s), nil
	}
	return "", fmt.Errorf("unknown payment method %q", s)
}

type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusPaid     OrderStatus = "paid"
	StatusShipped  OrderStatus = "shipped"
	StatusReceived OrderStatus = "received"
)

// ParseOrderStatus converts external input into an OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(s) {
	case StatusPending, StatusPaid, StatusShipped, StatusReceived:
		return OrderStatus(s), nil
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// Order is a sale. PersonName is a denormalized reference (see package doc).
// Products is a value-copy taken when the order is built; Total is the sum of
// those copies at that moment and is stored verbatim, never re-derived.
type Order struct {
	ID         int             `json:"id"`
	PersonName string          `json:"person_name"`
	Products   []Product       `json:"products"`
	Total      decimal.Decimal `json:"total"`
	SaleDate   time.Time       `json:"sale_date"`
	Payment    PaymentMethod   `json:"payment"`
	Status     OrderStatus     `json:"status"`
}

func (o Order) GetID() int          { return o.ID }
func (o Order) WithID(id int) Order { o.ID = id; return o }
