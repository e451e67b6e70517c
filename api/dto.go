/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain model from the external API contract. Monetary values cross
  the wire as strings ("9.99") so clients never round-trip money through
  binary floats.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.
  The handlers enforce the caller-side preconditions the core assumes:
  non-blank person name + valid tax id, non-blank product name/code +
  non-negative value, order requires a person and at least one product.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/warp/sales-engine/sales"
)

// =============================================================================
// PEOPLE
// =============================================================================

// PersonDTO represents a person in API responses.
type PersonDTO struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address,omitempty"`
}

// SavePersonRequest creates (id omitted) or updates (id in URL) a person.
type SavePersonRequest struct {
	Name    string `json:"name"`
	TaxID   string `json:"tax_id"`
	Address string `json:"address,omitempty"`
}

func toPersonDTO(p sales.Person) PersonDTO {
	return PersonDTO{ID: p.ID, Name: p.Name, TaxID: p.TaxID, Address: p.Address}
}

// =============================================================================
// PRODUCTS
// =============================================================================

// ProductDTO represents a product in API responses.
type ProductDTO struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
	Value string `json:"value"`
}

// SaveProductRequest creates or updates a product. Value arrives as a
// string and must parse as a non-negative decimal.
type SaveProductRequest struct {
	Name  string `json:"name"`
	Code  string `json:"code"`
	Value string `json:"value"`
}

func toProductDTO(p sales.Product) ProductDTO {
	return ProductDTO{ID: p.ID, Name: p.Name, Code: p.Code, Value: p.Value.String()}
}

// =============================================================================
// ORDERS
// =============================================================================

// OrderDTO represents an order in API responses. Products is the snapshot
// stored on the order, not the live product records.
type OrderDTO struct {
	ID         int          `json:"id"`
	PersonName string       `json:"person_name"`
	Products   []ProductDTO `json:"products"`
	Total      string       `json:"total"`
	SaleDate   string       `json:"sale_date"`
	Payment    string       `json:"payment"`
	Status     string       `json:"status"`
}

// SaveOrderRequest creates or updates an order from the caller's current
// selection: a person and at least one product.
type SaveOrderRequest struct {
	PersonID   int    `json:"person_id"`
	ProductIDs []int  `json:"product_ids"`
	Payment    string `json:"payment"`
	Status     string `json:"status"`
}

// OrderListDTO wraps a filtered order view plus the sum of its totals.
type OrderListDTO struct {
	Orders []OrderDTO `json:"orders"`
	Total  string     `json:"total"`
}

func toOrderDTO(o sales.Order) OrderDTO {
	products := make([]ProductDTO, len(o.Products))
	for i, p := range o.Products {
		products[i] = toProductDTO(p)
	}
	return OrderDTO{
		ID:         o.ID,
		PersonName: o.PersonName,
		Products:   products,
		Total:      o.Total.String(),
		SaleDate:   o.SaleDate.Format(time.RFC3339),
		Payment:    string(o.Payment),
		Status:     string(o.Status),
	}
}

// ErrorResponse is the JSON shape of every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
