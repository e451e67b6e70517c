/*
handlers.go - HTTP API handlers for the sales tracker

PURPOSE:
  Exposes the sales core via REST. Handles HTTP request/response, JSON
  serialization, caller-side validation, and delegates everything else to
  the sales package and the repositories.

ENDPOINTS:
  People:
    GET    /api/people              List (filters: name, tax_id contains)
    POST   /api/people              Create
    PUT    /api/people/{id}         Update (wholesale replace)
    DELETE /api/people/{id}         Delete (absent id is a no-op)

  Products:
    GET    /api/products            List (filters: name, code, min, max)
    POST   /api/products            Create
    PUT    /api/products/{id}       Update
    DELETE /api/products/{id}       Delete

  Orders:
    GET    /api/orders              List (filters: person, status) + sum
    POST   /api/orders              Create from person + product selection
    PUT    /api/orders/{id}         Update (received orders are frozen)
    DELETE /api/orders/{id}         Delete
    GET    /api/orders/{id}/person  Resolve the order's person reference

REQUEST FLOW:
  1. Parse HTTP request
  2. Enforce caller preconditions (the core assumes validated input)
  3. Call repositories / sales logic
  4. Serialize response

MUTATION FLOW:
  Handlers never patch an in-memory copy: every mutation goes through the
  repository and every read re-pulls via LoadAll. The repositories are the
  sole source of truth.

ERROR HANDLING:
  - 400: validation errors, unparseable input
  - 404: missing record on lookup (not on delete)
  - 409: editing a received order
  - 500: storage failures (corrupt document, I/O)

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/warp/sales-engine/sales"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	People   sales.Repository[sales.Person]
	Products sales.Repository[sales.Product]
	Orders   sales.Repository[sales.Order]

	// ValidTaxID is the opaque national-id predicate. The checksum algorithm
	// is not this system's business; anything injected here decides.
	ValidTaxID func(string) bool

	// Now stamps sale dates; tests pin it.
	Now func() time.Time
}

// NewHandler creates a handler over the three entity repositories.
func NewHandler(people sales.Repository[sales.Person], products sales.Repository[sales.Product], orders sales.Repository[sales.Order]) *Handler {
	return &Handler{
		People:     people,
		Products:   products,
		Orders:     orders,
		ValidTaxID: func(s string) bool { return strings.TrimSpace(s) != "" },
		Now:        time.Now,
	}
}

// =============================================================================
// PEOPLE HANDLERS
// =============================================================================

// ListPeople returns people, optionally narrowed by name / tax id search.
func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	people, err := h.People.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load people", err)
		return
	}

	q := r.URL.Query()
	filtered := sales.Apply(people,
		sales.TextContains(func(p sales.Person) string { return p.Name }, q.Get("name")),
		sales.TextContains(func(p sales.Person) string { return p.TaxID }, q.Get("tax_id")),
	)

	dtos := make([]PersonDTO, len(filtered))
	for i, p := range filtered {
		dtos[i] = toPersonDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreatePerson creates a new person.
func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	h.savePerson(w, r, 0)
}

// UpdatePerson replaces the person with the id in the URL.
func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	h.savePerson(w, r, id)
}

func (h *Handler) savePerson(w http.ResponseWriter, r *http.Request, id int) {
	var req SavePersonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", &sales.ValidationError{Field: "name", Message: "must not be blank"})
		return
	}
	if !h.ValidTaxID(req.TaxID) {
		writeError(w, http.StatusBadRequest, "Validation failed", &sales.ValidationError{Field: "tax_id", Message: "invalid tax id"})
		return
	}

	person, err := h.People.Upsert(r.Context(), sales.Person{
		ID:      id,
		Name:    req.Name,
		TaxID:   req.TaxID,
		Address: req.Address,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save person", err)
		return
	}

	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, toPersonDTO(person))
}

// DeletePerson removes a person. Deleting an absent id is a no-op by
// policy, reported in the body rather than by status code.
func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	removed, err := h.People.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete person", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns products, optionally narrowed by name/code search
// and an inclusive value range.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load products", err)
		return
	}

	q := r.URL.Query()
	min, err := optionalDecimal(q.Get("min"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid min", err)
		return
	}
	max, err := optionalDecimal(q.Get("max"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid max", err)
		return
	}

	filtered := sales.Apply(products,
		sales.TextContains(func(p sales.Product) string { return p.Name }, q.Get("name")),
		sales.TextContains(func(p sales.Product) string { return p.Code }, q.Get("code")),
		sales.ValueBetween(func(p sales.Product) decimal.Decimal { return p.Value }, min, max),
	)

	dtos := make([]ProductDTO, len(filtered))
	for i, p := range filtered {
		dtos[i] = toProductDTO(p)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateProduct creates a new product.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	h.saveProduct(w, r, 0)
}

// UpdateProduct replaces the product with the id in the URL.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	h.saveProduct(w, r, id)
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request, id int) {
	var req SaveProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", &sales.ValidationError{Field: "name", Message: "must not be blank"})
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "Validation failed", &sales.ValidationError{Field: "code", Message: "must not be blank"})
		return
	}
	value, err := decimal.NewFromString(strings.TrimSpace(req.Value))
	if err != nil || value.IsNegative() {
		writeError(w, http.StatusBadRequest, "Validation failed", &sales.ValidationError{Field: "value", Message: "must be a non-negative number"})
		return
	}

	product, err := h.Products.Upsert(r.Context(), sales.Product{
		ID:    id,
		Name:  req.Name,
		Code:  req.Code,
		Value: value,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save product", err)
		return
	}

	status := http.StatusOK
	if id == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, toProductDTO(product))
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	removed, err := h.Products.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete product", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// =============================================================================
// ORDER HANDLERS
// =============================================================================

// ListOrders returns orders narrowed by person name and/or status, plus the
// sum of the filtered totals (what the order grid shows at the bottom).
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Orders.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load orders", err)
		return
	}

	q := r.URL.Query()
	var personFilter *string
	if p := q.Get("person"); p != "" {
		personFilter = &p
	}
	var statusFilter *sales.OrderStatus
	if s := q.Get("status"); s != "" {
		parsed, err := sales.ParseOrderStatus(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", err)
			return
		}
		statusFilter = &parsed
	}

	filtered := sales.Apply(orders,
		sales.EqualTo(func(o sales.Order) string { return o.PersonName }, personFilter),
		sales.EqualTo(func(o sales.Order) sales.OrderStatus { return o.Status }, statusFilter),
	)

	dtos := make([]OrderDTO, len(filtered))
	for i, o := range filtered {
		dtos[i] = toOrderDTO(o)
	}
	writeJSON(w, http.StatusOK, OrderListDTO{
		Orders: dtos,
		Total:  sales.SumOrderTotals(filtered).String(),
	})
}

// CreateOrder builds a new order from the selected person and products.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	h.saveOrder(w, r, 0)
}

// UpdateOrder rebuilds the order with the id in the URL from the current
// selection. Orders that already reached "received" are frozen.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	orders, err := h.Orders.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load orders", err)
		return
	}
	for _, o := range orders {
		if o.ID == id && o.Status == sales.StatusReceived {
			writeError(w, http.StatusConflict, "Received orders cannot be edited", sales.ErrOrderReceived)
			return
		}
	}

	h.saveOrder(w, r, id)
}

func (h *Handler) saveOrder(w http.ResponseWriter, r *http.Request, id int) {
	var req SaveOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if len(req.ProductIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Validation failed", &sales.ValidationError{Field: "product_ids", Message: "select at least one product"})
		return
	}

	people, err := h.People.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load people", err)
		return
	}
	var person *sales.Person
	for i := range people {
		if people[i].ID == req.PersonID {
			person = &people[i]
			break
		}
	}
	if person == nil {
		writeError(w, http.StatusBadRequest, "Validation failed", &sales.ValidationError{Field: "person_id", Message: "select a person"})
		return
	}

	products, err := h.Products.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load products", err)
		return
	}
	byID := make(map[int]sales.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	selected := make([]sales.Product, 0, len(req.ProductIDs))
	for _, pid := range req.ProductIDs {
		p, ok := byID[pid]
		if !ok {
			writeError(w, http.StatusBadRequest, "Validation failed", &sales.ValidationError{Field: "product_ids", Message: "unknown product id " + strconv.Itoa(pid)})
			return
		}
		selected = append(selected, p)
	}

	payment := sales.PaymentCash
	if req.Payment != "" {
		payment, err = sales.ParsePaymentMethod(req.Payment)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid payment method", err)
			return
		}
	}
	status := sales.StatusPending
	if req.Status != "" {
		status, err = sales.ParseOrderStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid status", err)
			return
		}
	}

	order, err := h.Orders.Upsert(r.Context(), sales.BuildOrder(id, *person, selected, payment, status, h.Now()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save order", err)
		return
	}

	code := http.StatusOK
	if id == 0 {
		code = http.StatusCreated
	}
	writeJSON(w, code, toOrderDTO(order))
}

// DeleteOrder removes an order.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	removed, err := h.Orders.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete order", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// ResolveOrderPerson resolves the order's denormalized person reference.
// 404 here means the reference is an unresolved historical one (person
// deleted or renamed since the sale); clients should offer a re-pick.
func (h *Handler) ResolveOrderPerson(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	orders, err := h.Orders.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load orders", err)
		return
	}
	var order *sales.Order
	for i := range orders {
		if orders[i].ID == id {
			order = &orders[i]
			break
		}
	}
	if order == nil {
		writeError(w, http.StatusNotFound, "Order not found", nil)
		return
	}

	people, err := h.People.LoadAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load people", err)
		return
	}
	person, found := sales.ResolvePerson(*order, people)
	if !found {
		writeError(w, http.StatusNotFound, "Person reference is unresolved", nil)
		return
	}
	writeJSON(w, http.StatusOK, toPersonDTO(person))
}

// =============================================================================
// HELPERS
// =============================================================================

func urlID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		writeError(w, http.StatusBadRequest, "Invalid id", err)
		return 0, false
	}
	return id, true
}

func optionalDecimal(s string) (*decimal.Decimal, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
