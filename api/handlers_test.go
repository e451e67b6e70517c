package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/sales-engine/api"
	"github.com/warp/sales-engine/sales"
	"github.com/warp/sales-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

type testEnv struct {
	handler  *api.Handler
	router   http.Handler
	people   *memory.Store[sales.Person]
	products *memory.Store[sales.Product]
	orders   *memory.Store[sales.Order]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		people:   memory.New[sales.Person](),
		products: memory.New[sales.Product](),
		orders:   memory.New[sales.Order](),
	}
	env.handler = api.NewHandler(env.people, env.products, env.orders)
	env.handler.Now = func() time.Time {
		return time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	}
	env.router = api.NewRouter(env.handler)
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeAs[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// PEOPLE
// =============================================================================

func TestCreatePerson(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/people", api.SavePersonRequest{
		Name: "Alice", TaxID: "12345678900", Address: "Elm St",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	dto := decodeAs[api.PersonDTO](t, rec)
	assert.Equal(t, 1, dto.ID)
	assert.Equal(t, "Alice", dto.Name)
}

func TestCreatePerson_ValidationFailures(t *testing.T) {
	env := newTestEnv(t)
	env.handler.ValidTaxID = func(s string) bool { return s == "valid" }

	rec := env.do(t, http.MethodPost, "/api/people", api.SavePersonRequest{Name: "", TaxID: "valid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/people", api.SavePersonRequest{Name: "Alice", TaxID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	people, err := env.people.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, people, "rejected requests must never reach the repository")
}

func TestListPeople_ContainsFilters(t *testing.T) {
	env := newTestEnv(t)
	env.people.Seed([]sales.Person{
		{ID: 1, Name: "Alice", TaxID: "111"},
		{ID: 2, Name: "Bob", TaxID: "211"},
		{ID: 3, Name: "Alicia", TaxID: "311"},
	})

	rec := env.do(t, http.MethodGet, "/api/people?name=ali", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dtos := decodeAs[[]api.PersonDTO](t, rec)
	require.Len(t, dtos, 2)
	assert.Equal(t, "Alice", dtos[0].Name)
	assert.Equal(t, "Alicia", dtos[1].Name)

	rec = env.do(t, http.MethodGet, "/api/people?name=ali&tax_id=31", nil)
	dtos = decodeAs[[]api.PersonDTO](t, rec)
	require.Len(t, dtos, 1)
	assert.Equal(t, "Alicia", dtos[0].Name)
}

func TestDeletePerson_AbsentIsNoOp(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodDelete, "/api/people/42", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeAs[map[string]bool](t, rec)
	assert.False(t, out["removed"])
}

// =============================================================================
// PRODUCTS
// =============================================================================

func TestCreateProduct_ParsesDecimalValue(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/products", api.SaveProductRequest{
		Name: "Widget", Code: "W1", Value: "9.99",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	dto := decodeAs[api.ProductDTO](t, rec)
	assert.Equal(t, 1, dto.ID)
	assert.Equal(t, "9.99", dto.Value)
}

func TestCreateProduct_RejectsBadValue(t *testing.T) {
	env := newTestEnv(t)

	for _, value := range []string{"", "abc", "-1"} {
		rec := env.do(t, http.MethodPost, "/api/products", api.SaveProductRequest{
			Name: "Widget", Code: "W1", Value: value,
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "value %q should be rejected", value)
	}
}

func TestListProducts_RangeFilter(t *testing.T) {
	env := newTestEnv(t)
	env.products.Seed([]sales.Product{
		{ID: 1, Name: "A", Code: "A1", Value: dec("10")},
		{ID: 2, Name: "B", Code: "B1", Value: dec("20")},
		{ID: 3, Name: "C", Code: "C1", Value: dec("30")},
	})

	rec := env.do(t, http.MethodGet, "/api/products?min=15&name=B", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dtos := decodeAs[[]api.ProductDTO](t, rec)
	require.Len(t, dtos, 1)
	assert.Equal(t, 2, dtos[0].ID)

	rec = env.do(t, http.MethodGet, "/api/products?min=25&name=B", nil)
	dtos = decodeAs[[]api.ProductDTO](t, rec)
	assert.Empty(t, dtos)

	rec = env.do(t, http.MethodGet, "/api/products?min=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// ORDERS
// =============================================================================

func seedCatalog(env *testEnv) {
	env.people.Seed([]sales.Person{
		{ID: 1, Name: "Alice", TaxID: "111"},
		{ID: 2, Name: "Bob", TaxID: "222"},
	})
	env.products.Seed([]sales.Product{
		{ID: 1, Name: "Widget", Code: "W1", Value: dec("9.99")},
		{ID: 2, Name: "Gadget", Code: "G1", Value: dec("4.5")},
	})
}

func TestCreateOrder(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	rec := env.do(t, http.MethodPost, "/api/orders", api.SaveOrderRequest{
		PersonID:   1,
		ProductIDs: []int{1, 2},
		Payment:    "card",
		Status:     "paid",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	dto := decodeAs[api.OrderDTO](t, rec)
	assert.Equal(t, 1, dto.ID)
	assert.Equal(t, "Alice", dto.PersonName)
	assert.Equal(t, "14.49", dto.Total)
	assert.Equal(t, "card", dto.Payment)
	assert.Len(t, dto.Products, 2)
	assert.Equal(t, "2026-03-10T12:00:00Z", dto.SaleDate)
}

func TestCreateOrder_DefaultsAndValidation(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	// Defaults: cash + pending, like a freshly opened order form.
	rec := env.do(t, http.MethodPost, "/api/orders", api.SaveOrderRequest{
		PersonID: 1, ProductIDs: []int{1},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	dto := decodeAs[api.OrderDTO](t, rec)
	assert.Equal(t, "cash", dto.Payment)
	assert.Equal(t, "pending", dto.Status)

	// No products selected.
	rec = env.do(t, http.MethodPost, "/api/orders", api.SaveOrderRequest{PersonID: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown person.
	rec = env.do(t, http.MethodPost, "/api/orders", api.SaveOrderRequest{PersonID: 99, ProductIDs: []int{1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown product id.
	rec = env.do(t, http.MethodPost, "/api/orders", api.SaveOrderRequest{PersonID: 1, ProductIDs: []int{77}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListOrders_FiltersAndSum(t *testing.T) {
	env := newTestEnv(t)
	env.orders.Seed([]sales.Order{
		{ID: 1, PersonName: "Alice", Total: dec("10"), Status: sales.StatusPending},
		{ID: 2, PersonName: "Bob", Total: dec("20"), Status: sales.StatusPaid},
		{ID: 3, PersonName: "Alice", Total: dec("30"), Status: sales.StatusPaid},
	})

	rec := env.do(t, http.MethodGet, "/api/orders?person=Alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeAs[api.OrderListDTO](t, rec)
	assert.Len(t, list.Orders, 2)
	assert.Equal(t, "40", list.Total)

	rec = env.do(t, http.MethodGet, "/api/orders?person=Alice&status=paid", nil)
	list = decodeAs[api.OrderListDTO](t, rec)
	require.Len(t, list.Orders, 1)
	assert.Equal(t, 3, list.Orders[0].ID)
	assert.Equal(t, "30", list.Total)

	rec = env.do(t, http.MethodGet, "/api/orders?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateOrder_ResnapshotsSelection(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)

	rec := env.do(t, http.MethodPost, "/api/orders", api.SaveOrderRequest{
		PersonID: 1, ProductIDs: []int{1},
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeAs[api.OrderDTO](t, rec)

	rec = env.do(t, http.MethodPut, "/api/orders/1", api.SaveOrderRequest{
		PersonID: 2, ProductIDs: []int{1, 2}, Payment: "bank_slip", Status: "shipped",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeAs[api.OrderDTO](t, rec)

	assert.Equal(t, created.ID, updated.ID, "editing keeps the id")
	assert.Equal(t, "Bob", updated.PersonName)
	assert.Equal(t, "14.49", updated.Total)
	assert.Len(t, updated.Products, 2)
}

func TestUpdateOrder_ReceivedIsFrozen(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)
	env.orders.Seed([]sales.Order{
		{ID: 1, PersonName: "Alice", Total: dec("10"), Status: sales.StatusReceived},
	})

	rec := env.do(t, http.MethodPut, "/api/orders/1", api.SaveOrderRequest{
		PersonID: 1, ProductIDs: []int{1},
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestResolveOrderPerson(t *testing.T) {
	env := newTestEnv(t)
	seedCatalog(env)
	env.orders.Seed([]sales.Order{
		{ID: 1, PersonName: "Alice", Total: dec("10"), Status: sales.StatusPending},
		{ID: 2, PersonName: "Carol", Total: dec("20"), Status: sales.StatusPending},
	})

	rec := env.do(t, http.MethodGet, "/api/orders/1/person", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	dto := decodeAs[api.PersonDTO](t, rec)
	assert.Equal(t, 1, dto.ID)

	// Carol was deleted (or renamed) after the sale: unresolved reference.
	rec = env.do(t, http.MethodGet, "/api/orders/2/person", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/orders/99/person", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
