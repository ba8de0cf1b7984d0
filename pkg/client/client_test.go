package client_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"prostore/internal/models"
	"prostore/internal/validation"
	"prostore/pkg/client"
)

// fakeAPI is a canned product API backed by a slice, serving the same
// envelope the real handlers produce.
type fakeAPI struct {
	products []models.Product
	nextID   uint
	requests int64
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 1}
}

func (f *fakeAPI) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&f.requests, 1)
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet:
			if len(f.products) == 0 {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false, "message": "Products not found.",
				})
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true, "data": f.products,
			})

		case r.Method == http.MethodPost:
			var in models.ProductInput
			json.NewDecoder(r.Body).Decode(&in)
			product, err := validation.NormalizeCreate(&in)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]interface{}{
					"success": false, "message": err.Error(),
				})
				return
			}
			product.ID = f.nextID
			f.nextID++
			f.products = append(f.products, *product)
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": true, "data": product,
			})

		case r.Method == http.MethodPut:
			var in models.ProductInput
			json.NewDecoder(r.Body).Decode(&in)
			for i := range f.products {
				if strings.HasSuffix(r.URL.Path, "/1") && f.products[i].ID == 1 {
					merged, err := validation.NormalizeUpdate(&in, &f.products[i])
					if err != nil {
						w.WriteHeader(http.StatusBadRequest)
						json.NewEncoder(w).Encode(map[string]interface{}{
							"success": false, "message": err.Error(),
						})
						return
					}
					f.products[i] = *merged
					json.NewEncoder(w).Encode(map[string]interface{}{
						"success": true, "data": merged,
					})
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false, "message": "Product not found.",
			})

		case r.Method == http.MethodDelete:
			for i := range f.products {
				if strings.HasSuffix(r.URL.Path, "/1") && f.products[i].ID == 1 {
					f.products = append(f.products[:i], f.products[i+1:]...)
					json.NewEncoder(w).Encode(map[string]interface{}{
						"success": true, "message": "Product Deleted Successfully.",
					})
					return
				}
			}
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false, "message": "Product not found.",
			})
		}
	})
}

func newStore(t *testing.T) (*client.Store, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	return client.New(srv.URL+"/api/products", srv.Client()), api
}

func TestStore_RefreshReplacesListWholesale(t *testing.T) {
	store, api := newStore(t)

	api.products = []models.Product{
		{ID: 1, Name: "Widget", Cost: decimal.RequireFromString("9.99")},
		{ID: 2, Name: "Gadget", Cost: decimal.RequireFromString("19.99")},
	}

	res := store.Refresh()
	assert.True(t, res.Success)
	assert.Len(t, store.Products(), 2)

	// A not-found (empty table) payload leaves an empty list, not an error.
	api.products = nil
	res = store.Refresh()
	assert.True(t, res.Success)
	assert.Empty(t, store.Products())
}

func TestStore_CreateAppendsServerRow(t *testing.T) {
	store, _ := newStore(t)

	res := store.Create(validation.Form{Name: "Widget", Cost: "9.999"})
	assert.True(t, res.Success)
	assert.Equal(t, "Product added successfully.", res.Message)

	products := store.Products()
	assert.Len(t, products, 1)
	// Server-assigned fields come from the response, not the local input.
	assert.Equal(t, uint(1), products[0].ID)
	assert.Equal(t, "10.00", products[0].Cost.StringFixed(2))
	assert.Equal(t, 0, products[0].Stock)
	assert.Equal(t, models.DefaultImageURL, products[0].Image)
}

func TestStore_CreatePreValidatesWithoutCalling(t *testing.T) {
	store, api := newStore(t)

	res := store.Create(validation.Form{Cost: "9.99"})
	assert.False(t, res.Success)
	assert.Equal(t, "Product must have a name.", res.Message)
	assert.Zero(t, atomic.LoadInt64(&api.requests))

	res = store.Create(validation.Form{Name: "Widget", Cost: "free"})
	assert.False(t, res.Success)
	assert.Equal(t, "Cost must be a valid decimal number, greater than zero.", res.Message)
	assert.Zero(t, atomic.LoadInt64(&api.requests))

	res = store.Create(validation.Form{Name: "Widget", Cost: "1.00", Stock: "many"})
	assert.False(t, res.Success)
	assert.Equal(t, "Stock must be a valid number.", res.Message)
	assert.Zero(t, atomic.LoadInt64(&api.requests))
}

func TestStore_UpdateReplacesMatchingRow(t *testing.T) {
	store, _ := newStore(t)

	store.Create(validation.Form{Name: "Widget", Cost: "9.99", Stock: "7"})

	res := store.Update(1, validation.Form{Name: "Gadget"})
	assert.True(t, res.Success)

	products := store.Products()
	assert.Len(t, products, 1)
	assert.Equal(t, "Gadget", products[0].Name)
	assert.Equal(t, "9.99", products[0].Cost.String()) // merged from stored row
	assert.Equal(t, 7, products[0].Stock)
}

func TestStore_UpdatePreValidatesAgainstMirror(t *testing.T) {
	store, api := newStore(t)

	store.Create(validation.Form{Name: "Widget", Cost: "9.99"})
	requestsAfterCreate := atomic.LoadInt64(&api.requests)

	// A non-positive cost is rejected locally, without a round-trip.
	res := store.Update(1, validation.Form{Cost: "-5"})
	assert.False(t, res.Success)
	assert.Equal(t, "Cost must be a valid decimal number, greater than zero.", res.Message)
	assert.Equal(t, requestsAfterCreate, atomic.LoadInt64(&api.requests))

	res = store.Update(1, validation.Form{Description: strings.Repeat("d", 501)})
	assert.False(t, res.Success)
	assert.Equal(t, "Description cannot exceed 500 characters.", res.Message)
	assert.Equal(t, requestsAfterCreate, atomic.LoadInt64(&api.requests))
}

func TestStore_DeleteRemovesMatchingRow(t *testing.T) {
	store, _ := newStore(t)

	store.Create(validation.Form{Name: "Widget", Cost: "9.99"})

	res := store.Delete(1)
	assert.True(t, res.Success)
	assert.Equal(t, "Product Deleted Successfully.", res.Message)
	assert.Empty(t, store.Products())

	// Second delete surfaces the server's not-found message.
	res = store.Delete(1)
	assert.False(t, res.Success)
	assert.Equal(t, "Product not found.", res.Message)
}

func TestStore_NetworkFailureIsCaught(t *testing.T) {
	api := newFakeAPI()
	srv := httptest.NewServer(api.handler())
	store := client.New(srv.URL+"/api/products", srv.Client())
	srv.Close()

	res := store.Create(validation.Form{Name: "Widget", Cost: "9.99"})
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Message)

	res = store.Refresh()
	assert.False(t, res.Success)
}
