// Package client implements the UI-facing product store: an in-memory
// mirror of the server's product list plus the CRUD actions that keep it
// in sync. The mirror only changes after the server confirms a mutation,
// and every action reports a uniform Result so callers can surface
// feedback the same way regardless of operation.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"prostore/internal/models"
	"prostore/internal/validation"
)

// Result is the uniform outcome of a store action.
type Result struct {
	Success bool
	Message string
}

// envelope mirrors the server's {success, data|message} response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// Store holds the product list for a UI session. It is an explicitly
// scoped value meant to be constructed once and injected into the view
// layer, not a package-level singleton.
type Store struct {
	baseURL string
	http    *http.Client

	mu       sync.RWMutex
	products []models.Product
}

// New creates a Store talking to the product API mounted at baseURL
// (e.g. "http://localhost:8080/api/products").
func New(baseURL string, httpClient *http.Client) *Store {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Store{
		baseURL: baseURL,
		http:    httpClient,
	}
}

// Products returns a snapshot of the mirrored list.
func (s *Store) Products() []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Refresh fetches all products and replaces the local list wholesale. A
// payload whose data is not a product array (the server reports an empty
// table as not found) leaves an empty list.
func (s *Store) Refresh() Result {
	resp, err := s.http.Get(s.baseURL + "/")
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	var products []models.Product
	if err := json.Unmarshal(env.Data, &products); err != nil || products == nil {
		products = []models.Product{}
	}

	s.mu.Lock()
	s.products = products
	s.mu.Unlock()

	return Result{Success: true, Message: "Products loaded."}
}

// Create validates the form locally, posts it, and on success appends the
// server-returned row so server-assigned fields (id, defaults) are kept.
func (s *Store) Create(form validation.Form) Result {
	input, err := validation.ParseForm(form)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	// Best-effort pre-check; the server re-validates regardless.
	if _, err := validation.NormalizeCreate(input); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	env, err := s.send(http.MethodPost, s.baseURL+"/", input)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	if !env.Success {
		return Result{Success: false, Message: env.Message}
	}

	var created models.Product
	if err := json.Unmarshal(env.Data, &created); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	s.mu.Lock()
	s.products = append(s.products, created)
	s.mu.Unlock()

	return Result{Success: true, Message: "Product added successfully."}
}

// Update validates the form locally, sends the partial update, and on
// success replaces the matching local row with the server-returned row.
func (s *Store) Update(id uint, form validation.Form) Result {
	input, err := validation.ParseForm(form)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	// Best-effort pre-check of the merge against the mirrored row; the
	// server re-validates against the stored row regardless.
	if mirrored := s.find(id); mirrored != nil {
		if _, err := validation.NormalizeUpdate(input, mirrored); err != nil {
			return Result{Success: false, Message: err.Error()}
		}
	}

	env, err := s.send(http.MethodPut, fmt.Sprintf("%s/%d", s.baseURL, id), input)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	if !env.Success {
		return Result{Success: false, Message: env.Message}
	}

	var updated models.Product
	if err := json.Unmarshal(env.Data, &updated); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	s.mu.Lock()
	for i := range s.products {
		if s.products[i].ID == id {
			s.products[i] = updated
		}
	}
	s.mu.Unlock()

	return Result{Success: true, Message: "Product updated successfully."}
}

// Delete removes the product on the server and, on success, drops the
// matching row from the local list.
func (s *Store) Delete(id uint) Result {
	env, err := s.send(http.MethodDelete, fmt.Sprintf("%s/%d", s.baseURL, id), nil)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}
	if !env.Success {
		return Result{Success: false, Message: env.Message}
	}

	s.mu.Lock()
	kept := s.products[:0]
	for _, p := range s.products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.products = kept
	s.mu.Unlock()

	return Result{Success: true, Message: env.Message}
}

// find returns a copy of the mirrored row with the given id, or nil when
// the mirror has no such row.
func (s *Store) find(id uint) *models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.products {
		if s.products[i].ID == id {
			p := s.products[i]
			return &p
		}
	}
	return nil
}

// send issues a request with an optional JSON body and decodes the
// response envelope. Network failures surface as errors; HTTP failure
// statuses come back inside the envelope.
func (s *Store) send(method, url string, body interface{}) (*envelope, error) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, err
	}
	return &env, nil
}
