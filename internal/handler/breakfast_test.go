package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/model"
)

type mockBreakfastStore struct {
	orders map[uuid.UUID]model.Order
}

func newMockBreakfastStore() *mockBreakfastStore {
	return &mockBreakfastStore{orders: map[uuid.UUID]model.Order{}}
}

func (m *mockBreakfastStore) CreateOrder(_ context.Context, chalet, service string, items model.OrderItems) (model.Order, error) {
	o := model.Order{ID: uuid.New(), Chalet: chalet, Service: service, Items: items, CreatedAt: time.Now()}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockBreakfastStore) GetOrder(_ context.Context, id uuid.UUID) (model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return model.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockBreakfastStore) UpdateOrder(_ context.Context, id uuid.UUID, chalet, service string, items model.OrderItems) (model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return model.Order{}, pgx.ErrNoRows
	}
	o.Chalet = chalet
	o.Service = service
	o.Items = items
	m.orders[id] = o
	return o, nil
}

func (m *mockBreakfastStore) DeleteOrder(_ context.Context, id uuid.UUID) error {
	delete(m.orders, id)
	return nil
}

func (m *mockBreakfastStore) ListOrdersByService(_ context.Context, service string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.Service == service {
			out = append(out, o)
		}
	}
	return out, nil
}

type mapCache map[string]string

func (c mapCache) Get(key string) (string, bool) { v, ok := c[key]; return v, ok }
func (c mapCache) Set(key, value string) error   { c[key] = value; return nil }
func (c mapCache) Remove(key string) error       { delete(c, key); return nil }

func breakfastRouter(s *mockBreakfastStore, cache mapCache) *chi.Mux {
	r := chi.NewRouter()
	h := NewBreakfastHandler(s, cache, "28")
	r.Route("/breakfast", h.RegisterRoutes)
	return r
}

func TestBreakfastMenu(t *testing.T) {
	r := breakfastRouter(newMockBreakfastStore(), mapCache{})

	req := httptest.NewRequest("GET", "/breakfast/menu", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var items []struct {
		Name  string `json:"name"`
		Price string `json:"price"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 3 || items[0].Name != "Pain" {
		t.Errorf("unexpected price list: %+v", items)
	}
}

func TestBreakfastCreate(t *testing.T) {
	store := newMockBreakfastStore()
	cache := mapCache{}
	r := breakfastRouter(store, cache)

	body := `{"quantities": {"Pain": 2, "Croissant": 1}}`
	req := httptest.NewRequest("POST", "/breakfast/orders", strings.NewReader(body))
	req.Header.Set("X-Device-ID", "tablet-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Order      model.Order    `json:"order"`
		Quantities map[string]int `json:"quantities"`
		Total      string         `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if resp.Order.Chalet != "28" {
		t.Errorf("expected guest chalet default 28, got %s", resp.Order.Chalet)
	}
	if resp.Order.Service != "petit-dej" {
		t.Errorf("expected service petit-dej, got %s", resp.Order.Service)
	}
	if resp.Quantities["Pain"] != 2 || resp.Quantities["Croissant"] != 1 {
		t.Errorf("unexpected quantities: %v", resp.Quantities)
	}
	if resp.Total != "6.50" {
		t.Errorf("expected total 6.50, got %s", resp.Total)
	}

	if cached, ok := cache["tablet-1"]; !ok || cached != resp.Order.ID.String() {
		t.Errorf("device mapping not stored: %v", cache)
	}
}

func TestBreakfastCreateValidation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		device string
		want   int
	}{
		{"no device", `{"quantities": {"Pain": 1}}`, "", http.StatusBadRequest},
		{"empty", `{"quantities": {}}`, "tablet-1", http.StatusBadRequest},
		{"all zero", `{"quantities": {"Pain": 0}}`, "tablet-1", http.StatusBadRequest},
		{"negative", `{"quantities": {"Pain": -1}}`, "tablet-1", http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := breakfastRouter(newMockBreakfastStore(), mapCache{})
			req := httptest.NewRequest("POST", "/breakfast/orders", strings.NewReader(tc.body))
			if tc.device != "" {
				req.Header.Set("X-Device-ID", tc.device)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestBreakfastCurrent(t *testing.T) {
	store := newMockBreakfastStore()
	o, _ := store.CreateOrder(context.Background(), "28", "petit-dej", model.OrderItems{
		"Pain": {Instances: []model.OrderItemInstance{
			{ID: "a", Extras: map[string]int{}},
			{ID: "b", Extras: map[string]int{}},
		}},
	})
	cache := mapCache{"tablet-1": o.ID.String()}
	r := breakfastRouter(store, cache)

	req := httptest.NewRequest("GET", "/breakfast/orders/current", nil)
	req.Header.Set("X-Device-ID", "tablet-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Quantities map[string]int `json:"quantities"`
		Total      string         `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Quantities["Pain"] != 2 {
		t.Errorf("expected Pain x2, got %v", resp.Quantities)
	}
	if resp.Total != "5.00" {
		t.Errorf("expected total 5.00, got %s", resp.Total)
	}
}

func TestBreakfastCurrentNoOrder(t *testing.T) {
	r := breakfastRouter(newMockBreakfastStore(), mapCache{})

	req := httptest.NewRequest("GET", "/breakfast/orders/current", nil)
	req.Header.Set("X-Device-ID", "tablet-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", w.Code)
	}
}

func TestBreakfastCurrentStaleCacheEntry(t *testing.T) {
	cache := mapCache{"tablet-1": uuid.NewString()}
	r := breakfastRouter(newMockBreakfastStore(), cache)

	req := httptest.NewRequest("GET", "/breakfast/orders/current", nil)
	req.Header.Set("X-Device-ID", "tablet-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if _, ok := cache["tablet-1"]; ok {
		t.Error("mapping to a deleted order should be dropped")
	}
}

func TestBreakfastUpdate(t *testing.T) {
	store := newMockBreakfastStore()
	o, _ := store.CreateOrder(context.Background(), "28", "petit-dej", model.OrderItems{
		"Pain": {Instances: []model.OrderItemInstance{{ID: "a", Extras: map[string]int{}}}},
	})
	r := breakfastRouter(store, mapCache{})

	body := `{"chalet": "28", "quantities": {"Croissant": 3}}`
	req := httptest.NewRequest("PUT", "/breakfast/orders/"+o.ID.String(), strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Quantities map[string]int `json:"quantities"`
		Total      string         `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Quantities) != 1 || resp.Quantities["Croissant"] != 3 {
		t.Errorf("update must replace the quantities, got %v", resp.Quantities)
	}
	if resp.Total != "4.50" {
		t.Errorf("expected total 4.50, got %s", resp.Total)
	}
}

func TestBreakfastSummary(t *testing.T) {
	store := newMockBreakfastStore()
	store.CreateOrder(context.Background(), "12", "petit-dej", model.OrderItems{
		"Pain":      {Instances: []model.OrderItemInstance{{ID: "a", Extras: map[string]int{}}, {ID: "b", Extras: map[string]int{}}}},
		"Croissant": {Instances: []model.OrderItemInstance{{ID: "c", Extras: map[string]int{}}}},
	})
	store.CreateOrder(context.Background(), "7", "petit-dej", model.OrderItems{
		"Pain": {Instances: []model.OrderItemInstance{{ID: "d", Extras: map[string]int{}}}},
	})
	// Orders from other services stay out of the roll-up.
	store.CreateOrder(context.Background(), "12", "snack", model.OrderItems{
		"Pizza": {Instances: []model.OrderItemInstance{{ID: "e", Extras: map[string]int{}}}},
	})

	r := chi.NewRouter()
	h := NewBreakfastHandler(store, mapCache{}, "28")
	r.Get("/orders/breakfast-summary", h.Summary)

	req := httptest.NewRequest("GET", "/orders/breakfast-summary", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Orders     []model.Order  `json:"orders"`
		Quantities map[string]int `json:"quantities"`
		Total      string         `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}

	if len(resp.Orders) != 2 {
		t.Errorf("expected the 2 breakfast orders, got %d", len(resp.Orders))
	}
	if resp.Quantities["Pain"] != 3 || resp.Quantities["Croissant"] != 1 {
		t.Errorf("unexpected roll-up: %v", resp.Quantities)
	}
	// 3 x 2.50 + 1 x 1.50
	if resp.Total != "9.00" {
		t.Errorf("expected total 9.00, got %s", resp.Total)
	}
}

func TestBreakfastDelete(t *testing.T) {
	store := newMockBreakfastStore()
	o, _ := store.CreateOrder(context.Background(), "28", "petit-dej", model.OrderItems{
		"Pain": {Instances: []model.OrderItemInstance{{ID: "a", Extras: map[string]int{}}}},
	})
	cache := mapCache{"tablet-1": o.ID.String()}
	r := breakfastRouter(store, cache)

	req := httptest.NewRequest("DELETE", "/breakfast/orders/"+o.ID.String(), nil)
	req.Header.Set("X-Device-ID", "tablet-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	if len(store.orders) != 0 {
		t.Error("order not deleted")
	}
	if _, ok := cache["tablet-1"]; ok {
		t.Error("device mapping should be forgotten on delete")
	}
}
