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
	"github.com/chalets-du-lac/api/internal/ws"
)

// mockHub records broadcasts so tests can assert on topic and event type.
type mockHub struct {
	topics []string
	events []ws.Event
}

func (m *mockHub) Broadcast(topic string, event ws.Event) {
	m.topics = append(m.topics, topic)
	m.events = append(m.events, event)
}

type mockOrderStore struct {
	chalets map[string]model.Chalet
	orders  map[uuid.UUID]model.Order
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{
		chalets: map[string]model.Chalet{
			"12": {Number: "12", Booked: true},
			"3":  {Number: "3", Booked: false},
		},
		orders: map[uuid.UUID]model.Order{},
	}
}

func (m *mockOrderStore) CreateOrder(_ context.Context, chalet, service string, items model.OrderItems) (model.Order, error) {
	o := model.Order{
		ID:        uuid.New(),
		Chalet:    chalet,
		Service:   service,
		Items:     items,
		CreatedAt: time.Now(),
	}
	m.orders[o.ID] = o
	return o, nil
}

func (m *mockOrderStore) GetOrder(_ context.Context, id uuid.UUID) (model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return model.Order{}, pgx.ErrNoRows
	}
	return o, nil
}

func (m *mockOrderStore) UpdateOrder(_ context.Context, id uuid.UUID, chalet, service string, items model.OrderItems) (model.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return model.Order{}, pgx.ErrNoRows
	}
	now := time.Now()
	o.Chalet = chalet
	o.Service = service
	o.Items = items
	o.UpdatedAt = &now
	m.orders[id] = o
	return o, nil
}

func (m *mockOrderStore) DeleteOrder(_ context.Context, id uuid.UUID) error {
	delete(m.orders, id)
	return nil
}

func (m *mockOrderStore) ListOrdersByChalet(_ context.Context, chalet string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.Chalet == chalet {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderStore) ListOrdersByService(_ context.Context, service string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.Service == service {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOrderStore) GetChalet(_ context.Context, number string) (model.Chalet, error) {
	c, ok := m.chalets[number]
	if !ok {
		return model.Chalet{}, pgx.ErrNoRows
	}
	return c, nil
}

func orderRouter(store *mockOrderStore, hub *mockHub) *chi.Mux {
	r := chi.NewRouter()
	h := NewOrderHandler(store, hub)
	r.Route("/orders", h.RegisterRoutes)
	return r
}

func TestCreateOrder(t *testing.T) {
	store := newMockOrderStore()
	hub := &mockHub{}
	r := orderRouter(store, hub)

	body := `{"chalet": "12", "service": "snack", "order": {
		"Pizza": {"instances": [{"extras": {"fromage": 2}}, {"extras": {}}]}
	}}`
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created model.Order
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Chalet != "12" || created.Service != "snack" {
		t.Errorf("unexpected order: %+v", created)
	}
	if len(created.Items["Pizza"].Instances) != 2 {
		t.Errorf("expected 2 instances, got %+v", created.Items)
	}
	for _, inst := range created.Items["Pizza"].Instances {
		if inst.ID == "" {
			t.Error("committed instances must carry IDs")
		}
	}

	if len(hub.topics) != 1 || hub.topics[0] != "orders:12" {
		t.Errorf("expected a tab snapshot on orders:12, got %v", hub.topics)
	}
}

func TestCreateOrderLegacyFlatShape(t *testing.T) {
	store := newMockOrderStore()
	r := orderRouter(store, &mockHub{})

	body := `{"chalet": "12", "service": "petit-dej", "order": {"Pain": 3}}`
	req := httptest.NewRequest("POST", "/orders", strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created model.Order
	json.Unmarshal(w.Body.Bytes(), &created)
	if len(created.Items["Pain"].Instances) != 3 {
		t.Errorf("flat quantity should expand to 3 instances, got %+v", created.Items)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty order", `{"chalet": "12", "service": "snack", "order": {}}`, http.StatusBadRequest},
		{"no chalet", `{"service": "snack", "order": {"Pain": 1}}`, http.StatusBadRequest},
		{"bad service", `{"chalet": "12", "service": "diner", "order": {"Pain": 1}}`, http.StatusBadRequest},
		{"chalet not booked", `{"chalet": "3", "service": "snack", "order": {"Pain": 1}}`, http.StatusBadRequest},
		{"unknown chalet", `{"chalet": "99", "service": "snack", "order": {"Pain": 1}}`, http.StatusNotFound},
		{"zero quantities only", `{"chalet": "12", "service": "snack", "order": {"Pain": 0}}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := orderRouter(newMockOrderStore(), &mockHub{})
			req := httptest.NewRequest("POST", "/orders", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateOrderReplacesContent(t *testing.T) {
	store := newMockOrderStore()
	existing, _ := store.CreateOrder(context.Background(), "12", "snack", model.OrderItems{
		"Pizza": {Instances: []model.OrderItemInstance{{ID: "i1", Extras: map[string]int{}}}},
	})
	hub := &mockHub{}
	r := orderRouter(store, hub)

	body := `{"chalet": "12", "service": "snack", "order": {
		"Coca": {"instances": [{"extras": {}}]}
	}}`
	req := httptest.NewRequest("PUT", "/orders/"+existing.ID.String(), strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var updated model.Order
	json.Unmarshal(w.Body.Bytes(), &updated)
	if _, ok := updated.Items["Pizza"]; ok {
		t.Error("update must fully replace the content")
	}
	if updated.UpdatedAt == nil {
		t.Error("update should stamp updatedAt")
	}
	if len(hub.topics) != 1 {
		t.Errorf("expected one tab snapshot, got %v", hub.topics)
	}
}

func TestUpdateOrderMissing(t *testing.T) {
	r := orderRouter(newMockOrderStore(), &mockHub{})

	body := `{"chalet": "12", "service": "snack", "order": {"Pain": 1}}`
	req := httptest.NewRequest("PUT", "/orders/"+uuid.NewString(), strings.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestDeleteOrderIdempotent(t *testing.T) {
	store := newMockOrderStore()
	existing, _ := store.CreateOrder(context.Background(), "12", "snack", model.OrderItems{
		"Pizza": {Instances: []model.OrderItemInstance{{ID: "i1", Extras: map[string]int{}}}},
	})
	hub := &mockHub{}
	r := orderRouter(store, hub)

	req := httptest.NewRequest("DELETE", "/orders/"+existing.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	// Second delete of the same ID still succeeds.
	req = httptest.NewRequest("DELETE", "/orders/"+existing.ID.String(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("expected 204 on repeat delete, got %d", w.Code)
	}

	// Only the first delete had a chalet to broadcast for.
	if len(hub.topics) != 1 {
		t.Errorf("expected one tab snapshot, got %v", hub.topics)
	}
}

func TestListOrdersFilterValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"no filter", "/orders"},
		{"both filters", "/orders?chalet=12&service=snack"},
		{"unknown service", "/orders?service=diner"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := orderRouter(newMockOrderStore(), &mockHub{})
			req := httptest.NewRequest("GET", tc.target, nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestListOrdersByService(t *testing.T) {
	store := newMockOrderStore()
	store.CreateOrder(context.Background(), "12", "snack", model.OrderItems{
		"Pizza": {Instances: []model.OrderItemInstance{{ID: "a", Extras: map[string]int{}}}},
	})
	store.CreateOrder(context.Background(), "7", "snack", model.OrderItems{
		"Coca": {Instances: []model.OrderItemInstance{{ID: "b", Extras: map[string]int{}}}},
	})
	store.CreateOrder(context.Background(), "12", "bar", model.OrderItems{
		"Bière": {Instances: []model.OrderItemInstance{{ID: "c", Extras: map[string]int{}}}},
	})
	r := orderRouter(store, &mockHub{})

	req := httptest.NewRequest("GET", "/orders?service=snack", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var orders []model.Order
	if err := json.Unmarshal(w.Body.Bytes(), &orders); err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected the 2 snack orders across chalets, got %d", len(orders))
	}
	for _, o := range orders {
		if o.Service != "snack" {
			t.Errorf("unexpected service in history: %s", o.Service)
		}
	}
}

func TestListOrdersEmptyTab(t *testing.T) {
	r := orderRouter(newMockOrderStore(), &mockHub{})

	req := httptest.NewRequest("GET", "/orders?chalet=12", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Errorf("empty tab should serialize as [], got %s", w.Body.String())
	}
}

func TestGetOrder(t *testing.T) {
	store := newMockOrderStore()
	existing, _ := store.CreateOrder(context.Background(), "12", "snack", model.OrderItems{
		"Pizza": {Instances: []model.OrderItemInstance{{ID: "i1", Extras: map[string]int{}}}},
	})
	r := orderRouter(store, &mockHub{})

	req := httptest.NewRequest("GET", "/orders/"+existing.ID.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/orders/"+uuid.NewString(), nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown order, got %d", w.Code)
	}
}
