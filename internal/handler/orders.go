package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/enum"
	"github.com/chalets-du-lac/api/internal/model"
	"github.com/chalets-du-lac/api/internal/order"
)

// OrderStore defines the store methods needed by order handlers.
// Satisfied by *store.Store; narrow interface for testability.
type OrderStore interface {
	CreateOrder(ctx context.Context, chalet, service string, items model.OrderItems) (model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, chalet, service string, items model.OrderItems) (model.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListOrdersByChalet(ctx context.Context, chalet string) ([]model.Order, error)
	ListOrdersByService(ctx context.Context, service string) ([]model.Order, error)
	GetChalet(ctx context.Context, number string) (model.Chalet, error)
}

// OrderHandler handles committed-order endpoints.
type OrderHandler struct {
	store OrderStore
	hub   Broadcaster
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, hub Broadcaster) *OrderHandler {
	return &OrderHandler{store: store, hub: hub}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type orderRequest struct {
	Chalet  string           `json:"chalet"`
	Service string           `json:"service"`
	Order   model.OrderItems `json:"order"`
}

// validate normalizes the payload and reports the first problem found. The
// returned items have empty products pruned, zero-quantity extras dropped and
// instance IDs filled in.
func (req orderRequest) validate() (model.OrderItems, string) {
	if req.Chalet == "" {
		return nil, "chalet is required"
	}
	if !enum.IsValidService(req.Service) {
		return nil, "invalid service: " + req.Service
	}
	items := order.Normalize(req.Order)
	if len(items) == 0 {
		return nil, "order is empty"
	}
	return items, ""
}

// --- Handlers ---

// List returns committed orders newest first, filtered by ?chalet= (one tab)
// or ?service= (cross-chalet history for one service). Exactly one filter is
// required.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	chalet := r.URL.Query().Get("chalet")
	service := r.URL.Query().Get("service")

	var (
		orders []model.Order
		err    error
	)
	switch {
	case chalet != "" && service != "":
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chalet and service filters are exclusive"})
		return
	case chalet != "":
		orders, err = h.store.ListOrdersByChalet(r.Context(), chalet)
	case service != "":
		if !enum.IsValidService(service) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid service: " + service})
			return
		}
		orders, err = h.store.ListOrdersByService(r.Context(), service)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chalet or service query parameter is required"})
		return
	}
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// Create commits a new order to a chalet's tab. The chalet must exist and be
// occupied; a released chalet has no tab to bill against.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items, problem := req.validate()
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	chalet, err := h.store.GetChalet(r.Context(), req.Chalet)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "chalet not found"})
			return
		}
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if !chalet.Booked {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chalet is not occupied"})
		return
	}

	created, err := h.store.CreateOrder(r.Context(), req.Chalet, req.Service, items)
	if err != nil {
		log.Printf("ERROR: create order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastTab(r.Context(), created.Chalet)
	writeJSON(w, http.StatusCreated, created)
}

// Get returns a single committed order, the prefill for the edit flow.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	o, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, o)
}

// Update overwrites a committed order. The edit flow replaces the whole
// content rather than patching it.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req orderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	items, problem := req.validate()
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	updated, err := h.store.UpdateOrder(r.Context(), id, req.Chalet, req.Service, items)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastTab(r.Context(), updated.Chalet)
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes a committed order. Idempotent: deleting an already deleted
// order still returns 204.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	// Fetch first so the tab broadcast can target the right chalet. A miss
	// means there is nothing to broadcast either.
	o, err := h.store.GetOrder(r.Context(), id)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	found := err == nil

	if err := h.store.DeleteOrder(r.Context(), id); err != nil {
		log.Printf("ERROR: delete order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if found {
		h.broadcastTab(r.Context(), o.Chalet)
	}
	w.WriteHeader(http.StatusNoContent)
}

// broadcastTab pushes a chalet's full tab to its orders:<chalet> subscribers.
func (h *OrderHandler) broadcastTab(ctx context.Context, chalet string) {
	orders, err := h.store.ListOrdersByChalet(ctx, chalet)
	if err != nil {
		log.Printf("ERROR: tab snapshot: %v", err)
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}
	broadcastSnapshot(h.hub, enum.TopicOrders+":"+chalet, "orders.snapshot", orders)
}
