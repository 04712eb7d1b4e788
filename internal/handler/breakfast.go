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

	"github.com/chalets-du-lac/api/internal/breakfast"
	"github.com/chalets-du-lac/api/internal/enum"
	"github.com/chalets-du-lac/api/internal/model"
)

// deviceHeader carries the caller's stable device identifier. The breakfast
// flow is unauthenticated, so the device ID is what ties a guest to their
// standing order.
const deviceHeader = "X-Device-ID"

// BreakfastStore defines the store methods needed by the breakfast handlers.
// Satisfied by *store.Store; narrow interface for testability.
type BreakfastStore interface {
	CreateOrder(ctx context.Context, chalet, service string, items model.OrderItems) (model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (model.Order, error)
	UpdateOrder(ctx context.Context, id uuid.UUID, chalet, service string, items model.OrderItems) (model.Order, error)
	DeleteOrder(ctx context.Context, id uuid.UUID) error
	ListOrdersByService(ctx context.Context, service string) ([]model.Order, error)
}

// DeviceCache maps device IDs to their current breakfast order ID.
// Satisfied by *kvcache.Cache.
type DeviceCache interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// BreakfastHandler handles the guest-facing breakfast order flow.
type BreakfastHandler struct {
	store       BreakfastStore
	cache       DeviceCache
	guestChalet string
}

// NewBreakfastHandler creates a new BreakfastHandler.
func NewBreakfastHandler(store BreakfastStore, cache DeviceCache, guestChalet string) *BreakfastHandler {
	return &BreakfastHandler{store: store, cache: cache, guestChalet: guestChalet}
}

// RegisterRoutes registers breakfast endpoints on the given Chi router.
func (h *BreakfastHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Menu)
	r.Get("/orders/current", h.Current)
	r.Post("/orders", h.Create)
	r.Put("/orders/{id}", h.Update)
	r.Delete("/orders/{id}", h.Delete)
}

// --- Request / Response types ---

type breakfastOrderRequest struct {
	Chalet     string         `json:"chalet"`
	Quantities map[string]int `json:"quantities"`
}

type breakfastOrderResponse struct {
	Order      model.Order    `json:"order"`
	Quantities map[string]int `json:"quantities"`
	Total      string         `json:"total"`
}

type breakfastSummaryResponse struct {
	Orders     []model.Order  `json:"orders"`
	Quantities map[string]int `json:"quantities"`
	Total      string         `json:"total"`
}

// --- Handlers ---

// Menu returns the fixed breakfast price list.
func (h *BreakfastHandler) Menu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, breakfast.PriceList())
}

// Current returns the device's standing breakfast order, or 204 when the
// device has none. A cache entry pointing at a deleted order is dropped.
func (h *BreakfastHandler) Current(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(deviceHeader)
	if deviceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": deviceHeader + " header is required"})
		return
	}

	orderID, ok := h.cache.Get(deviceID)
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	id, err := uuid.Parse(orderID)
	if err != nil {
		h.forget(deviceID)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	o, err := h.store.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			h.forget(deviceID)
			w.WriteHeader(http.StatusNoContent)
			return
		}
		log.Printf("ERROR: current breakfast order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.respond(o))
}

// Create commits a new breakfast order for the device and remembers it so the
// device can re-open it later.
func (h *BreakfastHandler) Create(w http.ResponseWriter, r *http.Request) {
	deviceID := r.Header.Get(deviceHeader)
	if deviceID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": deviceHeader + " header is required"})
		return
	}

	req, problem := h.decode(r)
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	o, err := h.store.CreateOrder(r.Context(), req.Chalet, enum.ServiceBreakfastTag, itemsFromQuantities(req.Quantities))
	if err != nil {
		log.Printf("ERROR: create breakfast order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := h.cache.Set(deviceID, o.ID.String()); err != nil {
		log.Printf("ERROR: remember breakfast order: %v", err)
	}

	writeJSON(w, http.StatusCreated, h.respond(o))
}

// Update overwrites the device's breakfast order content.
func (h *BreakfastHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	req, problem := h.decode(r)
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	o, err := h.store.UpdateOrder(r.Context(), id, req.Chalet, enum.ServiceBreakfastTag, itemsFromQuantities(req.Quantities))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: update breakfast order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.respond(o))
}

// Delete cancels the device's breakfast order and forgets the device mapping.
func (h *BreakfastHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	if err := h.store.DeleteOrder(r.Context(), id); err != nil {
		log.Printf("ERROR: delete breakfast order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if deviceID := r.Header.Get(deviceHeader); deviceID != "" {
		h.forget(deviceID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary rolls every standing breakfast order up into per-item quantities,
// the view the kitchen preps from. Staff only; wired outside the guest routes.
func (h *BreakfastHandler) Summary(w http.ResponseWriter, r *http.Request) {
	orders, err := h.store.ListOrdersByService(r.Context(), enum.ServiceBreakfastTag)
	if err != nil {
		log.Printf("ERROR: breakfast summary: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	quantities := map[string]int{}
	for _, o := range orders {
		for name, item := range o.Items {
			quantities[name] += len(item.Instances)
		}
	}

	total := breakfast.Total(breakfast.PriceList(), quantities)
	writeJSON(w, http.StatusOK, breakfastSummaryResponse{
		Orders:     orders,
		Quantities: quantities,
		Total:      breakfast.FormatTotal(total),
	})
}

// --- Helpers ---

// decode parses and validates a breakfast order payload, defaulting the
// chalet for guests that did not pick one.
func (h *BreakfastHandler) decode(r *http.Request) (breakfastOrderRequest, string) {
	var req breakfastOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, "invalid request body"
	}
	if req.Chalet == "" {
		req.Chalet = h.guestChalet
	}

	total := 0
	for name, qty := range req.Quantities {
		if qty < 0 {
			return req, "negative quantity for " + name
		}
		total += qty
	}
	if total == 0 {
		return req, "order is empty"
	}
	return req, ""
}

func (h *BreakfastHandler) respond(o model.Order) breakfastOrderResponse {
	quantities := quantitiesFromItems(o.Items)
	total := breakfast.Total(breakfast.PriceList(), quantities)
	return breakfastOrderResponse{
		Order:      o,
		Quantities: quantities,
		Total:      breakfast.FormatTotal(total),
	}
}

func (h *BreakfastHandler) forget(deviceID string) {
	if err := h.cache.Remove(deviceID); err != nil {
		log.Printf("ERROR: forget breakfast order: %v", err)
	}
}

// itemsFromQuantities expands a flat name→quantity mapping into the instance
// shape committed orders use. Breakfast instances never carry extras.
func itemsFromQuantities(quantities map[string]int) model.OrderItems {
	items := make(model.OrderItems, len(quantities))
	for name, qty := range quantities {
		if qty <= 0 {
			continue
		}
		instances := make([]model.OrderItemInstance, 0, qty)
		for i := 0; i < qty; i++ {
			instances = append(instances, model.OrderItemInstance{
				ID:     model.NewInstanceID(),
				Extras: map[string]int{},
			})
		}
		items[name] = model.OrderItemWithInstances{Instances: instances}
	}
	return items
}

// quantitiesFromItems collapses a committed order back to the flat mapping
// the breakfast screen edits.
func quantitiesFromItems(items model.OrderItems) map[string]int {
	quantities := make(map[string]int, len(items))
	for name, item := range items {
		quantities[name] = len(item.Instances)
	}
	return quantities
}
