package handler

import (
	"context"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/chalets-du-lac/api/internal/enum"
	"github.com/chalets-du-lac/api/internal/menu"
	"github.com/chalets-du-lac/api/internal/model"
)

// MenuStore defines the store methods needed by the menu handler.
type MenuStore interface {
	ListProductsByService(ctx context.Context, service string) ([]model.Product, error)
}

// MenuHandler serves the categorized menu for one service.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterRoutes registers the menu endpoint on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.Get)
}

// Get returns the menu for ?service=, defaulting to snack.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	service := r.URL.Query().Get("service")
	if service == "" {
		service = enum.ServiceSnack
	}
	if !enum.IsValidService(service) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid service"})
		return
	}

	products, err := h.store.ListProductsByService(r.Context(), service)
	if err != nil {
		log.Printf("ERROR: menu products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	categories := menu.Build(products, service)
	if categories == nil {
		categories = []menu.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}
