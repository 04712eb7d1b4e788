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
	"github.com/shopspring/decimal"

	"github.com/chalets-du-lac/api/internal/enum"
	"github.com/chalets-du-lac/api/internal/model"
	"github.com/chalets-du-lac/api/internal/store"
)

// ProductStore defines the store methods needed by product handlers.
// Satisfied by *store.Store; narrow interface for testability.
type ProductStore interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (model.Product, error)
	CreateProduct(ctx context.Context, arg store.CreateProductParams) (model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, arg store.CreateProductParams) (model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// ProductHandler handles product CRUD endpoints.
type ProductHandler struct {
	store ProductStore
	hub   Broadcaster
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(store ProductStore, hub Broadcaster) *ProductHandler {
	return &ProductHandler{store: store, hub: hub}
}

// RegisterRoutes registers product CRUD endpoints on the given Chi router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type productExtraRequest struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

type productRequest struct {
	Name        string                `json:"name"`
	Category    string                `json:"category"`
	Description string                `json:"description"`
	Price       string                `json:"price"`
	Services    []string              `json:"services"`
	Extras      []productExtraRequest `json:"extras"`
}

// validate checks the request and converts it to store params.
func (req productRequest) validate() (store.CreateProductParams, string) {
	if req.Name == "" {
		return store.CreateProductParams{}, "name is required"
	}
	if req.Category == "" {
		return store.CreateProductParams{}, "category is required"
	}
	if req.Price == "" {
		return store.CreateProductParams{}, "price is required"
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		if errors.Is(err, errNegativePrice) {
			return store.CreateProductParams{}, "price must be >= 0"
		}
		return store.CreateProductParams{}, "invalid price"
	}

	if len(req.Services) == 0 {
		return store.CreateProductParams{}, "at least one service is required"
	}
	for _, s := range req.Services {
		if !enum.IsValidService(s) {
			return store.CreateProductParams{}, "invalid service: " + s
		}
	}

	var extras []model.Extra
	seen := make(map[string]bool, len(req.Extras))
	for _, e := range req.Extras {
		if e.Name == "" {
			return store.CreateProductParams{}, "extra name is required"
		}
		if seen[e.Name] {
			return store.CreateProductParams{}, "duplicate extra: " + e.Name
		}
		seen[e.Name] = true

		p, err := decimal.NewFromString(e.Price)
		if err != nil || p.IsNegative() {
			return store.CreateProductParams{}, "invalid extra price for " + e.Name
		}
		extras = append(extras, model.Extra{Name: e.Name, Price: p})
	}

	return store.CreateProductParams{
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		Price:       price,
		Services:    req.Services,
		Extras:      extras,
	}, ""
}

// --- Handlers ---

// List returns the full product catalog.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: list products: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if products == nil {
		products = []model.Product{}
	}
	writeJSON(w, http.StatusOK, products)
}

// Get returns a single product by ID.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: get product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// Create adds a new product to the catalog.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, problem := req.validate()
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	product, err := h.store.CreateProduct(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastCatalog(r.Context())
	writeJSON(w, http.StatusCreated, product)
}

// Update overwrites an existing product.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, problem := req.validate()
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: update product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastCatalog(r.Context())
	writeJSON(w, http.StatusOK, product)
}

// Delete removes a product from the catalog.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid product ID"})
		return
	}

	if err := h.store.DeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "product not found"})
			return
		}
		log.Printf("ERROR: delete product: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.broadcastCatalog(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// broadcastCatalog pushes the full catalog to product subscribers after a
// write. Subscribers treat each push as fully replacing prior state.
func (h *ProductHandler) broadcastCatalog(ctx context.Context) {
	products, err := h.store.ListProducts(ctx)
	if err != nil {
		log.Printf("ERROR: catalog snapshot: %v", err)
		return
	}
	broadcastSnapshot(h.hub, enum.TopicProducts, "products.snapshot", products)
}
