package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/model"
	"github.com/chalets-du-lac/api/internal/store"
)

// ActivityStore defines the store methods needed by activity handlers.
// Satisfied by *store.Store; narrow interface for testability.
type ActivityStore interface {
	ListActivities(ctx context.Context) ([]model.Activity, error)
	GetActivity(ctx context.Context, id uuid.UUID) (model.Activity, error)
	CreateActivity(ctx context.Context, arg store.CreateActivityParams) (model.Activity, error)
	UpdateActivity(ctx context.Context, id uuid.UUID, arg store.CreateActivityParams) (model.Activity, error)
	DeleteActivity(ctx context.Context, id uuid.UUID) error
}

// ActivityHandler handles guest-activity management endpoints.
type ActivityHandler struct {
	store ActivityStore
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(store ActivityStore) *ActivityHandler {
	return &ActivityHandler{store: store}
}

// RegisterRoutes registers activity endpoints on the given Chi router.
func (h *ActivityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type activityRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
}

func (req activityRequest) validate() (store.CreateActivityParams, string) {
	if req.Name == "" {
		return store.CreateActivityParams{}, "name is required"
	}
	if req.StartsAt.IsZero() {
		return store.CreateActivityParams{}, "startsAt is required"
	}
	return store.CreateActivityParams{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
	}, ""
}

// List returns all activities ordered by start time.
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	activities, err := h.store.ListActivities(r.Context())
	if err != nil {
		log.Printf("ERROR: list activities: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if activities == nil {
		activities = []model.Activity{}
	}
	writeJSON(w, http.StatusOK, activities)
}

// Get returns one activity.
func (h *ActivityHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid activity ID"})
		return
	}

	activity, err := h.store.GetActivity(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "activity not found"})
			return
		}
		log.Printf("ERROR: get activity: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// Create adds a new activity.
func (h *ActivityHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, problem := req.validate()
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	activity, err := h.store.CreateActivity(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: create activity: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, activity)
}

// Update overwrites an existing activity.
func (h *ActivityHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid activity ID"})
		return
	}

	var req activityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, problem := req.validate()
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	activity, err := h.store.UpdateActivity(r.Context(), id, params)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "activity not found"})
			return
		}
		log.Printf("ERROR: update activity: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, activity)
}

// Delete removes an activity.
func (h *ActivityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid activity ID"})
		return
	}

	if err := h.store.DeleteActivity(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "activity not found"})
			return
		}
		log.Printf("ERROR: delete activity: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
