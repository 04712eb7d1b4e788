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

	"github.com/chalets-du-lac/api/internal/model"
)

// AnnouncementStore defines the store methods needed by announcement handlers.
// Satisfied by *store.Store; narrow interface for testability.
type AnnouncementStore interface {
	ListAnnouncements(ctx context.Context) ([]model.Announcement, error)
	CreateAnnouncement(ctx context.Context, title, content string) (model.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id uuid.UUID) error
}

// AnnouncementHandler handles guest-announcement endpoints.
type AnnouncementHandler struct {
	store AnnouncementStore
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(store AnnouncementStore) *AnnouncementHandler {
	return &AnnouncementHandler{store: store}
}

// RegisterRoutes registers announcement endpoints on the given Chi router.
func (h *AnnouncementHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
}

type announcementRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List returns all announcements newest first.
func (h *AnnouncementHandler) List(w http.ResponseWriter, r *http.Request) {
	announcements, err := h.store.ListAnnouncements(r.Context())
	if err != nil {
		log.Printf("ERROR: list announcements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if announcements == nil {
		announcements = []model.Announcement{}
	}
	writeJSON(w, http.StatusOK, announcements)
}

// Create publishes a new announcement.
func (h *AnnouncementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Title == "" || req.Content == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "title and content are required"})
		return
	}

	announcement, err := h.store.CreateAnnouncement(r.Context(), req.Title, req.Content)
	if err != nil {
		log.Printf("ERROR: create announcement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, announcement)
}

// Delete removes an announcement.
func (h *AnnouncementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid announcement ID"})
		return
	}

	if err := h.store.DeleteAnnouncement(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "announcement not found"})
			return
		}
		log.Printf("ERROR: delete announcement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
