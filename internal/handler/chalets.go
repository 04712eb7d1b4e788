package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/chalets-du-lac/api/internal/consumption"
	"github.com/chalets-du-lac/api/internal/enum"
	"github.com/chalets-du-lac/api/internal/model"
	"github.com/chalets-du-lac/api/internal/service"
	"github.com/chalets-du-lac/api/internal/store"
)

// ChaletStore defines the store methods needed by chalet handlers.
// Satisfied by *store.Store; narrow interface for testability.
type ChaletStore interface {
	ListChalets(ctx context.Context) ([]model.Chalet, error)
	ListBookedChalets(ctx context.Context) ([]model.Chalet, error)
	GetChalet(ctx context.Context, number string) (model.Chalet, error)
	AssignChalet(ctx context.Context, number, clientID string) (model.Chalet, error)
	ListOrdersByChalet(ctx context.Context, chalet string) ([]model.Order, error)
}

// AccountCloser runs the export-mail-release account closing flow.
// Satisfied by *service.ClosingService.
type AccountCloser interface {
	Close(ctx context.Context, chaletNumber string) (*service.CloseResult, error)
}

// ChaletHandler handles chalet occupancy and consumption endpoints.
type ChaletHandler struct {
	store   ChaletStore
	closing AccountCloser
	hub     Broadcaster
}

// NewChaletHandler creates a new ChaletHandler.
func NewChaletHandler(store ChaletStore, closing AccountCloser, hub Broadcaster) *ChaletHandler {
	return &ChaletHandler{store: store, closing: closing, hub: hub}
}

// RegisterRoutes registers chalet endpoints on the given Chi router.
func (h *ChaletHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{number}", h.Get)
	r.Post("/{number}/assign", h.Assign)
	r.Get("/{number}/consumption", h.Consumption)
	r.Get("/{number}/consumption/export", h.ConsumptionExport)
	r.Post("/{number}/close", h.Close)
}

// --- Handlers ---

// List returns every chalet, or only the occupied ones with ?booked=true.
func (h *ChaletHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		chalets []model.Chalet
		err     error
	)
	if r.URL.Query().Get("booked") == "true" {
		chalets, err = h.store.ListBookedChalets(r.Context())
	} else {
		chalets, err = h.store.ListChalets(r.Context())
	}
	if err != nil {
		log.Printf("ERROR: list chalets: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if chalets == nil {
		chalets = []model.Chalet{}
	}
	writeJSON(w, http.StatusOK, chalets)
}

// Get returns one chalet by number.
func (h *ChaletHandler) Get(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	chalet, err := h.store.GetChalet(r.Context(), number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "chalet not found"})
			return
		}
		log.Printf("ERROR: get chalet: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, chalet)
}

type assignRequest struct {
	ClientID string `json:"clientId"`
}

// Assign attaches a client to an unoccupied chalet. A chalet already holding
// a client yields 409; the store's conditional write decides the winner when
// two devices race.
func (h *ChaletHandler) Assign(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ClientID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "clientId is required"})
		return
	}

	chalet, err := h.store.AssignChalet(r.Context(), number, req.ClientID)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "chalet not found"})
		case errors.Is(err, store.ErrChaletOccupied):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "chalet already occupied"})
		default:
			log.Printf("ERROR: assign chalet: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	h.broadcastChalets(r.Context())
	writeJSON(w, http.StatusOK, chalet)
}

// Consumption returns a chalet's aggregated consumption report as JSON.
func (h *ChaletHandler) Consumption(w http.ResponseWriter, r *http.Request) {
	report, ok := h.buildReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ConsumptionExport returns the consumption report as a downloadable CSV,
// the same document the closing flow mails out.
func (h *ChaletHandler) ConsumptionExport(w http.ResponseWriter, r *http.Request) {
	report, ok := h.buildReport(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("consommation_chalet_%s.csv", report.Chalet)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report.CSV())); err != nil {
		log.Printf("ERROR: write consumption export: %v", err)
	}
}

// Close runs the account-closing flow: export, mail, release, delete.
func (h *ChaletHandler) Close(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	result, err := h.closing.Close(r.Context(), number)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "chalet not found"})
		case errors.Is(err, service.ErrChaletNotBooked):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "chalet is not occupied"})
		case errors.Is(err, service.ErrMailUnavailable):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "mail is not available"})
		default:
			log.Printf("ERROR: close account: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	h.broadcastChalets(r.Context())
	h.broadcastTab(r.Context(), number)
	writeJSON(w, http.StatusOK, result)
}

// --- Helpers ---

// buildReport loads the chalet and its tab and aggregates them. On failure it
// writes the error response itself and reports ok=false.
func (h *ChaletHandler) buildReport(w http.ResponseWriter, r *http.Request) (*consumption.Report, bool) {
	number := chi.URLParam(r, "number")

	chalet, err := h.store.GetChalet(r.Context(), number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "chalet not found"})
			return nil, false
		}
		log.Printf("ERROR: consumption: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return nil, false
	}

	orders, err := h.store.ListOrdersByChalet(r.Context(), number)
	if err != nil {
		log.Printf("ERROR: consumption: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return nil, false
	}

	clientID := ""
	if chalet.ClientID != nil {
		clientID = *chalet.ClientID
	}
	report := consumption.BuildReport(number, clientID, orders)
	return &report, true
}

// broadcastChalets pushes the full chalet list to chalet subscribers after an
// occupancy change.
func (h *ChaletHandler) broadcastChalets(ctx context.Context) {
	chalets, err := h.store.ListChalets(ctx)
	if err != nil {
		log.Printf("ERROR: chalets snapshot: %v", err)
		return
	}
	if chalets == nil {
		chalets = []model.Chalet{}
	}
	broadcastSnapshot(h.hub, enum.TopicChalets, "chalets.snapshot", chalets)
}

// broadcastTab pushes a chalet's (now empty) tab after closing clears it.
func (h *ChaletHandler) broadcastTab(ctx context.Context, chalet string) {
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
