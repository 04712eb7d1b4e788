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
	"golang.org/x/crypto/bcrypt"

	"github.com/chalets-du-lac/api/internal/enum"
	"github.com/chalets-du-lac/api/internal/model"
	"github.com/chalets-du-lac/api/internal/store"
)

// EmployeeStore defines the store methods needed by employee handlers.
// Satisfied by *store.Store; narrow interface for testability.
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]model.Employee, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (model.Employee, error)
	CreateEmployee(ctx context.Context, arg store.CreateEmployeeParams) (model.Employee, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, arg store.CreateEmployeeParams) (model.Employee, error)
	DeleteEmployee(ctx context.Context, id uuid.UUID) error
}

// EmployeeHandler handles staff-account management endpoints.
type EmployeeHandler struct {
	store EmployeeStore
}

// NewEmployeeHandler creates a new EmployeeHandler.
func NewEmployeeHandler(store EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{store: store}
}

// RegisterRoutes registers employee endpoints on the given Chi router.
func (h *EmployeeHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request types ---

type employeeRequest struct {
	FirstName   string            `json:"firstName"`
	LastName    string            `json:"lastName"`
	Email       string            `json:"email"`
	Phone       string            `json:"phone"`
	Role        string            `json:"role"`
	Active      *bool             `json:"active"`
	Permissions model.Permissions `json:"permissions"`
	Password    string            `json:"password"` // empty on update keeps the current one
}

// validate checks the request and converts it to store params. A non-empty
// password is hashed here so the store only ever sees hashes.
func (req employeeRequest) validate(passwordRequired bool) (store.CreateEmployeeParams, string) {
	if req.FirstName == "" || req.LastName == "" || req.Email == "" {
		return store.CreateEmployeeParams{}, "firstName, lastName and email are required"
	}
	if passwordRequired && req.Password == "" {
		return store.CreateEmployeeParams{}, "password is required"
	}

	role := req.Role
	if role == "" {
		role = enum.RoleEmployee
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	hashed := ""
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return store.CreateEmployeeParams{}, "invalid password"
		}
		hashed = string(h)
	}

	return store.CreateEmployeeParams{
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		Role:           role,
		Active:         active,
		Permissions:    req.Permissions,
		HashedPassword: hashed,
	}, ""
}

// --- Handlers ---

// List returns all staff accounts.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	employees, err := h.store.ListEmployees(r.Context())
	if err != nil {
		log.Printf("ERROR: list employees: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if employees == nil {
		employees = []model.Employee{}
	}
	writeJSON(w, http.StatusOK, employees)
}

// Get returns one staff account.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee ID"})
		return
	}

	employee, err := h.store.GetEmployee(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: get employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// Create adds a staff account with an explicit permission set.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, problem := req.validate(true)
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	employee, err := h.store.CreateEmployee(r.Context(), params)
	if err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
			return
		}
		log.Printf("ERROR: create employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, employee)
}

// Update overwrites a staff account's profile, role, active flag and
// permissions. Password only changes when the payload carries one.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee ID"})
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	params, problem := req.validate(false)
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": problem})
		return
	}

	employee, err := h.store.UpdateEmployee(r.Context(), id, params)
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
		case isUniqueViolation(err):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "email already registered"})
		default:
			log.Printf("ERROR: update employee: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, employee)
}

// Delete removes a staff account.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid employee ID"})
		return
	}

	if err := h.store.DeleteEmployee(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "employee not found"})
			return
		}
		log.Printf("ERROR: delete employee: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
