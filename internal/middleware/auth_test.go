package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/chalets-du-lac/api/internal/auth"
	"github.com/chalets-du-lac/api/internal/model"
)

const testSecret = "test-secret"

func protected(t *testing.T, check func(model.Permissions) bool) http.Handler {
	t.Helper()
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := Authenticate(testSecret)(next)
	if check != nil {
		h = Authenticate(testSecret)(RequirePermission(check)(next))
	}
	return h
}

func tokenFor(t *testing.T, permissions model.Permissions) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, model.Employee{
		ID:          uuid.New(),
		Role:        "employé",
		Permissions: permissions,
	})
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func TestAuthenticate(t *testing.T) {
	h := protected(t, nil)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"valid", "Bearer " + tokenFor(t, model.Permissions{}), http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestRequirePermission(t *testing.T) {
	h := protected(t, func(p model.Permissions) bool { return p.ManageProducts })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, model.Permissions{ManageProducts: true}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 with the capability, got %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, model.Permissions{ViewOrders: true}))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 without the capability, got %d", w.Code)
	}
}
