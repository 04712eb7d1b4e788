// Package router wires the HTTP surface: public guest endpoints, the staff
// API behind JWT auth, and the WebSocket snapshot subscriptions.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/chalets-du-lac/api/internal/config"
	"github.com/chalets-du-lac/api/internal/handler"
	"github.com/chalets-du-lac/api/internal/kvcache"
	"github.com/chalets-du-lac/api/internal/middleware"
	"github.com/chalets-du-lac/api/internal/model"
	"github.com/chalets-du-lac/api/internal/service"
	"github.com/chalets-du-lac/api/internal/store"
	"github.com/chalets-du-lac/api/internal/ws"
)

// New builds the full application router.
func New(cfg *config.Config, s *store.Store, hub *ws.Hub, closing *service.ClosingService, devices *kvcache.Cache) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Device-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authHandler := handler.NewAuthHandler(s, cfg.JWTSecret)
	menuHandler := handler.NewMenuHandler(s)
	productHandler := handler.NewProductHandler(s, hub)
	orderHandler := handler.NewOrderHandler(s, hub)
	chaletHandler := handler.NewChaletHandler(s, closing, hub)
	breakfastHandler := handler.NewBreakfastHandler(s, devices, cfg.GuestChalet)
	employeeHandler := handler.NewEmployeeHandler(s)
	activityHandler := handler.NewActivityHandler(s)
	announcementHandler := handler.NewAnnouncementHandler(s)

	// Public surface: health, auth, live snapshots (token-checked in the
	// upgrade itself) and the guest-facing breakfast and bulletin reads.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	authHandler.RegisterRoutes(r)
	r.Get("/ws/{topic}", func(w http.ResponseWriter, req *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, w, req)
	})
	r.Route("/breakfast", breakfastHandler.RegisterRoutes)
	r.Get("/activities", activityHandler.List)
	r.Get("/activities/{id}", activityHandler.Get)
	r.Get("/announcements", announcementHandler.List)

	// Staff surface: everything below requires a valid access token; write
	// endpoints additionally require the matching capability.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.JWTSecret))

		menuHandler.RegisterRoutes(r)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productHandler.List)
			r.Get("/{id}", productHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(func(p model.Permissions) bool { return p.ManageProducts }))
				r.Post("/", productHandler.Create)
				r.Put("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
			})
		})

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", orderHandler.Create)
			r.Get("/{id}", orderHandler.Get)
			r.Put("/{id}", orderHandler.Update)
			r.Delete("/{id}", orderHandler.Delete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(func(p model.Permissions) bool { return p.ViewOrders }))
				r.Get("/", orderHandler.List)
				r.Get("/breakfast-summary", breakfastHandler.Summary)
			})
		})

		r.Route("/chalets", func(r chi.Router) {
			r.Get("/", chaletHandler.List)
			r.Get("/{number}", chaletHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(func(p model.Permissions) bool { return p.ManageChalets }))
				r.Post("/{number}/assign", chaletHandler.Assign)
				r.Get("/{number}/consumption", chaletHandler.Consumption)
				r.Get("/{number}/consumption/export", chaletHandler.ConsumptionExport)
				r.Post("/{number}/close", chaletHandler.Close)
			})
		})

		r.Route("/employees", func(r chi.Router) {
			r.Use(middleware.RequirePermission(func(p model.Permissions) bool { return p.ManageEmployees }))
			employeeHandler.RegisterRoutes(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePermission(func(p model.Permissions) bool { return p.ManageActivities }))
			r.Post("/activities", activityHandler.Create)
			r.Put("/activities/{id}", activityHandler.Update)
			r.Delete("/activities/{id}", activityHandler.Delete)
			r.Post("/announcements", announcementHandler.Create)
			r.Delete("/announcements/{id}", announcementHandler.Delete)
		})
	})

	return r
}
