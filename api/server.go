/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:     Unique ID per request for tracing
  2. RequestLogger: Structured request logging (zerolog)
  3. Recoverer:     Panic recovery (500 instead of crash)
  4. CORS:          Cross-origin requests for frontend

ROUTE GROUPS:
  /api/shifts/*       Shift CRUD and tip-out preview
  /api/insights       Aggregated analytics for one range/type filter
  /api/export/csv     CSV download
  /api/import/csv     CSV upload (append or replace)
  /api/settings       User preferences
  /api/seed           Sample data for a fresh database (dev only)

SECURITY NOTE:
  No authentication middleware. This is a single-user, on-device tool;
  the server binds for a local frontend.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/tiptally/main.go: Server startup
*/
package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		// Shift routes
		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", h.ListShifts)
			r.Post("/", h.CreateShift)
			r.Delete("/", h.DeleteAllShifts)
			r.Post("/preview", h.PreviewTipOut)
			r.Get("/{id}", h.GetShift)
			r.Put("/{id}", h.UpdateShift)
			r.Delete("/{id}", h.DeleteShift)
		})

		// Analytics
		r.Get("/insights", h.GetInsights)

		// CSV interchange
		r.Get("/export/csv", h.ExportCSV)
		r.Post("/import/csv", h.ImportCSV)

		// Settings routes
		r.Route("/settings", func(r chi.Router) {
			r.Get("/", h.GetSettings)
			r.Put("/", h.UpdateSettings)
		})

		// Sample data (dev only)
		r.Post("/seed", h.SeedData)
	})

	return r
}
