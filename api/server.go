/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. Logger:     Request logging
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. RequestID:  Unique ID per request for tracing
  4. instrument: Prometheus request count and latency per route pattern
  5. CORS:       Cross-origin requests for the frontend

ROUTE GROUPS:
  /api/students/*       Student management
  /api/classes/*        Class schedules and enrollment
  /api/sessions/*       Sessions (create = bootstrap with attendance)
  /api/attendance/*     Attendance records
  /api/payments/*       Payments
  /api/reports/*        Payroll, payroll export, student balance
  /api/dashboard        Today's summary
  /api/scenarios/*      Demo data (only when Options.EnableScenarios)
  /metrics              Prometheus scrape endpoint
  /healthz              Liveness and database ping

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAllowedOrigins are the dev frontend origins.
var DefaultAllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

// Options configures NewRouter.
type Options struct {
	// AllowedOrigins for CORS. Empty uses DefaultAllowedOrigins.
	AllowedOrigins []string

	// EnableScenarios mounts /api/scenarios, which can wipe the database.
	EnableScenarios bool
}

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts Options) *chi.Mux {
	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/students", func(r chi.Router) {
			r.Get("/", h.ListStudents)
			r.Post("/", h.CreateStudent)
			r.Get("/{id}", h.GetStudent)
			r.Put("/{id}", h.UpdateStudent)
			r.Delete("/{id}", h.DeleteStudent)
		})

		r.Route("/classes", func(r chi.Router) {
			r.Get("/", h.ListClasses)
			r.Post("/", h.CreateClass)
			r.Get("/{id}", h.GetClass)
			r.Put("/{id}", h.UpdateClass)
			r.Delete("/{id}", h.DeleteClass)
		})

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", h.ListSessions)
			r.Post("/", h.CreateSession)
			r.Get("/{id}", h.GetSession)
			r.Put("/{id}", h.UpdateSession)
			r.Delete("/{id}", h.DeleteSession)
			r.Post("/{id}/attendance/seed", h.SeedSessionAttendance)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", h.ListAttendance)
			r.Post("/", h.CreateAttendance)
			r.Post("/bulk", h.BulkUpsertAttendance)
			r.Put("/{id}", h.UpdateAttendance)
		})

		r.Route("/payments", func(r chi.Router) {
			r.Get("/", h.ListPayments)
			r.Post("/", h.CreatePayment)
			r.Get("/{id}", h.GetPayment)
			r.Put("/{id}", h.UpdatePayment)
			r.Delete("/{id}", h.DeletePayment)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/payroll", h.PayrollReport)
			r.Get("/payroll/export", h.ExportPayroll)
			r.Get("/student-balance/{id}", h.StudentBalance)
		})

		r.Get("/dashboard", h.Dashboard)

		if opts.EnableScenarios {
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", h.ListScenarios)
				r.Get("/current", h.GetCurrentScenario)
				r.Post("/load", h.LoadScenario)
				r.Post("/reset", h.ResetDatabase)
			})
		}
	})

	return r
}

// Health reports whether the database answers.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
