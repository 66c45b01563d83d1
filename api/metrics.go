package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuition_http_requests_total",
		Help: "HTTP requests by method, route pattern and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tuition_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route pattern.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	reportsGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tuition_reports_generated_total",
		Help: "Reports generated, by kind.",
	}, []string{"report"})

	sessionsBootstrapped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tuition_sessions_bootstrapped_total",
		Help: "Sessions created with seeded attendance.",
	})

	attendanceSeeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tuition_attendance_seeded_total",
		Help: "Attendance records written by session seeding.",
	})
)

// instrument records request count and latency keyed by chi route pattern,
// so /api/students/{id} is one series regardless of id.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpRequests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		httpDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
