/*
server.go - HTTP router and middleware configuration

ROUTER: chi, with the usual stack: request IDs, panic recovery, structured
request logging (zerolog) and CORS for the local frontend.

ROUTE GROUPS:
  /api/generators     Export kind discovery
  /api/reports/*      Preview and export
  /api/tasks,users,holidays  Data browsing
  /api/scenarios/*    Demo data loaders (dev only)

SECURITY NOTE:
  No authentication middleware. Access control is assumed to happen
  upstream; the data source only ever returns permitted records.
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/warp/report-engine/logger"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, log *logger.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/generators", h.ListGenerators)

		r.Route("/reports", func(r chi.Router) {
			r.Post("/preview", h.PreviewReport)
			r.Post("/export", h.ExportReport)
		})

		r.Get("/tasks", h.ListTasks)
		r.Get("/users", h.ListUsers)
		r.Get("/holidays", h.ListHolidays)

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Post("/load", h.LoadScenario)
		})
	})

	return r
}

// requestLogger logs one line per request with the chi request ID attached.
func requestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.WithRequestID(middleware.GetReqID(r.Context())).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}
