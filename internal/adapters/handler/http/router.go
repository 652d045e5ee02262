package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewHandler(healthHandler *HealthHandler, statsHandler *StatsHandler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", healthHandler.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Route("/stats", func(r chi.Router) {
			r.Get("/{kind}", statsHandler.GetDayStats)
		})
	})

	return r
}
