package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"securiguard/internal/api/handlers"
	"securiguard/internal/api/middleware"
)

// NewRouter builds the HTTP router with all routes and middleware
func NewRouter(deps handlers.Dependencies) http.Handler {
	h := handlers.New(deps)
	cfg := deps.Config

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(deps.Cache, cfg.RateLimit, deps.Logger))

		r.Post("/scan", h.Scan)
		r.Post("/scan/batch", h.BatchScan)
		r.Delete("/scan/{fingerprint}", h.Invalidate)
		r.Get("/stats", h.Stats)
	})

	return r
}
