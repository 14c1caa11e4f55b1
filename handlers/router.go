package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/satheeshds/invoicer/config"
	"github.com/satheeshds/invoicer/metrics"
	"github.com/satheeshds/invoicer/services"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter builds the HTTP handler: the API under /api/v1 plus health,
// metrics, API docs and the optional static UI.
func NewRouter(svc *services.Services, cfg config.Config) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHTTP)
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler)

	h := New(svc)

	// API routes with basic auth
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(BasicAuth(cfg.AuthUser, cfg.AuthPass))
		h.Mount(r)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Serve static files (UI)
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}
	return r
}
