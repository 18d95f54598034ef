package router

import (
	"log/slog"
	"net/http"

	"erauchess-api/internal/handler"
	"erauchess-api/internal/metrics"
	"erauchess-api/internal/middleware"
	"erauchess-api/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler      *handler.Handler
	AuthHandler  *handler.AuthHandler
	ClubHandler  *handler.ClubHandler
	AdminHandler *handler.AdminHandler

	// Extractor guards session-protected routes.
	Extractor *session.Extractor

	// Metrics instruments every route and serves /metrics when set.
	Metrics *metrics.Metrics

	Logger *slog.Logger

	// AllowedOrigins are the cross-origin front ends allowed to send
	// credentialed requests. CORS is disabled when empty.
	AllowedOrigins []string

	// StaticDir is served at / when set.
	StaticDir string
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.Recovery)
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	// Without origins only the same-origin front end may call the API.
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	member := middleware.RequireSession(cfg.Extractor, session.Ordinary)
	officer := middleware.RequireSession(cfg.Extractor, session.Privileged)

	r.Route("/api/v1", func(r chi.Router) {
		// Health check endpoints
		if cfg.Handler != nil {
			r.Get("/health", cfg.Handler.Health)
			r.Get("/ready", cfg.Handler.Ready)
		}

		// Session endpoints
		if cfg.AuthHandler != nil {
			r.Post("/register", cfg.AuthHandler.Register)
			r.Post("/login", cfg.AuthHandler.Login)
			r.Post("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.ClubHandler != nil {
			r.Get("/game/list", cfg.ClubHandler.ListGames)
			r.With(officer).Post("/game/add", cfg.ClubHandler.AddGame)
			r.With(member).Get("/users/list", cfg.ClubHandler.ListUsers)
		}

		// Admin endpoints
		if cfg.AdminHandler != nil {
			r.With(officer).Get("/admin/stats", cfg.AdminHandler.GetStats)
		}
	})

	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics.Handler())
	}

	// Front end
	if cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}
