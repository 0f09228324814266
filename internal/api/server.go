package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/imishab/track-me/internal/api/handler"
	"github.com/imishab/track-me/internal/cache"
	"github.com/imishab/track-me/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(pool *pgxpool.Pool, appCache *cache.Cache, cfg *config.Config, loc *time.Location, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Authorization", "Content-Type", "If-None-Match", "Cache-Control"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Cache", "ETag"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Handler dependencies ---
	h := handler.New(pool, appCache, cfg, loc, logger)

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/cache", h.HealthCheckCache)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// Cron trigger — guarded by the shared secret inside the handler, since
	// the external cron service cannot hold a user session.
	r.Get("/api/cron/prayer-notifications", h.PrayerCron)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Auth
		r.Post("/auth/signup", h.Signup)
		r.Post("/auth/login", h.Login)

		// Authenticated surface
		r.Group(func(r chi.Router) {
			r.Use(RequireAuth(h.Tokens()))

			// Habits
			r.Get("/habits", h.ListHabits)
			r.Post("/habits", h.CreateHabit)
			r.Put("/habits/reorder", h.ReorderHabits)
			r.Patch("/habits/{id}", h.UpdateHabit)
			r.Delete("/habits/{id}", h.DeleteHabit)

			// Categories
			r.Get("/categories", h.ListCategories)
			r.Post("/categories", h.CreateCategory)
			r.Delete("/categories/{id}", h.DeleteCategory)

			// Completions
			r.Get("/completions", h.ListCompletions)
			r.Put("/completions", h.UpsertCompletion)

			// Analytics
			r.Get("/analytics", h.Analytics)

			// Push subscription registration
			r.Post("/push/subscribe", h.Subscribe)
		})
	})

	return r
}
