// Package handler provides HTTP handlers for all API endpoints.
// Handlers talk to Postgres through the domain stores — no service layer.
package handler

import (
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imishab/track-me/internal/auth"
	"github.com/imishab/track-me/internal/cache"
	"github.com/imishab/track-me/internal/config"
	"github.com/imishab/track-me/internal/habits"
	"github.com/imishab/track-me/internal/ledger"
	"github.com/imishab/track-me/internal/push"
	"github.com/imishab/track-me/internal/scheduler"
	"github.com/imishab/track-me/internal/summary"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	pool   *pgxpool.Pool
	cache  *cache.Cache
	cfg    *config.Config
	loc    *time.Location
	logger *slog.Logger

	tokens *auth.Manager
	users  *auth.Store
	habits *habits.Store
	subs   *push.SubscriptionStore
	sched  *scheduler.Scheduler
}

// New creates a Handler and wires the notification scheduler from its parts.
func New(pool *pgxpool.Pool, c *cache.Cache, cfg *config.Config, loc *time.Location, logger *slog.Logger) *Handler {
	habitStore := habits.NewStore(pool)
	subStore := push.NewSubscriptionStore(pool)
	sentLedger := ledger.NewPG(pool)
	pusher := push.NewClient(cfg.PushAlertAPIKey)

	summaryRunner := &summary.Runner{
		Subs:   subStore,
		Habits: habitStore,
		Ledger: sentLedger,
		Sender: pusher,
		AppURL: cfg.AppBaseURL,
		Logger: logger,
	}

	return &Handler{
		pool:   pool,
		cache:  c,
		cfg:    cfg,
		loc:    loc,
		logger: logger,
		tokens: auth.NewManager(cfg.JWTSecret, cfg.TokenTTL),
		users:  auth.NewStore(pool),
		habits: habitStore,
		subs:   subStore,
		sched: &scheduler.Scheduler{
			Ledger:   sentLedger,
			Sender:   pusher,
			Summary:  summaryRunner,
			Location: loc,
			AppURL:   cfg.AppBaseURL,
			Logger:   logger,
		},
	}
}

// Tokens exposes the session-token manager for the auth middleware.
func (h *Handler) Tokens() *auth.Manager {
	return h.tokens
}
