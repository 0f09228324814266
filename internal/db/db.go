// Package db provides a pgxpool-based connection pool with prepared statement
// registration and health checking.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imishab/track-me/internal/config"
)

// Pool wraps pgxpool.Pool with application-specific helpers.
type Pool struct {
	*pgxpool.Pool
}

// New creates and validates a new connection pool.
func New(ctx context.Context, cfg *config.Config) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolCfg.MinConns = int32(cfg.DBPoolMinConns)
	poolCfg.MaxConns = int32(cfg.DBPoolMaxConns)
	poolCfg.MaxConnLifetime = cfg.DBPoolMaxLife
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	// Register prepared statements on every new connection.
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return registerPreparedStatements(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	// Verify connectivity
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Pool{Pool: pool}, nil
}

// HealthCheck runs a trivial query to verify the database is reachable.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var n int
	return p.QueryRow(ctx, "health_check").Scan(&n)
}

// registerPreparedStatements registers all read statements the API uses.
// Writes (inserts and upserts) use inline SQL at their call sites.
func registerPreparedStatements(ctx context.Context, conn *pgx.Conn) error {
	stmts := map[string]string{
		// Health
		"health_check": "SELECT 1",

		// Users
		"user_by_email": "SELECT id, email, password_hash, created_at FROM users WHERE email = $1",

		// Habits
		"list_habits": `SELECT id, user_id, category_id, title, tracking_type, target_value, unit, order_index, archived, created_at
			FROM habits WHERE user_id = $1 ORDER BY order_index, created_at`,
		"snapshot_habits": "SELECT id, tracking_type, target_value, archived FROM habits WHERE user_id = $1",

		// Categories
		"list_categories":  "SELECT id, user_id, name, created_at FROM categories WHERE user_id = $1 ORDER BY created_at",
		"category_by_name": "SELECT id, user_id, name, created_at FROM categories WHERE user_id = $1 AND name = $2",

		// Completions
		"list_completions": `SELECT habit_id, user_id, date, value, completed
			FROM habit_completions WHERE user_id = $1 AND date >= $2 AND date <= $3 ORDER BY date`,
		"snapshot_completions": "SELECT habit_id, value, completed FROM habit_completions WHERE user_id = $1 AND date = $2",

		// Push subscriptions
		"list_push_subscriptions": "SELECT user_id, subscriber_id, updated_at FROM push_subscriptions ORDER BY updated_at",

		// Sent ledger
		"prayer_sent_lookup":  "SELECT id FROM prayer_notification_sent WHERE date = $1 AND prayer_key = $2",
		"summary_sent_lookup": "SELECT id FROM daily_summary_sent WHERE date = $1 AND user_id = $2",
	}

	for name, sql := range stmts {
		if _, err := conn.Prepare(ctx, name, sql); err != nil {
			return fmt.Errorf("prepare %q: %w", name, err)
		}
	}
	return nil
}
