package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imishab/track-me/internal/prayer"
)

// Postgres unique_violation code.
const uniqueViolation = "23505"

// PG is the Postgres-backed sent ledger. Rows are append-only: created once
// per fire, never updated, never deleted.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG creates a Postgres ledger.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

// HasPrayerSent reports whether the prayer broadcast already went out today.
func (l *PG) HasPrayerSent(ctx context.Context, date string, key prayer.Key) (bool, error) {
	var id int64
	err := l.pool.QueryRow(ctx, "prayer_sent_lookup", date, string(key)).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("prayer sent lookup: %w", err)
	}
	return true, nil
}

// RecordPrayerSent inserts the sent marker for (date, key).
func (l *PG) RecordPrayerSent(ctx context.Context, date string, key prayer.Key) (bool, error) {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO prayer_notification_sent (date, prayer_key) VALUES ($1, $2)`,
		date, string(key),
	)
	if isUniqueViolation(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("record prayer sent: %w", err)
	}
	return false, nil
}

// HasSummarySent reports whether the user already got today's summary.
func (l *PG) HasSummarySent(ctx context.Context, date, userID string) (bool, error) {
	var id int64
	err := l.pool.QueryRow(ctx, "summary_sent_lookup", date, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("summary sent lookup: %w", err)
	}
	return true, nil
}

// RecordSummarySent inserts the sent marker for (date, user).
func (l *PG) RecordSummarySent(ctx context.Context, date, userID string) (bool, error) {
	_, err := l.pool.Exec(ctx, `
		INSERT INTO daily_summary_sent (date, user_id) VALUES ($1, $2)`,
		date, userID,
	)
	if isUniqueViolation(err) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("record summary sent: %w", err)
	}
	return false, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
