package push

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Subscription links a user to their current PushAlert subscriber identity.
// One row per user; re-subscribing from a new browser overwrites it.
type Subscription struct {
	UserID       string    `json:"user_id"`
	SubscriberID string    `json:"subscriber_id"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SubscriptionStore persists push subscriptions in Postgres.
type SubscriptionStore struct {
	pool *pgxpool.Pool
}

// NewSubscriptionStore creates a subscription store.
func NewSubscriptionStore(pool *pgxpool.Pool) *SubscriptionStore {
	return &SubscriptionStore{pool: pool}
}

// Upsert saves the subscriber id for a user, replacing any previous one.
func (s *SubscriptionStore) Upsert(ctx context.Context, userID, subscriberID string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO push_subscriptions (user_id, subscriber_id, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET subscriber_id = EXCLUDED.subscriber_id, updated_at = NOW()`,
		userID, subscriberID,
	)
	if err != nil {
		return fmt.Errorf("upsert push subscription: %w", err)
	}
	return nil
}

// List returns all current subscriptions.
func (s *SubscriptionStore) List(ctx context.Context) ([]Subscription, error) {
	rows, err := s.pool.Query(ctx, "list_push_subscriptions")
	if err != nil {
		return nil, fmt.Errorf("list push subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var sub Subscription
		if err := rows.Scan(&sub.UserID, &sub.SubscriberID, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan push subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}
