// Package ledger records which notifications have already gone out on a given
// calendar day. It is the only concurrency-correctness mechanism in the
// scheduler: overlapping cron invocations are deduplicated by the unique
// constraints on the sent tables, not by in-process locking.
package ledger

import (
	"context"

	"github.com/imishab/track-me/internal/prayer"
)

// Store is the narrow interface the scheduler and daily summary depend on.
// Record methods return alreadySent=true when a concurrent invocation won the
// insert race; that outcome is success-equivalent, never an error.
type Store interface {
	HasPrayerSent(ctx context.Context, date string, key prayer.Key) (bool, error)
	RecordPrayerSent(ctx context.Context, date string, key prayer.Key) (alreadySent bool, err error)
	HasSummarySent(ctx context.Context, date, userID string) (bool, error)
	RecordSummarySent(ctx context.Context, date, userID string) (alreadySent bool, err error)
}
