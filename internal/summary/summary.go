// Package summary sends each subscribed user one personalized habit summary
// per day: their completion percentage across active habits, or a generic
// prompt when they have none.
package summary

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/imishab/track-me/internal/habits"
	"github.com/imishab/track-me/internal/ledger"
	"github.com/imishab/track-me/internal/push"
)

// Sender delivers a notification to one subscriber identity.
type Sender interface {
	SendToSubscriber(ctx context.Context, subscriberID string, msg push.Message) (int64, error)
}

// SubscriptionSource lists current push subscriptions.
type SubscriptionSource interface {
	List(ctx context.Context) ([]push.Subscription, error)
}

// HabitSource reads the habit and completion rows owned by the CRUD side.
type HabitSource interface {
	SnapshotHabits(ctx context.Context, userID string) ([]habits.Snapshot, error)
	SnapshotCompletions(ctx context.Context, userID, date string) ([]habits.CompletionSnapshot, error)
}

// Runner walks subscribers sequentially and sends at most one summary per
// user per day. One user's failure never aborts the rest of the batch.
type Runner struct {
	Subs   SubscriptionSource
	Habits HabitSource
	Ledger ledger.Store
	Sender Sender
	AppURL string
	Logger *slog.Logger
}

// Run processes every subscriber for the given calendar date. It returns the
// number of summaries sent and the per-user error strings collected along
// the way.
func (r *Runner) Run(ctx context.Context, date string) (sent int, errs []string) {
	subs, err := r.Subs.List(ctx)
	if err != nil {
		return 0, []string{err.Error()}
	}

	for _, sub := range subs {
		already, err := r.Ledger.HasSummarySent(ctx, date, sub.UserID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("user %s: %v", sub.UserID, err))
			continue
		}
		if already {
			continue
		}

		hs, err := r.Habits.SnapshotHabits(ctx, sub.UserID)
		if err != nil {
			errs = append(errs, fmt.Sprintf("user %s: %v", sub.UserID, err))
			continue
		}
		comps, err := r.Habits.SnapshotCompletions(ctx, sub.UserID, date)
		if err != nil {
			errs = append(errs, fmt.Sprintf("user %s: %v", sub.UserID, err))
			continue
		}

		msg := push.Message{
			Title: "Today's habit summary",
			Body:  "Open TrackMe to track your habits.",
			URL:   r.AppURL,
			Icon:  r.AppURL + "/images/icons/192.png",
		}
		if pct, ok := CompletionPercent(hs, comps); ok {
			msg.Body = fmt.Sprintf("You completed %d%% of your habits today. Open TrackMe to see details.", pct)
		}

		if _, err := r.Sender.SendToSubscriber(ctx, sub.SubscriberID, msg); err != nil {
			errs = append(errs, fmt.Sprintf("user %s: %v", sub.UserID, err))
			continue
		}

		// The push is already out; a failed ledger write is logged rather
		// than surfaced so the user still counts as sent.
		if _, err := r.Ledger.RecordSummarySent(ctx, date, sub.UserID); err != nil && r.Logger != nil {
			r.Logger.Warn("record summary sent failed", "user_id", sub.UserID, "error", err)
		}
		sent++
	}
	return sent, errs
}

// CompletionPercent averages per-habit completion ratios over the user's
// non-archived habits and rounds to a whole percent. ok is false when the
// user has no active habits, in which case no percentage claim should be
// made.
func CompletionPercent(hs []habits.Snapshot, comps []habits.CompletionSnapshot) (int, bool) {
	byHabit := make(map[string]habits.CompletionSnapshot, len(comps))
	for _, c := range comps {
		byHabit[c.HabitID] = c
	}

	active := 0
	sum := 0.0
	for _, h := range hs {
		if h.Archived {
			continue
		}
		active++
		c := byHabit[h.ID]
		sum += habits.Ratio(h.TrackingType, h.TargetValue, c.Value, c.Completed)
	}
	if active == 0 {
		return 0, false
	}
	return int(math.Round(sum / float64(active) * 100)), true
}
