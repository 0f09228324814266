// Package scheduler decides, once per cron tick, whether a prayer reminder or
// the daily summary fires right now, and performs at most one notification
// category per invocation.
//
// Each invocation is stateless; duplicate suppression across overlapping or
// retried ticks comes entirely from the sent ledger's unique constraints.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/imishab/track-me/internal/ledger"
	"github.com/imishab/track-me/internal/prayer"
	"github.com/imishab/track-me/internal/push"
)

// TestDaily is the ?test= marker that forces the daily-summary flow.
const TestDaily = "daily"

// Sender broadcasts a notification to all subscribers.
type Sender interface {
	SendBroadcast(ctx context.Context, msg push.Message) (int64, error)
}

// SummaryRunner runs the per-user daily summary batch for a calendar date.
type SummaryRunner interface {
	Run(ctx context.Context, date string) (sent int, errs []string)
}

// Kind classifies the outcome of one invocation.
type Kind string

const (
	KindNoop              Kind = "noop"
	KindPrayerSent        Kind = "prayer_sent"
	KindPrayerAlreadySent Kind = "prayer_already_sent"
	KindPrayerSendFailed  Kind = "prayer_send_failed"
	KindRecordFailed      Kind = "record_failed"
	KindSummary           Kind = "daily_summary"
)

// Outcome reports what one invocation did.
type Outcome struct {
	Kind           Kind
	Prayer         prayer.Key
	NotificationID int64
	Detail         string // failure detail for send/record failures
	Test           bool   // a ?test= override drove this invocation
	Race           bool   // lost the ledger insert race to a concurrent tick
	SummarySent    int
	SummaryErrors  []string
}

// Scheduler composes the time resolver, sent ledger, dispatcher, and summary
// runner. Now is overridable for tests and defaults to time.Now.
type Scheduler struct {
	Ledger   ledger.Store
	Sender   Sender
	Summary  SummaryRunner
	Location *time.Location
	AppURL   string
	Logger   *slog.Logger
	Now      func() time.Time
}

// Run evaluates one cron tick. testParam is the lowercased ?test= query value
// ("" for none). A prayer-key override forces that prayer's broadcast without
// touching the ledger; "daily" forces the summary flow (its per-user ledger
// checks still apply).
//
// The only hard errors are configuration-class: a missing push credential or
// a ledger that cannot be read.
func (s *Scheduler) Run(ctx context.Context, testParam string) (Outcome, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	date := prayer.CalendarDate(now, s.Location)

	if testParam == TestDaily {
		sent, errs := s.Summary.Run(ctx, date)
		return Outcome{Kind: KindSummary, Test: true, SummarySent: sent, SummaryErrors: errs}, nil
	}

	isTestPrayer := prayer.Valid(testParam)
	var key prayer.Key
	var matched bool
	if isTestPrayer {
		key, matched = prayer.Key(testParam), true
	} else {
		key, matched = prayer.Match(now, s.Location)
	}

	if !matched && !prayer.IsSummaryTime(now, s.Location) {
		return Outcome{Kind: KindNoop}, nil
	}

	if prayer.IsSummaryTime(now, s.Location) && !isTestPrayer {
		sent, errs := s.Summary.Run(ctx, date)
		return Outcome{Kind: KindSummary, SummarySent: sent, SummaryErrors: errs}, nil
	}

	if !isTestPrayer {
		already, err := s.Ledger.HasPrayerSent(ctx, date, key)
		if err != nil {
			return Outcome{}, fmt.Errorf("ledger lookup: %w", err)
		}
		if already {
			return Outcome{Kind: KindPrayerAlreadySent, Prayer: key}, nil
		}
	}

	def := prayer.Times[key]
	id, err := s.Sender.SendBroadcast(ctx, push.Message{
		Title: fmt.Sprintf("%s prayer time", def.Name),
		Body:  fmt.Sprintf("It's %s — time to pray. Open TrackMe to log it.", def.Name),
		URL:   s.AppURL,
		Icon:  s.AppURL + "/images/icons/192.png",
	})
	if err != nil {
		if errors.Is(err, push.ErrNotConfigured) {
			return Outcome{}, err
		}
		// Ledger stays unwritten so the failure is visible; the exact-minute
		// match will not recur until tomorrow, so there is no same-day retry.
		return Outcome{Kind: KindPrayerSendFailed, Prayer: key, Detail: err.Error(), Test: isTestPrayer}, nil
	}

	if !isTestPrayer {
		raced, err := s.Ledger.RecordPrayerSent(ctx, date, key)
		if err != nil {
			return Outcome{Kind: KindRecordFailed, Prayer: key, Detail: err.Error()}, nil
		}
		if raced {
			// A concurrent invocation recorded first; success either way.
			return Outcome{Kind: KindPrayerAlreadySent, Prayer: key, Race: true}, nil
		}
	}

	if s.Logger != nil {
		s.Logger.Info("prayer broadcast sent", "prayer", key, "date", date, "notification_id", id, "test", isTestPrayer)
	}
	return Outcome{Kind: KindPrayerSent, Prayer: key, NotificationID: id, Test: isTestPrayer}, nil
}
