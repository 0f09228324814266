package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imishab/track-me/internal/prayer"
	"github.com/imishab/track-me/internal/push"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockLedger struct {
	prayerSent     map[string]bool // date|key
	hasErr         error
	recordErr      error
	forceRaced     bool
	lookups        int
	recordAttempts int
}

func newMockLedger() *mockLedger {
	return &mockLedger{prayerSent: map[string]bool{}}
}

func (m *mockLedger) HasPrayerSent(ctx context.Context, date string, key prayer.Key) (bool, error) {
	m.lookups++
	if m.hasErr != nil {
		return false, m.hasErr
	}
	return m.prayerSent[date+"|"+string(key)], nil
}

func (m *mockLedger) RecordPrayerSent(ctx context.Context, date string, key prayer.Key) (bool, error) {
	m.recordAttempts++
	if m.recordErr != nil {
		return false, m.recordErr
	}
	k := date + "|" + string(key)
	if m.forceRaced || m.prayerSent[k] {
		return true, nil
	}
	m.prayerSent[k] = true
	return false, nil
}

func (m *mockLedger) HasSummarySent(ctx context.Context, date, userID string) (bool, error) {
	return false, nil
}

func (m *mockLedger) RecordSummarySent(ctx context.Context, date, userID string) (bool, error) {
	return false, nil
}

type mockSender struct {
	sent []push.Message
	err  error
}

func (m *mockSender) SendBroadcast(ctx context.Context, msg push.Message) (int64, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.sent = append(m.sent, msg)
	return 100 + int64(len(m.sent)), nil
}

type mockSummary struct {
	runs  int
	dates []string
	sent  int
	errs  []string
}

func (m *mockSummary) Run(ctx context.Context, date string) (int, []string) {
	m.runs++
	m.dates = append(m.dates, date)
	return m.sent, m.errs
}

func at(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 3, 10, hour, minute, 0, 0, time.UTC)
	}
}

func newScheduler(led *mockLedger, snd *mockSender, sum *mockSummary, now func() time.Time) *Scheduler {
	return &Scheduler{
		Ledger:   led,
		Sender:   snd,
		Summary:  sum,
		Location: time.UTC,
		AppURL:   "https://trackme.test",
		Now:      now,
	}
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestRunNoopBetweenEvents(t *testing.T) {
	snd := &mockSender{}
	sum := &mockSummary{}
	s := newScheduler(newMockLedger(), snd, sum, at(10, 17))

	out, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindNoop {
		t.Fatalf("Kind = %s, want noop", out.Kind)
	}
	if len(snd.sent) != 0 || sum.runs != 0 {
		t.Error("noop tick must not dispatch anything")
	}
}

func TestRunPrayerSentAndRecorded(t *testing.T) {
	led := newMockLedger()
	snd := &mockSender{}
	s := newScheduler(led, snd, &mockSummary{}, at(5, 30)) // fajr

	out, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindPrayerSent || out.Prayer != prayer.Fajr {
		t.Fatalf("outcome = %+v, want fajr sent", out)
	}
	if out.NotificationID == 0 {
		t.Error("missing notification id")
	}
	if len(snd.sent) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(snd.sent))
	}
	if snd.sent[0].Title != "Fajr prayer time" {
		t.Errorf("title = %q", snd.sent[0].Title)
	}
	if !led.prayerSent["2025-03-10|fajr"] {
		t.Error("ledger not recorded")
	}
}

func TestRunPrayerIdempotent(t *testing.T) {
	led := newMockLedger()
	snd := &mockSender{}
	s := newScheduler(led, snd, &mockSummary{}, at(5, 30))

	if _, err := s.Run(context.Background(), ""); err != nil {
		t.Fatalf("first run: %v", err)
	}
	out, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if out.Kind != KindPrayerAlreadySent {
		t.Fatalf("Kind = %s, want prayer_already_sent", out.Kind)
	}
	if len(snd.sent) != 1 {
		t.Fatalf("broadcasts = %d, want exactly 1", len(snd.sent))
	}
}

func TestRunPrayerInsertRaceIsSuccess(t *testing.T) {
	// Both invocations pass the hasSent check; the loser's insert conflicts.
	led := newMockLedger()
	led.forceRaced = true
	snd := &mockSender{}
	s := newScheduler(led, snd, &mockSummary{}, at(5, 30))

	out, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindPrayerAlreadySent || !out.Race {
		t.Fatalf("outcome = %+v, want already-sent race reported as success", out)
	}
}

func TestRunDeliveryFailureLeavesLedgerUnwritten(t *testing.T) {
	led := newMockLedger()
	snd := &mockSender{err: &push.DeliveryError{Status: 502, Reason: "provider down"}}
	s := newScheduler(led, snd, &mockSummary{}, at(5, 30))

	out, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindPrayerSendFailed || out.Detail == "" {
		t.Fatalf("outcome = %+v, want send-failed with detail", out)
	}
	if led.recordAttempts != 0 {
		t.Error("ledger written despite delivery failure")
	}
}

func TestRunMissingCredentialIsHardError(t *testing.T) {
	snd := &mockSender{err: push.ErrNotConfigured}
	s := newScheduler(newMockLedger(), snd, &mockSummary{}, at(5, 30))

	_, err := s.Run(context.Background(), "")
	if !errors.Is(err, push.ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestRunTestOverrideBypassesLedger(t *testing.T) {
	led := newMockLedger()
	led.prayerSent["2025-03-10|isha"] = true // already sent; override ignores it
	snd := &mockSender{}
	s := newScheduler(led, snd, &mockSummary{}, at(10, 17)) // not isha time

	out, err := s.Run(context.Background(), "isha")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindPrayerSent || !out.Test || out.Prayer != prayer.Isha {
		t.Fatalf("outcome = %+v, want test isha sent", out)
	}
	if snd.sent[0].Title != "Isha prayer time" {
		t.Errorf("title = %q", snd.sent[0].Title)
	}
	if led.lookups != 0 || led.recordAttempts != 0 {
		t.Error("test override must not touch the ledger")
	}
}

func TestRunDailySummaryAtTriggerMinute(t *testing.T) {
	sum := &mockSummary{sent: 3, errs: []string{"user u9: boom"}}
	s := newScheduler(newMockLedger(), &mockSender{}, sum, at(21, 0))

	out, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindSummary || out.SummarySent != 3 || len(out.SummaryErrors) != 1 {
		t.Fatalf("outcome = %+v", out)
	}
	if sum.dates[0] != "2025-03-10" {
		t.Errorf("summary date = %q", sum.dates[0])
	}
}

func TestRunTestDailyForcesSummary(t *testing.T) {
	sum := &mockSummary{sent: 1}
	s := newScheduler(newMockLedger(), &mockSender{}, sum, at(10, 17))

	out, err := s.Run(context.Background(), TestDaily)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindSummary || !out.Test || sum.runs != 1 {
		t.Fatalf("outcome = %+v, runs = %d", out, sum.runs)
	}
}

func TestRunTestPrayerWinsOverSummaryMinute(t *testing.T) {
	// A prayer override at 21:00 runs the prayer flow, not the summary.
	sum := &mockSummary{}
	snd := &mockSender{}
	s := newScheduler(newMockLedger(), snd, sum, at(21, 0))

	out, err := s.Run(context.Background(), "fajr")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindPrayerSent || sum.runs != 0 {
		t.Fatalf("outcome = %+v, summary runs = %d", out, sum.runs)
	}
}

func TestRunRecordFailure(t *testing.T) {
	led := newMockLedger()
	led.recordErr = errors.New("connection reset")
	s := newScheduler(led, &mockSender{}, &mockSummary{}, at(16, 0)) // asr

	out, err := s.Run(context.Background(), "")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Kind != KindRecordFailed || out.Prayer != prayer.Asr {
		t.Fatalf("outcome = %+v, want record_failed for asr", out)
	}
}
