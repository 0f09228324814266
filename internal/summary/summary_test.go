package summary

import (
	"context"
	"strings"
	"testing"

	"github.com/imishab/track-me/internal/habits"
	"github.com/imishab/track-me/internal/prayer"
	"github.com/imishab/track-me/internal/push"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type mockLedger struct {
	summarySent map[string]bool // date|userID
	recorded    []string
}

func newMockLedger() *mockLedger {
	return &mockLedger{summarySent: map[string]bool{}}
}

func (m *mockLedger) HasPrayerSent(ctx context.Context, date string, key prayer.Key) (bool, error) {
	return false, nil
}

func (m *mockLedger) RecordPrayerSent(ctx context.Context, date string, key prayer.Key) (bool, error) {
	return false, nil
}

func (m *mockLedger) HasSummarySent(ctx context.Context, date, userID string) (bool, error) {
	return m.summarySent[date+"|"+userID], nil
}

func (m *mockLedger) RecordSummarySent(ctx context.Context, date, userID string) (bool, error) {
	key := date + "|" + userID
	if m.summarySent[key] {
		return true, nil
	}
	m.summarySent[key] = true
	m.recorded = append(m.recorded, userID)
	return false, nil
}

type mockSubs struct {
	subs []push.Subscription
	err  error
}

func (m *mockSubs) List(ctx context.Context) ([]push.Subscription, error) {
	return m.subs, m.err
}

type mockHabits struct {
	habits      map[string][]habits.Snapshot
	completions map[string][]habits.CompletionSnapshot
}

func (m *mockHabits) SnapshotHabits(ctx context.Context, userID string) ([]habits.Snapshot, error) {
	return m.habits[userID], nil
}

func (m *mockHabits) SnapshotCompletions(ctx context.Context, userID, date string) ([]habits.CompletionSnapshot, error) {
	return m.completions[userID], nil
}

type sentMsg struct {
	subscriberID string
	msg          push.Message
}

type mockSender struct {
	sent    []sentMsg
	failFor map[string]error
}

func (m *mockSender) SendToSubscriber(ctx context.Context, subscriberID string, msg push.Message) (int64, error) {
	if err := m.failFor[subscriberID]; err != nil {
		return 0, err
	}
	m.sent = append(m.sent, sentMsg{subscriberID, msg})
	return int64(len(m.sent)), nil
}

func f64(v float64) *float64 { return &v }

func newRunner(subs *mockSubs, hs *mockHabits, led *mockLedger, snd *mockSender) *Runner {
	return &Runner{
		Subs:   subs,
		Habits: hs,
		Ledger: led,
		Sender: snd,
		AppURL: "https://trackme.test",
	}
}

// ---------------------------------------------------------------------------
// CompletionPercent
// ---------------------------------------------------------------------------

func TestCompletionPercent(t *testing.T) {
	hs := []habits.Snapshot{
		{ID: "a", TrackingType: habits.Checkbox},
		{ID: "b", TrackingType: habits.Numeric, TargetValue: f64(10)},
	}
	comps := []habits.CompletionSnapshot{
		{HabitID: "a", Completed: true},
		{HabitID: "b", Value: 5},
	}
	pct, ok := CompletionPercent(hs, comps)
	if !ok || pct != 75 {
		t.Fatalf("CompletionPercent = %d, %v; want 75, true", pct, ok)
	}
}

func TestCompletionPercentNoActiveHabits(t *testing.T) {
	hs := []habits.Snapshot{
		{ID: "a", TrackingType: habits.Checkbox, Archived: true},
	}
	if _, ok := CompletionPercent(hs, nil); ok {
		t.Fatal("CompletionPercent ok = true with only archived habits")
	}
	if _, ok := CompletionPercent(nil, nil); ok {
		t.Fatal("CompletionPercent ok = true with no habits")
	}
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

func TestRunSendsPersonalizedSummary(t *testing.T) {
	subs := &mockSubs{subs: []push.Subscription{{UserID: "u1", SubscriberID: "s1"}}}
	hs := &mockHabits{
		habits: map[string][]habits.Snapshot{
			"u1": {
				{ID: "a", TrackingType: habits.Checkbox},
				{ID: "b", TrackingType: habits.Numeric, TargetValue: f64(10)},
			},
		},
		completions: map[string][]habits.CompletionSnapshot{
			"u1": {{HabitID: "a", Completed: true}, {HabitID: "b", Value: 5}},
		},
	}
	led := newMockLedger()
	snd := &mockSender{}

	sent, errs := newRunner(subs, hs, led, snd).Run(context.Background(), "2025-03-10")
	if sent != 1 || len(errs) != 0 {
		t.Fatalf("Run = %d sent, %v errs", sent, errs)
	}
	if len(snd.sent) != 1 {
		t.Fatalf("dispatched %d messages, want 1", len(snd.sent))
	}
	if !strings.Contains(snd.sent[0].msg.Body, "75%") {
		t.Errorf("body = %q, want 75%% claim", snd.sent[0].msg.Body)
	}
	if len(led.recorded) != 1 || led.recorded[0] != "u1" {
		t.Errorf("ledger recorded %v, want [u1]", led.recorded)
	}
}

func TestRunGenericMessageWithoutHabits(t *testing.T) {
	subs := &mockSubs{subs: []push.Subscription{{UserID: "u1", SubscriberID: "s1"}}}
	hs := &mockHabits{habits: map[string][]habits.Snapshot{}, completions: map[string][]habits.CompletionSnapshot{}}
	snd := &mockSender{}

	sent, errs := newRunner(subs, hs, newMockLedger(), snd).Run(context.Background(), "2025-03-10")
	if sent != 1 || len(errs) != 0 {
		t.Fatalf("Run = %d sent, %v errs", sent, errs)
	}
	body := snd.sent[0].msg.Body
	if strings.Contains(body, "%") {
		t.Errorf("body = %q, must not claim a percentage", body)
	}
	if body != "Open TrackMe to track your habits." {
		t.Errorf("body = %q, want generic prompt", body)
	}
}

func TestRunSkipsAlreadySentUser(t *testing.T) {
	subs := &mockSubs{subs: []push.Subscription{{UserID: "u1", SubscriberID: "s1"}}}
	led := newMockLedger()
	led.summarySent["2025-03-10|u1"] = true
	snd := &mockSender{}
	hs := &mockHabits{}

	sent, errs := newRunner(subs, hs, led, snd).Run(context.Background(), "2025-03-10")
	if sent != 0 || len(errs) != 0 {
		t.Fatalf("Run = %d sent, %v errs; want 0, none", sent, errs)
	}
	if len(snd.sent) != 0 {
		t.Fatal("dispatch happened for an already-sent user")
	}
}

func TestRunIsolatesPerUserFailures(t *testing.T) {
	subs := &mockSubs{subs: []push.Subscription{
		{UserID: "u1", SubscriberID: "s1"},
		{UserID: "u2", SubscriberID: "s2"},
		{UserID: "u3", SubscriberID: "s3"},
	}}
	hs := &mockHabits{}
	snd := &mockSender{failFor: map[string]error{"s2": &push.DeliveryError{Status: 400, Reason: "bad subscriber"}}}
	led := newMockLedger()

	sent, errs := newRunner(subs, hs, led, snd).Run(context.Background(), "2025-03-10")
	if sent != 2 {
		t.Fatalf("sent = %d, want 2", sent)
	}
	if len(errs) != 1 || !strings.Contains(errs[0], "user u2") {
		t.Fatalf("errs = %v, want one entry tagged user u2", errs)
	}
	// The failed user must not be recorded as sent.
	if led.summarySent["2025-03-10|u2"] {
		t.Error("failed user recorded in ledger")
	}
}

func TestRunSubscriptionListFailure(t *testing.T) {
	subs := &mockSubs{err: context.DeadlineExceeded}
	sent, errs := newRunner(subs, &mockHabits{}, newMockLedger(), &mockSender{}).Run(context.Background(), "2025-03-10")
	if sent != 0 || len(errs) != 1 {
		t.Fatalf("Run = %d sent, %v errs", sent, errs)
	}
}
