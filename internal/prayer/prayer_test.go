package prayer

import (
	"testing"
	"time"
)

func kolkata(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestTableUniqueness(t *testing.T) {
	seen := map[[2]int]Key{}
	for k, def := range Times {
		at := [2]int{def.Hour, def.Minute}
		if other, dup := seen[at]; dup {
			t.Fatalf("%s and %s share time %02d:%02d", k, other, def.Hour, def.Minute)
		}
		seen[at] = k
	}
	if len(Keys()) != len(Times) {
		t.Fatalf("ordered keys %d != table size %d", len(Keys()), len(Times))
	}
}

// Sweep every minute of a day: each prayer matches exactly at its table entry
// and nowhere else, and the summary trigger fires exactly once.
func TestMatchFullDaySweep(t *testing.T) {
	loc := kolkata(t)
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, loc)

	matches := map[Key]int{}
	summaryHits := 0
	for m := 0; m < 24*60; m++ {
		now := day.Add(time.Duration(m) * time.Minute)
		if k, ok := Match(now, loc); ok {
			matches[k]++
			def := Times[k]
			if now.Hour() != def.Hour || now.Minute() != def.Minute {
				t.Errorf("%s matched at %02d:%02d, want %02d:%02d",
					k, now.Hour(), now.Minute(), def.Hour, def.Minute)
			}
		}
		if IsSummaryTime(now, loc) {
			summaryHits++
		}
	}

	for k := range Times {
		if matches[k] != 1 {
			t.Errorf("prayer %s matched %d times, want 1", k, matches[k])
		}
	}
	if summaryHits != 1 {
		t.Errorf("summary fired %d times, want 1", summaryHits)
	}
}

func TestMatchConvertsFromUTC(t *testing.T) {
	loc := kolkata(t)
	// 00:00 UTC is 05:30 IST — Fajr.
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	k, ok := Match(now, loc)
	if !ok || k != Fajr {
		t.Fatalf("Match(00:00 UTC) = %q, %v; want fajr, true", k, ok)
	}
}

func TestCalendarDateCrossesMidnight(t *testing.T) {
	loc := kolkata(t)
	// 20:00 UTC on Jan 1 is already Jan 2 in Kolkata (UTC+5:30).
	now := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	if got := CalendarDate(now, loc); got != "2025-01-02" {
		t.Fatalf("CalendarDate = %q, want 2025-01-02", got)
	}
	if got := CalendarDate(now, time.UTC); got != "2025-01-01" {
		t.Fatalf("CalendarDate UTC = %q, want 2025-01-01", got)
	}
}

func TestValid(t *testing.T) {
	for _, k := range Keys() {
		if !Valid(string(k)) {
			t.Errorf("Valid(%q) = false", k)
		}
	}
	for _, s := range []string{"", "daily", "FAJR ", "tahajjud"} {
		if Valid(s) {
			t.Errorf("Valid(%q) = true", s)
		}
	}
}
