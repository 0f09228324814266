package habits

import (
	"testing"
)

func f64(v float64) *float64 { return &v }

func TestRatio(t *testing.T) {
	tests := []struct {
		name      string
		tt        TrackingType
		target    *float64
		value     float64
		completed bool
		want      float64
	}{
		{"checkbox done", Checkbox, nil, 0, true, 1},
		{"checkbox not done", Checkbox, nil, 5, false, 0},
		{"numeric half", Numeric, f64(10), 5, false, 0.5},
		{"numeric overshoot caps at 1", Numeric, f64(10), 25, false, 1},
		{"numeric zero target", Numeric, f64(0), 5, false, 0},
		{"numeric negative target", Numeric, f64(-3), 5, false, 0},
		{"numeric nil target falls back to 1", Numeric, nil, 0.25, false, 0.25},
		{"duration half", Duration, f64(30), 15, false, 0.5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Ratio(tc.tt, tc.target, tc.value, tc.completed); got != tc.want {
				t.Errorf("Ratio = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestComputeStatsTodayPercent(t *testing.T) {
	hs := []Habit{
		{ID: "a", Title: "Fajr", TrackingType: Checkbox},
		{ID: "b", Title: "Pull Ups", TrackingType: Numeric, TargetValue: f64(10)},
	}
	comps := []Completion{
		{HabitID: "a", Date: "2025-03-10", Completed: true},
		{HabitID: "b", Date: "2025-03-10", Value: 5},
	}
	stats := ComputeStats(hs, comps, []string{"2025-03-10"})
	if stats.TodayPercent == nil || *stats.TodayPercent != 75 {
		t.Fatalf("TodayPercent = %v, want 75", stats.TodayPercent)
	}
	if stats.TotalHabits != 2 {
		t.Errorf("TotalHabits = %d, want 2", stats.TotalHabits)
	}
	if stats.OverallPercent != 75 {
		t.Errorf("OverallPercent = %d, want 75", stats.OverallPercent)
	}
}

func TestComputeStatsExcludesArchived(t *testing.T) {
	hs := []Habit{
		{ID: "a", Title: "Active", TrackingType: Checkbox},
		{ID: "z", Title: "Old", TrackingType: Checkbox, Archived: true},
	}
	comps := []Completion{
		{HabitID: "a", Date: "2025-03-10", Completed: true},
	}
	stats := ComputeStats(hs, comps, []string{"2025-03-10"})
	if stats.TotalHabits != 1 {
		t.Fatalf("TotalHabits = %d, want 1", stats.TotalHabits)
	}
	if stats.TodayPercent == nil || *stats.TodayPercent != 100 {
		t.Errorf("TodayPercent = %v, want 100", stats.TodayPercent)
	}
	for _, hr := range stats.Habits {
		if hr.HabitID == "z" {
			t.Error("archived habit appeared in per-habit rates")
		}
	}
}

func TestComputeStatsNoHabits(t *testing.T) {
	stats := ComputeStats(nil, nil, []string{"2025-03-09", "2025-03-10"})
	if stats.TodayPercent != nil {
		t.Errorf("TodayPercent = %v, want nil", *stats.TodayPercent)
	}
	if stats.Streak != 0 {
		t.Errorf("Streak = %d, want 0", stats.Streak)
	}
	for _, d := range stats.Days {
		if d.Rate != 0 {
			t.Errorf("day %s rate = %d, want 0", d.Date, d.Rate)
		}
	}
}

func TestComputeStatsStreak(t *testing.T) {
	hs := []Habit{
		{ID: "a", Title: "A", TrackingType: Checkbox},
		{ID: "b", Title: "B", TrackingType: Checkbox},
	}
	dates := []string{"2025-03-07", "2025-03-08", "2025-03-09", "2025-03-10"}
	comps := []Completion{
		// 03-07: only one habit done — breaks the streak.
		{HabitID: "a", Date: "2025-03-07", Completed: true},
		// 03-08 through 03-10: both done.
		{HabitID: "a", Date: "2025-03-08", Completed: true},
		{HabitID: "b", Date: "2025-03-08", Completed: true},
		{HabitID: "a", Date: "2025-03-09", Completed: true},
		{HabitID: "b", Date: "2025-03-09", Completed: true},
		{HabitID: "a", Date: "2025-03-10", Completed: true},
		{HabitID: "b", Date: "2025-03-10", Completed: true},
	}
	stats := ComputeStats(hs, comps, dates)
	if stats.Streak != 3 {
		t.Fatalf("Streak = %d, want 3", stats.Streak)
	}
	// Day rates are 50, 100, 100, 100; the mean rounds to 88.
	if stats.OverallPercent != 88 {
		t.Errorf("OverallPercent = %d, want 88", stats.OverallPercent)
	}

	// A gap today resets the streak to zero.
	stats = ComputeStats(hs, comps[:len(comps)-1], dates)
	if stats.Streak != 0 {
		t.Fatalf("Streak after missing today = %d, want 0", stats.Streak)
	}
}

func TestComputeStatsHabitRatesSortedAndCapped(t *testing.T) {
	var hs []Habit
	var comps []Completion
	for i := 0; i < 12; i++ {
		id := string(rune('a' + i))
		hs = append(hs, Habit{ID: id, Title: id, TrackingType: Checkbox})
	}
	// Only habit "c" has any completions.
	comps = append(comps, Completion{HabitID: "c", Date: "2025-03-10", Completed: true})

	stats := ComputeStats(hs, comps, []string{"2025-03-10"})
	if len(stats.Habits) != maxHabitRates {
		t.Fatalf("len(Habits) = %d, want %d", len(stats.Habits), maxHabitRates)
	}
	if stats.Habits[0].HabitID != "c" || stats.Habits[0].Rate != 100 {
		t.Errorf("top habit = %+v, want c at 100", stats.Habits[0])
	}
}
