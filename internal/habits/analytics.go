package habits

import (
	"math"
	"sort"
)

// Fallback target when a numeric/duration habit has none set.
const defaultTarget = 1

// Ratio is the 0–1 completion ratio for one habit on one day.
// Checkbox habits are all-or-nothing; numeric and duration habits scale
// linearly against their target and cap at 1.
func Ratio(trackingType TrackingType, target *float64, value float64, completed bool) float64 {
	if trackingType == Checkbox {
		if completed {
			return 1
		}
		return 0
	}
	t := float64(defaultTarget)
	if target != nil {
		t = *target
	}
	if t <= 0 {
		return 0
	}
	return math.Min(1, value/t)
}

// DayRate is the percent of habit targets met on one day.
type DayRate struct {
	Date string `json:"date"`
	Rate int    `json:"rate"`
}

// HabitRate is a habit's average completion percent over a date range.
type HabitRate struct {
	HabitID string `json:"habit_id"`
	Title   string `json:"title"`
	Rate    int    `json:"rate"`
}

// Stats is the aggregate analytics view over a date range.
type Stats struct {
	TotalHabits    int         `json:"total_habits"`
	TodayPercent   *int        `json:"today_percent"`
	OverallPercent int         `json:"overall_percent"`
	Days           []DayRate   `json:"days"`
	Habits         []HabitRate `json:"habits"`
	Streak         int         `json:"streak"`
}

// maxHabitRates bounds the per-habit chart to the strongest performers.
const maxHabitRates = 10

// ComputeStats reduces completion rows into per-day rates, per-habit rates,
// today's percent, and the current streak. dateRange must be ascending and
// end at today. Archived habits are excluded throughout.
func ComputeStats(all []Habit, completions []Completion, dateRange []string) Stats {
	var active []Habit
	for _, h := range all {
		if !h.Archived {
			active = append(active, h)
		}
	}
	stats := Stats{TotalHabits: len(active)}
	if len(dateRange) == 0 {
		return stats
	}
	today := dateRange[len(dateRange)-1]

	// Index completions by (date, habit).
	type dayHabit struct{ date, habitID string }
	byDayHabit := make(map[dayHabit]Completion, len(completions))
	for _, c := range completions {
		byDayHabit[dayHabit{c.Date, c.HabitID}] = c
	}

	ratioFor := func(h Habit, date string) float64 {
		c, ok := byDayHabit[dayHabit{date, h.ID}]
		if !ok {
			return 0
		}
		return Ratio(h.TrackingType, h.TargetValue, c.Value, c.Completed)
	}

	// Per-day rates.
	stats.Days = make([]DayRate, 0, len(dateRange))
	for _, date := range dateRange {
		rate := 0
		if len(active) > 0 {
			sum := 0.0
			for _, h := range active {
				sum += ratioFor(h, date)
			}
			rate = int(math.Round(sum / float64(len(active)) * 100))
		}
		stats.Days = append(stats.Days, DayRate{Date: date, Rate: rate})
		if date == today && len(active) > 0 {
			pct := rate
			stats.TodayPercent = &pct
		}
	}

	// Overall rate: mean of the per-day rates across the window.
	if len(stats.Days) > 0 {
		sum := 0
		for _, d := range stats.Days {
			sum += d.Rate
		}
		stats.OverallPercent = int(math.Round(float64(sum) / float64(len(stats.Days))))
	}

	// Per-habit rates over the range, strongest first.
	for _, h := range active {
		sum := 0.0
		for _, date := range dateRange {
			sum += ratioFor(h, date)
		}
		stats.Habits = append(stats.Habits, HabitRate{
			HabitID: h.ID,
			Title:   h.Title,
			Rate:    int(math.Round(sum / float64(len(dateRange)) * 100)),
		})
	}
	sort.Slice(stats.Habits, func(i, j int) bool {
		if stats.Habits[i].Rate != stats.Habits[j].Rate {
			return stats.Habits[i].Rate > stats.Habits[j].Rate
		}
		return stats.Habits[i].Title < stats.Habits[j].Title
	})
	if len(stats.Habits) > maxHabitRates {
		stats.Habits = stats.Habits[:maxHabitRates]
	}

	// Streak: consecutive days ending today where every active habit has a
	// completed row.
	if len(active) > 0 {
		for i := len(dateRange) - 1; i >= 0; i-- {
			completed := 0
			for _, c := range completions {
				if c.Date == dateRange[i] && c.Completed {
					completed++
				}
			}
			if completed != len(active) {
				break
			}
			stats.Streak++
		}
	}
	return stats
}
