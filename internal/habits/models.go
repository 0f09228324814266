// Package habits owns habit, category, and completion storage plus the pure
// aggregation functions the analytics endpoint and daily summary share.
package habits

import "time"

// TrackingType is how a habit's daily progress is recorded.
type TrackingType string

const (
	Checkbox TrackingType = "checkbox"
	Numeric  TrackingType = "numeric"
	Duration TrackingType = "duration"
)

// ValidTrackingType reports whether s is a known tracking type.
func ValidTrackingType(s string) bool {
	switch TrackingType(s) {
	case Checkbox, Numeric, Duration:
		return true
	}
	return false
}

// Habit is one tracked habit.
type Habit struct {
	ID           string       `json:"id"`
	UserID       string       `json:"user_id"`
	CategoryID   *string      `json:"category_id,omitempty"`
	Title        string       `json:"title"`
	TrackingType TrackingType `json:"tracking_type"`
	TargetValue  *float64     `json:"target_value,omitempty"`
	Unit         *string      `json:"unit,omitempty"`
	OrderIndex   int          `json:"order_index"`
	Archived     bool         `json:"archived"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Category groups habits.
type Category struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Completion is one day's log entry for a habit. At most one row exists per
// (habit, date).
type Completion struct {
	HabitID   string  `json:"habit_id"`
	UserID    string  `json:"user_id"`
	Date      string  `json:"date"` // YYYY-MM-DD
	Value     float64 `json:"value"`
	Completed bool    `json:"completed"`
}

// Snapshot is the read-only habit view the daily summary aggregates over.
type Snapshot struct {
	ID           string
	TrackingType TrackingType
	TargetValue  *float64
	Archived     bool
}

// CompletionSnapshot is the read-only completion view for one day.
type CompletionSnapshot struct {
	HabitID   string
	Value     float64
	Completed bool
}
