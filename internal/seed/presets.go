// Package seed inserts the default category and habit presets for a user.
// Every user gets their own copy so they can edit and delete freely.
package seed

import (
	"context"
	"fmt"

	"github.com/imishab/track-me/internal/habits"
)

type presetHabit struct {
	Title        string
	TrackingType habits.TrackingType
	TargetValue  *float64
	Unit         *string
}

type presetCategory struct {
	Name   string
	Habits []presetHabit
}

func f64(v float64) *float64 { return &v }
func str(s string) *string   { return &s }

// defaults is the static preset table new accounts start from.
var defaults = []presetCategory{
	{
		Name: "Prayers",
		Habits: []presetHabit{
			{Title: "Fajr", TrackingType: habits.Checkbox},
			{Title: "Dhuhr", TrackingType: habits.Checkbox},
			{Title: "Asr", TrackingType: habits.Checkbox},
			{Title: "Maghrib", TrackingType: habits.Checkbox},
			{Title: "Isha", TrackingType: habits.Checkbox},
		},
	},
	{
		Name: "Workout",
		Habits: []presetHabit{
			{Title: "Pull Ups", TrackingType: habits.Numeric, TargetValue: f64(10), Unit: str("reps")},
			{Title: "Pushups", TrackingType: habits.Numeric, TargetValue: f64(20), Unit: str("reps")},
		},
	},
	{
		Name: "Personality",
		Habits: []presetHabit{
			{Title: "English Communication", TrackingType: habits.Checkbox},
			{Title: "Confidence Improvement", TrackingType: habits.Checkbox},
		},
	},
}

// Defaults ensures each preset category and habit exists for the user.
// Idempotent: categories are matched by name and already-present habit titles
// are left alone, so re-running only fills gaps.
func Defaults(ctx context.Context, store *habits.Store, userID string) error {
	existing, err := store.ListHabits(ctx, userID)
	if err != nil {
		return fmt.Errorf("list habits: %w", err)
	}

	for _, preset := range defaults {
		cat, found, err := store.GetCategoryByName(ctx, userID, preset.Name)
		if err != nil {
			return err
		}
		if !found {
			cat, err = store.CreateCategory(ctx, userID, preset.Name)
			if err != nil {
				return err
			}
		}

		titles := map[string]bool{}
		for _, h := range existing {
			if h.CategoryID != nil && *h.CategoryID == cat.ID {
				titles[h.Title] = true
			}
		}

		for _, ph := range preset.Habits {
			if titles[ph.Title] {
				continue
			}
			catID := cat.ID
			_, err := store.CreateHabit(ctx, habits.Habit{
				UserID:       userID,
				CategoryID:   &catID,
				Title:        ph.Title,
				TrackingType: ph.TrackingType,
				TargetValue:  ph.TargetValue,
				Unit:         ph.Unit,
			})
			if err != nil {
				return err
			}
			titles[ph.Title] = true
		}
	}
	return nil
}
