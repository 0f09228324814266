// Package prayer holds the static prayer-time table and the time resolution
// helpers the cron scheduler uses to decide what fires at a given minute.
//
// Matching is exact-minute: if the cron trigger misses the minute, the event
// is skipped for that day. There is no catch-up window.
package prayer

import (
	"time"
)

// Key identifies one of the fixed daily prayer reminders.
type Key string

const (
	Fajr    Key = "fajr"
	Dhuhr   Key = "dhuhr"
	Asr     Key = "asr"
	Maghrib Key = "maghrib"
	Isha    Key = "isha"
)

// Definition is one entry in the prayer-time table: a display name and a
// wall-clock (hour, minute) local to the configured timezone.
type Definition struct {
	Name   string
	Hour   int
	Minute int
}

// Times is the fixed prayer table. Loaded once at process start, never mutated.
var Times = map[Key]Definition{
	Fajr:    {Name: "Fajr", Hour: 5, Minute: 30},
	Dhuhr:   {Name: "Dhuhr", Hour: 12, Minute: 45},
	Asr:     {Name: "Asr", Hour: 16, Minute: 0},
	Maghrib: {Name: "Maghrib", Hour: 18, Minute: 45},
	Isha:    {Name: "Isha", Hour: 20, Minute: 0},
}

// keys in chronological order, so Match iteration is deterministic.
var orderedKeys = []Key{Fajr, Dhuhr, Asr, Maghrib, Isha}

// Daily summary trigger: 9 PM in the configured timezone.
const (
	SummaryHour   = 21
	SummaryMinute = 0
)

// DefaultTimezone is used when PRAYER_TIMEZONE is not set.
const DefaultTimezone = "Asia/Kolkata"

// Keys returns all prayer keys in chronological order.
func Keys() []Key {
	out := make([]Key, len(orderedKeys))
	copy(out, orderedKeys)
	return out
}

// Valid reports whether s names a known prayer key.
func Valid(s string) bool {
	_, ok := Times[Key(s)]
	return ok
}

// CalendarDate formats now as YYYY-MM-DD using the wall-clock date in loc.
// Uses real timezone conversion, not a fixed offset.
func CalendarDate(now time.Time, loc *time.Location) string {
	return now.In(loc).Format("2006-01-02")
}

// Match returns the prayer whose (hour, minute) equals now's wall clock in
// loc. Exact-minute semantics; at most one prayer can match since the table
// has unique times.
func Match(now time.Time, loc *time.Location) (Key, bool) {
	local := now.In(loc)
	h, m := local.Hour(), local.Minute()
	for _, k := range orderedKeys {
		def := Times[k]
		if def.Hour == h && def.Minute == m {
			return k, true
		}
	}
	return "", false
}

// IsSummaryTime reports whether now is the daily-summary minute in loc.
func IsSummaryTime(now time.Time, loc *time.Location) bool {
	local := now.In(loc)
	return local.Hour() == SummaryHour && local.Minute() == SummaryMinute
}
