// Package timeutil holds the calendar and duration helpers shared by the
// trade classification, high filtering, and statistics code. All functions
// are pure and evaluate calendar boundaries in each timestamp's own location.
package timeutil

import (
	"fmt"
	"time"
)

// SameCalendarDay reports whether a and b fall on the same calendar day.
// Zero timestamps never match anything, including each other.
func SameCalendarDay(a, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CalendarDaysBetween returns the number of calendar-day boundaries between
// from and to, floored and clamped to zero. A high observed at 23:59 the day
// after entry is one day passed regardless of the clock times involved.
func CalendarDaysBetween(from, to time.Time) int {
	if from.IsZero() || to.IsZero() {
		return 0
	}
	days := int(midnight(to).Sub(midnight(from)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DayName returns the English weekday name of t ("Monday" .. "Sunday").
func DayName(t time.Time) string {
	return t.Weekday().String()
}

// WeekdayIndex maps a weekday onto the Monday-first five-slot bucket space
// used by all day-of-week statistics. Saturday and Sunday report ok=false:
// weekend entries are deliberately dropped from weekday bucketing.
func WeekdayIndex(d time.Weekday) (int, bool) {
	if d < time.Monday || d > time.Friday {
		return 0, false
	}
	return int(d - time.Monday), true
}

// TimeOfDay renders the wall-clock component of t as a string-comparable
// "HH:MM" value.
func TimeOfDay(t time.Time) string {
	return t.Format("15:04")
}

// FormatDuration renders a duration as "2h 14m 5s", omitting leading zero
// units the way the dashboard displays high-to-high gaps.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
