package reports

import (
	"fmt"
	"time"
)

// Named reporting ranges. Each resolves to a half-open [from, to) window in
// the clinic's local calendar.
const (
	RangeToday       = "today"
	RangeThisWeek    = "this-week"
	RangeThisMonth   = "this-month"
	RangeLastMonth   = "last-month"
	RangeThisQuarter = "this-quarter"
	RangeThisYear    = "this-year"
)

// ResolveRange turns a named range into concrete bounds. Weeks start on
// Monday.
func ResolveRange(name string, now time.Time) (time.Time, time.Time, error) {
	y, m, d := now.Date()
	loc := now.Location()
	today := time.Date(y, m, d, 0, 0, 0, 0, loc)

	switch name {
	case RangeToday:
		return today, today.AddDate(0, 0, 1), nil
	case RangeThisWeek:
		offset := (int(today.Weekday()) + 6) % 7 // Monday = 0
		start := today.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), nil
	case RangeThisMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	case RangeLastMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc).AddDate(0, -1, 0)
		return start, start.AddDate(0, 1, 0), nil
	case RangeThisQuarter:
		qm := time.Month(((int(m)-1)/3)*3 + 1)
		start := time.Date(y, qm, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 3, 0), nil
	case RangeThisYear:
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(1, 0, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown date range: %s", name)
	}
}
