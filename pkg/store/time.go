package store

import "time"

// nowFunc returns the current time. Tests override it to pin week and
// bucket boundaries.
var nowFunc = time.Now

// nowMillis returns the current time as milliseconds since epoch, the unit
// scale all sort positions share with time_added*1000.
func nowMillis() float64 {
	return float64(nowFunc().UnixMilli())
}

// weekStart returns midnight at the start of the calendar week (Monday)
// containing t.
func weekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// subtractWeeks returns t moved back by n calendar weeks.
func subtractWeeks(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, -7*n)
}

// weekNumber returns the ISO 8601 week number of t.
func weekNumber(t time.Time) int {
	_, week := t.ISOWeek()
	return week
}
