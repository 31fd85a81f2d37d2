package shared

import "time"

// DayStart returns the first instant of t's calendar day.
func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayEnd returns the last second of t's calendar day. Range filters built
// from calendar dates include the whole end day.
func DayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// MonthStart truncates t to the first day of its month.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// MonthsBetween lists every month-start from the month of from through the
// month of to, inclusive. The result is never empty when from <= to.
func MonthsBetween(from, to time.Time) []time.Time {
	start := MonthStart(from)
	end := MonthStart(to)
	var months []time.Time
	for cursor := start; !cursor.After(end); cursor = cursor.AddDate(0, 1, 0) {
		months = append(months, cursor)
	}
	return months
}
