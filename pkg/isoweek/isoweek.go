// Package isoweek implements ISO-8601 week numbering on calendar dates.
//
// Weeks start on Monday and week 1 is the week that contains the first
// Thursday of the year. All computations are done on the calendar date of
// the instant in its own location, so the result never depends on the
// time of day or on daylight saving transitions.
package isoweek

import "time"

// Of returns the ISO year and week number of t.
func Of(t time.Time) (year, week int) {
	thursday := dateOnly(t).AddDate(0, 0, 4-isoWeekday(t))
	return thursday.Year(), (thursday.YearDay()-1)/7 + 1
}

// Monday returns midnight of the Monday that starts the given ISO week,
// expressed in loc. Week 1 starts on the Monday on or before January 4th.
func Monday(year, week int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, loc)
	first := jan4.AddDate(0, 0, 1-isoWeekday(jan4))
	return first.AddDate(0, 0, (week-1)*7)
}

// WeeksInYear reports whether the ISO year has 52 or 53 weeks.
func WeeksInYear(year int) int {
	_, week := Of(time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC))
	return week
}

// Valid reports whether week exists in the given ISO year.
func Valid(year, week int) bool {
	return week >= 1 && week <= WeeksInYear(year)
}

// Compare orders two ISO weeks chronologically by their Mondays.
// It returns -1, 0 or +1.
func Compare(year1, week1, year2, week2 int) int {
	a := Monday(year1, week1, time.UTC)
	b := Monday(year2, week2, time.UTC)
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// isoWeekday maps Monday..Sunday to 1..7.
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
