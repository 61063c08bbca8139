package core

import (
	"strconv"
	"time"
)

// Week is seven consecutive days starting on Sunday.
type Week [7]time.Time

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// WeekdayLabels are the grid column headings, Sunday first.
var WeekdayLabels = [7]string{"Dom", "Seg", "Ter", "Qua", "Qui", "Sex", "Sáb"}

// FirstOfMonth returns the first day of t's month as a UTC midnight.
func FirstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// BuildMonthGrid returns the weeks needed to display the month containing ref.
// The first week starts on the Sunday on or before the 1st and the last week
// ends on the Saturday on or after the last day, so leading and trailing days
// of the adjacent months are included. All dates are UTC midnights.
func BuildMonthGrid(ref time.Time) []Week {
	first := FirstOfMonth(ref)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	var weeks []Week
	for day := start; !day.After(end); {
		var w Week
		for i := range w {
			w[i] = day
			day = day.AddDate(0, 0, 1)
		}
		weeks = append(weeks, w)
	}
	return weeks
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}

// SameDay reports whether a and b fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return KeyFor(a) == KeyFor(b)
}

// NextMonth returns the first day of the month after t's.
func NextMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, 1, 0)
}

// PrevMonth returns the first day of the month before t's.
func PrevMonth(t time.Time) time.Time {
	return FirstOfMonth(t).AddDate(0, -1, 0)
}

// MonthLabel renders t's month in Portuguese, e.g. "outubro 2025".
func MonthLabel(t time.Time) string {
	return monthNames[t.Month()-1] + " " + strconv.Itoa(t.Year())
}

// InMonth reports whether day belongs to the month shown for ref; false for
// the leading and trailing days of a grid.
func InMonth(day, ref time.Time) bool {
	return SameMonth(day, ref)
}
