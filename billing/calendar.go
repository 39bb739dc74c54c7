package billing

import "time"

// =============================================================================
// CALENDAR - Day-of-month arithmetic
// =============================================================================

// MinDay and MaxDay bound every stored day-of-month.
const (
	MinDay = 1
	MaxDay = 31
)

// DaysInMonth returns the number of days in month of year (Gregorian).
func DaysInMonth(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// IsLeapYear reports whether year is divisible by 4 and not by 100,
// unless also divisible by 400.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// ClampDay forces day into [1, max].
func ClampDay(day, max int) int {
	if day > max {
		day = max
	}
	if day < MinDay {
		day = MinDay
	}
	return day
}

// DueDateForCycle returns midnight, in ref's location, on dueDay of ref's
// month. dueDay is clamped to the month length, so 31 in February lands on
// the 28th or 29th.
func DueDateForCycle(dueDay int, ref time.Time) time.Time {
	y, m, _ := ref.Date()
	day := ClampDay(dueDay, DaysInMonth(y, m))
	return time.Date(y, m, day, 0, 0, 0, 0, ref.Location())
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
