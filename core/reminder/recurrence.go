package reminder

import (
	"errors"
	"time"
)

// ErrUnknownPattern rejects recurrence patterns outside the supported four.
// An unknown pattern is a data-integrity problem; it never silently falls
// back to another rule.
var ErrUnknownPattern = errors.New("unknown recurrence pattern")

// NextOccurrence computes the occurrence following `current` for the given
// pattern, using calendar semantics: daily is +1 calendar day and weekly +7
// (both absorb DST shifts), monthly and yearly preserve the day-of-month,
// clamped to the last day of a shorter target month (Jan 31 -> Feb 28/29,
// Feb 29 -> Feb 28 on non-leap years). The result is always strictly after
// `current`.
func NextOccurrence(current time.Time, pattern string) (time.Time, error) {
	switch pattern {
	case PatternDaily:
		return current.AddDate(0, 0, 1), nil
	case PatternWeekly:
		return current.AddDate(0, 0, 7), nil
	case PatternMonthly:
		return addMonthsClamped(current, 1), nil
	case PatternYearly:
		return addMonthsClamped(current, 12), nil
	}
	return time.Time{}, ErrUnknownPattern
}

// addMonthsClamped advances `t` by `months`, clamping the day-of-month to the
// target month's length instead of letting time.AddDate roll over into the
// following month.
func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	first := time.Date(year, month+time.Month(months), 1, hour, min, sec, t.Nanosecond(), t.Location())
	if last := daysIn(first.Year(), first.Month()); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	// day 0 of the next month normalizes to the last day of this one
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
