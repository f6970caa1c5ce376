package dates

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ISOFormat is the canonical wire format for calendar dates.
const ISOFormat = "2006-01-02"

// Parse accepts a calendar date written as YYYY-MM-DD, DD-MM-YYYY or DD/MM/YYYY.
// The position of the 4-digit component decides which layout is in use.
// Impossible dates (e.g. February 30) are rejected instead of rolling over
// into the next month.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	sep := "-"
	if strings.Contains(s, "/") {
		sep = "/"
	}
	parts := strings.Split(s, sep)
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return time.Time{}, fmt.Errorf("unrecognized date format: %q", s)
		}
		nums[i] = n
	}

	var year, month, day int
	switch {
	case nums[0] > 1000:
		year, month, day = nums[0], nums[1], nums[2]
	case nums[2] > 1000:
		year, month, day = nums[2], nums[1], nums[0]
	default:
		return time.Time{}, fmt.Errorf("cannot locate 4-digit year in %q", s)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components, so round-trip the parts
	// to catch dates like Feb 30.
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid calendar date: %q", s)
	}
	return t, nil
}

// Format renders a date in the canonical YYYY-MM-DD form.
func Format(t time.Time) string {
	return t.Format(ISOFormat)
}

// AddDays returns the date n calendar days after t.
func AddDays(t time.Time, n int) time.Time {
	return truncate(t).AddDate(0, 0, n)
}

// AddMonths advances t by n calendar months, preserving the day of month
// where possible. When the target month is shorter the result is clamped to
// its last day (Jan 31 + 1 month = Feb 28/29), unlike time.AddDate which
// would roll over into March.
func AddMonths(t time.Time, n int) time.Time {
	t = truncate(t)
	firstOfTarget := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location()).AddDate(0, n, 0)
	day := t.Day()
	if last := daysIn(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, 0, 0, 0, 0, t.Location())
}

// AddYears advances t by n calendar years with the same day clamping as
// AddMonths (Feb 29 + 1 year = Feb 28).
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, n*12)
}

// IsOnOrBefore reports whether the calendar date of d falls on or before the
// calendar date of ref, ignoring time-of-day. This is the overdue predicate:
// a due date that is today or earlier counts as due.
func IsOnOrBefore(d, ref time.Time) bool {
	return !truncate(d).After(truncate(ref))
}

// IsBefore reports whether d's calendar date is strictly before ref's.
func IsBefore(d, ref time.Time) bool {
	return truncate(d).Before(truncate(ref))
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
