package dateutil

import (
	"time"
)

// DayLayout is the layout of a calendar day key.
const DayLayout = "2006-01-02"

// DayKey returns the calendar day of t in loc, for example "2024-01-31".
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayLayout)
}

// ParseDay parses a day key into the midnight of that day in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DayLayout, day, loc)
}

// AddDays returns the day key which is n days after day. The calculation is
// done on calendar dates, so it is not affected by daylight saving changes.
func AddDays(day string, n int) (string, error) {
	t, err := time.Parse(DayLayout, day)
	if err != nil {
		return "", err
	}

	return t.AddDate(0, 0, n).Format(DayLayout), nil
}

// DaysBetween returns the number of calendar days from a to b. It is negative
// if b is before a.
func DaysBetween(a, b string) (int, error) {
	ta, err := time.Parse(DayLayout, a)
	if err != nil {
		return 0, err
	}

	tb, err := time.Parse(DayLayout, b)
	if err != nil {
		return 0, err
	}

	return int(tb.Sub(ta).Hours() / 24), nil
}

func BeginningOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func NextDay(t time.Time, loc *time.Location) time.Time {
	return BeginningOfDay(t, loc).AddDate(0, 0, 1)
}
