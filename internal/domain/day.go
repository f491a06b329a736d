package domain

import "time"

// DayKeyLayout is the wire and storage format of a calendar day.
const DayKeyLayout = "2006-01-02"

// StartOfDay truncates t to midnight in loc. The result has no time-of-day component
// and is the key every per-day record is stored under.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// PreviousDay returns the [start, end) window of the calendar day before day.
func PreviousDay(day time.Time) (time.Time, time.Time) {
	return day.AddDate(0, 0, -1), day
}

// DayKey formats the calendar day of t.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// ParseDay parses a YYYY-MM-DD or RFC 3339 value and returns its midnight in loc.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DayKeyLayout, value, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, err
	}
	return StartOfDay(t, loc), nil
}
