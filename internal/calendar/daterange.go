package calendar

import "time"

// DateRange is an optional calendar-date interval. Either bound may be
// zero, meaning unbounded on that side; when both bounds are set the
// interval is closed (start and end days are in range).
type DateRange struct {
	Start time.Time
	End   time.Time
}

// DayOf truncates a timestamp to its calendar day, dropping the
// time-of-day components so partial-day timestamps cannot shift a day
// across the range boundary.
func DayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// IsZero reports whether neither bound is set.
func (r DateRange) IsZero() bool { return r.Start.IsZero() && r.End.IsZero() }

// InRange reports whether day falls inside the range at calendar-day
// granularity. An unset bound leaves that side open; a fully unset range
// includes every day.
func (r DateRange) InRange(day time.Time) bool {
	d := DayOf(day)
	if !r.Start.IsZero() && d.Before(DayOf(r.Start)) {
		return false
	}
	if !r.End.IsZero() && d.After(DayOf(r.End)) {
		return false
	}
	return true
}
