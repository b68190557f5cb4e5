package shared

import "time"

// DayRange returns the [start, end) bounds of the calendar day containing t in loc.
func DayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// SpanRange returns [start of startDay, start of the day after endDay) in loc.
func SpanRange(startDay, endDay time.Time, loc *time.Location) (time.Time, time.Time) {
	from, _ := DayRange(startDay, loc)
	_, to := DayRange(endDay, loc)
	return from, to
}
