package model

import "time"

// DateLayout is the wire/file format for calendar dates.
const DateLayout = "2006-01-02"

// Date truncates t to its calendar date, expressed as midnight UTC. The
// wall-clock date in t's own location is kept; no zone conversion happens.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole-day difference b - a between two dates.
func DaysBetween(a, b time.Time) int {
	return int((Date(b).Unix() - Date(a).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// ParseDate parses a "2006-01-02" date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
