package layout

import (
	"fmt"
	"strings"
	"time"

	"monthcal/internal/model"
)

const monthKeyLayout = "2006-01"

// Window is the visible month: its date range plus the number of leading
// empty grid cells before day 1. Weeks start on Monday.
type Window struct {
	Year  int
	Month time.Month

	// Start and End are the first and last day of the month (inclusive),
	// as midnight UTC calendar dates.
	Start time.Time
	End   time.Time

	DaysInMonth int

	// FirstWeekdayOffset is the number of blank cells before day 1 in a
	// Monday-first grid: (weekday(day 1) + 6) mod 7.
	FirstWeekdayOffset int
}

// ResolveWindow derives the window for the given month.
func ResolveWindow(year int, month time.Month) (Window, error) {
	if month < time.January || month > time.December {
		return Window{}, fmt.Errorf("%w: month %d", ErrInvalidWindow, int(month))
	}
	if year < 1 || year > 9999 {
		return Window{}, fmt.Errorf("%w: year %d", ErrInvalidWindow, year)
	}

	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	return Window{
		Year:               year,
		Month:              month,
		Start:              start,
		End:                end,
		DaysInMonth:        end.Day(),
		FirstWeekdayOffset: (int(start.Weekday()) + 6) % 7,
	}, nil
}

// ParseMonth resolves a "2006-01" month key.
func ParseMonth(key string) (Window, error) {
	t, err := time.Parse(monthKeyLayout, strings.TrimSpace(key))
	if err != nil {
		return Window{}, fmt.Errorf("%w: %q", ErrInvalidWindow, key)
	}
	return ResolveWindow(t.Year(), t.Month())
}

// Key returns the "2006-01" month key.
func (w Window) Key() string {
	return w.Start.Format(monthKeyLayout)
}

// Prev returns the window of the preceding month.
func (w Window) Prev() (Window, error) {
	p := w.Start.AddDate(0, -1, 0)
	return ResolveWindow(p.Year(), p.Month())
}

// Next returns the window of the following month.
func (w Window) Next() (Window, error) {
	n := w.Start.AddDate(0, 1, 0)
	return ResolveWindow(n.Year(), n.Month())
}

// Date returns the calendar date of the 1-based day of month.
func (w Window) Date(day int) time.Time {
	return w.Start.AddDate(0, 0, day-1)
}

// Contains reports whether the calendar date of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	d := model.Date(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Weeks returns the number of displayed week-rows.
func (w Window) Weeks() int {
	return (w.FirstWeekdayOffset + w.DaysInMonth + 6) / 7
}

// WeekRow returns the first and last day of month of the displayed
// week-row containing day, clamped to the month.
func (w Window) WeekRow(day int) (first, last int) {
	week := (day - 1 + w.FirstWeekdayOffset) / 7
	first = week*7 - w.FirstWeekdayOffset + 1
	last = min(first+6, w.DaysInMonth)
	return max(first, 1), last
}
