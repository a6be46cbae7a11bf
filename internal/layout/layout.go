// Package layout computes the month-view event layout: which events are
// visible in a month, which horizontal row each one occupies, how its bar is
// cut into per-day, per-week-row segments, and how many events overflow a
// day's visible row cap.
//
// The pipeline is a pure function of its inputs:
//
//	Window -> filtered events -> clipped spans -> rows -> segments + overflow
//
// Nothing is cached or shared between calls; callers pass one consistent
// snapshot of the event collection per invocation.
package layout

import (
	"fmt"
	"time"

	"monthcal/internal/model"
)

// Request carries everything a layout depends on besides the events
// themselves: the displayed month, active filters and the row cap.
type Request struct {
	Year           int
	Month          time.Month
	Filter         Filter
	MaxVisibleRows int
}

// DayCell is the layout of one day of the month.
type DayCell struct {
	Day      int
	Date     time.Time
	Segments []Segment
	Overflow Overflow
}

// MonthLayout is the full result for one request.
type MonthLayout struct {
	Window         Window
	MaxVisibleRows int
	Rows           []Row
	Days           []DayCell

	// EventCount is the number of events placed in rows, i.e. those that
	// passed the filter and intersect the window.
	EventCount int
}

// Day returns the cell for the 1-based day of month.
func (l MonthLayout) Day(day int) (DayCell, bool) {
	if day < 1 || day > len(l.Days) {
		return DayCell{}, false
	}
	return l.Days[day-1], true
}

// Build runs the full layout pipeline for req over events.
//
// Every event is validated first, filtered or not: one event with its start
// after its end fails the whole call with ErrInvalidEventRange.
func Build(events []model.Event, req Request) (MonthLayout, error) {
	w, err := ResolveWindow(req.Year, req.Month)
	if err != nil {
		return MonthLayout{}, err
	}

	maxRows := req.MaxVisibleRows
	if maxRows <= 0 {
		maxRows = DefaultMaxVisibleRows
	}

	spans := make([]Span, 0, len(events))
	for _, ev := range events {
		if err := ev.Validate(); err != nil {
			return MonthLayout{}, fmt.Errorf("%w: %v", ErrInvalidEventRange, err)
		}
		if !req.Filter.Match(ev) {
			continue
		}
		if span, ok := clipEvent(ev, w); ok {
			spans = append(spans, span)
		}
	}

	rows := PackRows(spans)

	days := make([]DayCell, w.DaysInMonth)
	for day := 1; day <= w.DaysInMonth; day++ {
		days[day-1] = projectDay(day, rows, w, maxRows)
	}

	return MonthLayout{
		Window:         w,
		MaxVisibleRows: maxRows,
		Rows:           rows,
		Days:           days,
		EventCount:     len(spans),
	}, nil
}

func projectDay(day int, rows []Row, w Window, maxRows int) DayCell {
	ov := DayOverflow(rows, day, maxRows)

	cell := DayCell{
		Day:      day,
		Date:     w.Date(day),
		Segments: make([]Segment, 0, len(ov.VisibleRows)),
		Overflow: ov,
	}
	for lane, idx := range ov.VisibleRows {
		span, _ := rows[idx].At(day)
		seg := Project(day, span, w, idx)
		seg.Lane = lane
		cell.Segments = append(cell.Segments, seg)
	}

	return cell
}

// DayDetail returns the overflow detail for one day of a request: every
// event covering the day and the hidden count.
func DayDetail(events []model.Event, req Request, day int) (Overflow, error) {
	l, err := Build(events, req)
	if err != nil {
		return Overflow{}, err
	}
	cell, ok := l.Day(day)
	if !ok {
		return Overflow{}, fmt.Errorf("%w: day %d outside %s", ErrInvalidWindow, day, l.Window.Key())
	}
	return cell.Overflow, nil
}
