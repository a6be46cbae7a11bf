package layout

import "monthcal/internal/model"

// Segment is the piece of an event bar drawn in one day cell.
//
// The grid is rendered week by week, so a multi-week event is never one
// continuous bar: it restarts at the first day of every week-row.
type Segment struct {
	Event model.Event

	// Row is the global row index; Lane is the position among the rows
	// visible on this day.
	Row  int
	Lane int

	Day int

	// Length is the number of contiguous days the bar runs from Day,
	// stopping at the event end, the month end or the week-row end.
	Length int

	IsStart bool
	IsEnd   bool

	RoundLeft  bool
	RoundRight bool
	SingleDay  bool
}

// Project computes the segment of span drawn on day. day must be covered by
// the span.
func Project(day int, span Span, w Window, row int) Segment {
	weekFirst, weekLast := w.WeekRow(day)

	isStart := day == span.StartDay || day == weekFirst
	isEnd := day == span.EndDay || day == weekLast
	single := span.Event.SingleDay()

	last := min(span.EndDay, weekLast, w.DaysInMonth)

	return Segment{
		Event:   span.Event,
		Row:     row,
		Day:     day,
		Length:  last - day + 1,
		IsStart: isStart,
		IsEnd:   isEnd,
		// An event continuing past either month edge keeps a flat edge
		// there, including on every week-row boundary.
		RoundLeft:  (isStart && !span.BeforeWindow) || single,
		RoundRight: (isEnd && !span.AfterWindow) || single,
		SingleDay:  single,
	}
}
