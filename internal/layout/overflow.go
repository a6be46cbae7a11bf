package layout

import "monthcal/internal/model"

// DefaultMaxVisibleRows is the number of rows a day cell shows before the
// "+N more" affordance kicks in.
const DefaultMaxVisibleRows = 3

// Overflow describes how a single day's events split between visible rows
// and the "+N more" affordance.
type Overflow struct {
	Day int

	// Total is the number of events covering the day; Visible those drawn
	// in the day's visible rows; Hidden = Total - Visible.
	Total   int
	Visible int
	Hidden  int

	// VisibleRows lists the indexes of the rows drawn for this day.
	VisibleRows []int

	// Events is every event covering the day in row order, not only the
	// hidden ones: the overflow detail view lists all of them.
	Events []model.Event
}

// ShowMore reports whether the overflow affordance is shown for the day.
func (o Overflow) ShowMore() bool {
	return o.Hidden > 0
}

// DayOverflow computes the overflow for day. The visible rows are the first
// maxVisibleRows rows (by index) that have a span covering the day. A
// non-positive maxVisibleRows falls back to DefaultMaxVisibleRows.
func DayOverflow(rows []Row, day, maxVisibleRows int) Overflow {
	if maxVisibleRows <= 0 {
		maxVisibleRows = DefaultMaxVisibleRows
	}

	out := Overflow{Day: day}
	for _, r := range rows {
		s, ok := r.At(day)
		if !ok {
			continue
		}
		out.Total++
		out.Events = append(out.Events, s.Event)
		if len(out.VisibleRows) < maxVisibleRows {
			out.VisibleRows = append(out.VisibleRows, r.Index)
		}
	}
	out.Visible = len(out.VisibleRows)
	out.Hidden = out.Total - out.Visible

	return out
}
