package layout

import (
	"cmp"
	"slices"
)

// Row is a horizontal lane of spans. Spans in a row never share a day.
type Row struct {
	Index int
	Spans []Span
}

// last returns the most recently placed span.
func (r Row) last() Span {
	return r.Spans[len(r.Spans)-1]
}

// At returns the span covering day, if any.
func (r Row) At(day int) (Span, bool) {
	for _, s := range r.Spans {
		if s.Covers(day) {
			return s, true
		}
	}
	return Span{}, false
}

// PackRows assigns spans to rows with a greedy first-fit pass.
//
// Spans are ordered by visible start day ascending, then by clipped duration
// descending; ties keep their input order. Each span goes into the first row
// whose last span ends strictly before it starts, otherwise into a new row.
// This is interval-graph coloring by heuristic: usually minimal, never
// guaranteed so, always deterministic for the same input.
func PackRows(spans []Span) []Row {
	if len(spans) == 0 {
		return nil
	}

	sorted := slices.Clone(spans)
	slices.SortStableFunc(sorted, func(a, b Span) int {
		if c := cmp.Compare(a.StartDay, b.StartDay); c != 0 {
			return c
		}
		return cmp.Compare(b.Duration(), a.Duration())
	})

	rows := make([]Row, 0)
	for _, s := range sorted {
		placed := false
		for i := range rows {
			if rows[i].last().EndDay < s.StartDay {
				rows[i].Spans = append(rows[i].Spans, s)
				placed = true
				break
			}
		}
		if !placed {
			rows = append(rows, Row{Index: len(rows), Spans: []Span{s}})
		}
	}

	return rows
}
