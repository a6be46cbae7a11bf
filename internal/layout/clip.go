package layout

import (
	"fmt"
	"time"

	"monthcal/internal/model"
)

// Span is an event's date range intersected with a window.
type Span struct {
	Event model.Event

	// StartDay and EndDay are the visible 1-based days of month (inclusive).
	StartDay int
	EndDay   int

	// BeforeWindow / AfterWindow mark that the event's true start / end
	// lies outside the window, i.e. the bar continues off-grid.
	BeforeWindow bool
	AfterWindow  bool

	// origin is the window StartDay and EndDay count in.
	origin Window
}

// Clip intersects ev with w. ok is false when the event lies wholly outside
// the window. An event whose start is after its end is rejected with
// ErrInvalidEventRange.
func Clip(ev model.Event, w Window) (span Span, ok bool, err error) {
	if err := ev.Validate(); err != nil {
		return Span{}, false, fmt.Errorf("%w: %v", ErrInvalidEventRange, err)
	}

	span, ok = clipEvent(ev, w)
	return span, ok, nil
}

// clipEvent is Clip for an event already known to be valid.
func clipEvent(ev model.Event, w Window) (Span, bool) {
	span, ok := clipRange(model.Date(ev.Start), model.Date(ev.End), w)
	span.Event = ev
	return span, ok
}

// Clip intersects the span's visible dates with w. Continuation flags are
// kept, so clipping a span to the window it came from returns it unchanged.
// A span built by hand, without a window, is read as days of w.
func (s Span) Clip(w Window) (Span, bool) {
	out, ok := clipRange(s.startDate(w), s.endDate(w), w)
	out.Event = s.Event
	out.BeforeWindow = out.BeforeWindow || s.BeforeWindow
	out.AfterWindow = out.AfterWindow || s.AfterWindow
	return out, ok
}

// Duration is the clipped length in days, inclusive.
func (s Span) Duration() int {
	return s.EndDay - s.StartDay + 1
}

// Covers reports whether the span includes the given day of month.
func (s Span) Covers(day int) bool {
	return day >= s.StartDay && day <= s.EndDay
}

func (s Span) startDate(w Window) time.Time {
	return s.window(w).Date(s.StartDay)
}

func (s Span) endDate(w Window) time.Time {
	return s.window(w).Date(s.EndDay)
}

func (s Span) window(fallback Window) Window {
	if s.origin.Start.IsZero() {
		return fallback
	}
	return s.origin
}

func clipRange(start, end time.Time, w Window) (Span, bool) {
	if end.Before(w.Start) || start.After(w.End) {
		return Span{}, false
	}

	visStart, visEnd := start, end
	if visStart.Before(w.Start) {
		visStart = w.Start
	}
	if visEnd.After(w.End) {
		visEnd = w.End
	}

	return Span{
		StartDay:     visStart.Day(),
		EndDay:       visEnd.Day(),
		BeforeWindow: start.Before(w.Start),
		AfterWindow:  end.After(w.End),
		origin:       w,
	}, true
}
