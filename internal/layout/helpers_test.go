package layout

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"monthcal/internal/model"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := model.ParseDate(s)
	require.NoError(t, err)
	return d
}

func event(t *testing.T, id, start, end string) model.Event {
	t.Helper()
	return model.Event{
		ID:       id,
		Title:    "Event " + id,
		Category: model.CategoryTask,
		Status:   model.StatusToDo,
		Start:    date(t, start),
		End:      date(t, end),
	}
}

func window(t *testing.T, year int, month time.Month) Window {
	t.Helper()
	w, err := ResolveWindow(year, month)
	require.NoError(t, err)
	return w
}

func clip(t *testing.T, ev model.Event, w Window) Span {
	t.Helper()
	s, ok, err := Clip(ev, w)
	require.NoError(t, err)
	require.True(t, ok, "event %s should intersect %s", ev.ID, w.Key())
	return s
}

func rowIDs(rows []Row) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		ids := make([]string, 0, len(r.Spans))
		for _, s := range r.Spans {
			ids = append(ids, s.Event.ID)
		}
		out = append(out, ids)
	}
	return out
}
