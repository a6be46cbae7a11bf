package layout

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayOverflow_FiveEventsOnDayOne(t *testing.T) {
	april := window(t, 2025, time.April)

	var spans []Span
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		spans = append(spans, clip(t, event(t, id, "2025-04-01", "2025-04-02"), april))
	}
	rows := PackRows(spans)
	require.Len(t, rows, 5)

	ov := DayOverflow(rows, 1, 3)
	assert.Equal(t, 5, ov.Total)
	assert.Equal(t, 3, ov.Visible)
	assert.Equal(t, 2, ov.Hidden)
	assert.Equal(t, []int{0, 1, 2}, ov.VisibleRows)
	assert.True(t, ov.ShowMore())

	ids := make([]string, 0, len(ov.Events))
	for _, ev := range ov.Events {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids)

	quiet := DayOverflow(rows, 3, 3)
	assert.Zero(t, quiet.Total)
	assert.Zero(t, quiet.Hidden)
	assert.False(t, quiet.ShowMore())
}

func TestDayOverflow_VisibleRowsSkipRowsNotCoveringDay(t *testing.T) {
	april := window(t, 2025, time.April)
	spans := []Span{
		clip(t, event(t, "A", "2025-04-01", "2025-04-02"), april),
		clip(t, event(t, "B", "2025-04-01", "2025-04-05"), april),
		clip(t, event(t, "C", "2025-04-02", "2025-04-05"), april),
	}
	rows := PackRows(spans)
	require.Equal(t, [][]string{{"B"}, {"A"}, {"C"}}, rowIDs(rows))

	ov := DayOverflow(rows, 5, 2)
	assert.Equal(t, 2, ov.Total)
	assert.Equal(t, []int{0, 2}, ov.VisibleRows)
	assert.Zero(t, ov.Hidden)
}

func TestDayOverflow_DefaultCap(t *testing.T) {
	april := window(t, 2025, time.April)
	var spans []Span
	for _, id := range []string{"a", "b", "c", "d"} {
		spans = append(spans, clip(t, event(t, id, "2025-04-10", "2025-04-10"), april))
	}

	ov := DayOverflow(PackRows(spans), 10, 0)
	assert.Equal(t, DefaultMaxVisibleRows, ov.Visible)
	assert.Equal(t, 1, ov.Hidden)
}

func TestDayOverflow_Properties(t *testing.T) {
	april := window(t, 2025, time.April)
	rnd := rand.New(rand.NewSource(3))

	for round := 0; round < 100; round++ {
		rows := PackRows(randomSpans(t, rnd, april, rnd.Intn(30)))
		maxRows := 1 + rnd.Intn(4)

		for day := 1; day <= april.DaysInMonth; day++ {
			ov := DayOverflow(rows, day, maxRows)
			require.GreaterOrEqual(t, ov.Hidden, 0)
			require.Len(t, ov.Events, ov.Total)
			if ov.Total <= maxRows {
				require.Zero(t, ov.Hidden, "round %d day %d", round, day)
			}
		}
	}
}
