package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestEvent_Validate(t *testing.T) {
	ev := Event{ID: "7", Start: mustDate(t, "2025-04-03"), End: mustDate(t, "2025-04-01")}
	err := ev.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `event "7"`)

	ev.End = ev.Start
	assert.NoError(t, ev.Validate())

	// Time of day is ignored: same calendar date is valid.
	ev.Start = time.Date(2025, time.April, 3, 18, 0, 0, 0, time.UTC)
	ev.End = time.Date(2025, time.April, 3, 9, 0, 0, 0, time.UTC)
	assert.NoError(t, ev.Validate())
}

func TestEvent_Durations(t *testing.T) {
	ev := Event{Start: mustDate(t, "2025-04-28"), End: mustDate(t, "2025-05-05")}
	assert.Equal(t, 8, ev.DurationDays())
	assert.False(t, ev.SingleDay())

	ev.End = ev.Start
	assert.Equal(t, 1, ev.DurationDays())
	assert.True(t, ev.SingleDay())
}

func TestDaysBetween_AcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skip("tzdata not available")
	}
	a := time.Date(2025, time.March, 29, 12, 0, 0, 0, loc)
	b := time.Date(2025, time.March, 31, 1, 0, 0, 0, loc)
	assert.Equal(t, 2, DaysBetween(a, b))
	assert.Equal(t, -2, DaysBetween(b, a))
}

func TestParseCategory(t *testing.T) {
	tests := map[string]Category{
		"Task":      CategoryTask,
		" tasks ":   CategoryTask,
		"SPRINT":    CategorySprint,
		"milestone": CategoryOther,
		"":          CategoryOther,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseCategory(in), in)
	}
}

func TestEvent_HasAssignee(t *testing.T) {
	ev := Event{Assignees: []string{"Alice", "Bob"}}
	assert.True(t, ev.HasAssignee("Bob"))
	assert.False(t, ev.HasAssignee("bob"))
	assert.False(t, Event{}.HasAssignee("Alice"))
}
