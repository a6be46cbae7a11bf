package model

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies an event on the calendar (task, sprint, ...).
type Category string

const (
	CategoryTask   Category = "Task"
	CategorySprint Category = "Sprint"
	CategoryOther  Category = "Other"
)

// ParseCategory maps free-form category labels (e.g. ICS CATEGORIES values)
// onto the known categories. Unknown labels become CategoryOther.
func ParseCategory(s string) Category {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "task", "tasks":
		return CategoryTask
	case "sprint", "sprints":
		return CategorySprint
	default:
		return CategoryOther
	}
}

// Workflow statuses used by the board and backlog views.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusInReview   = "In Review"
	StatusDone       = "Done"
)

// Event is a date-ranged item shown on the month grid. Start and End are
// inclusive calendar dates; only their year/month/day components are used
// by the layout engine.
//
// Events are treated as immutable input: nothing downstream of a source
// modifies them.
type Event struct {
	ID        string
	Title     string
	Category  Category
	Status    string
	Assignees []string

	Start time.Time
	End   time.Time

	// SourceID identifies the collaborator that supplied the event
	// (events file, ICS feed ID, Google calendar ID).
	SourceID    string
	Location    string
	Description string
}

// Validate checks the event's input contract: Start must not be after End.
func (e Event) Validate() error {
	if Date(e.Start).After(Date(e.End)) {
		return fmt.Errorf("event %q: start %s is after end %s",
			e.ID, e.Start.Format(DateLayout), e.End.Format(DateLayout))
	}
	return nil
}

// DurationDays returns the inclusive number of whole days the event covers.
func (e Event) DurationDays() int {
	return DaysBetween(e.Start, e.End) + 1
}

// SingleDay reports whether the event starts and ends on the same date.
func (e Event) SingleDay() bool {
	return Date(e.Start).Equal(Date(e.End))
}

// HasAssignee reports whether name is one of the event's assignees.
func (e Event) HasAssignee(name string) bool {
	for _, a := range e.Assignees {
		if a == name {
			return true
		}
	}
	return false
}
