package layout

import (
	"slices"
	"strings"

	"monthcal/internal/model"
)

// filterAll is the select-box value meaning "no constraint".
const filterAll = "all"

// Filter narrows the event set before clipping. Empty fields (or "all")
// do not constrain.
type Filter struct {
	Category string
	Status   string
	Assignee string

	// Search is a case-insensitive substring matched against the title.
	Search string
}

// Match reports whether ev passes every set constraint.
func (f Filter) Match(ev model.Event) bool {
	if active(f.Category) && string(ev.Category) != f.Category {
		return false
	}
	if active(f.Status) && ev.Status != f.Status {
		return false
	}
	if active(f.Assignee) && !ev.HasAssignee(f.Assignee) {
		return false
	}
	if q := strings.TrimSpace(f.Search); q != "" &&
		!strings.Contains(strings.ToLower(ev.Title), strings.ToLower(q)) {
		return false
	}
	return true
}

// Key is a stable string identifying the filter, for memoization.
func (f Filter) Key() string {
	return strings.Join([]string{
		norm(f.Category), norm(f.Status), norm(f.Assignee), strings.ToLower(strings.TrimSpace(f.Search)),
	}, "\x1f")
}

func active(v string) bool {
	return v != "" && v != filterAll
}

func norm(v string) string {
	if !active(v) {
		return ""
	}
	return v
}

// Assignees returns the sorted, de-duplicated assignees across events.
func Assignees(events []model.Event) []string {
	var out []string
	for _, ev := range events {
		out = append(out, ev.Assignees...)
	}
	return uniqueSorted(out)
}

// Categories returns the sorted, de-duplicated categories across events.
func Categories(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, string(ev.Category))
	}
	return uniqueSorted(out)
}

// Statuses returns the sorted, de-duplicated statuses across events.
func Statuses(events []model.Event) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Status)
	}
	return uniqueSorted(out)
}

func uniqueSorted(in []string) []string {
	out := slices.DeleteFunc(slices.Clone(in), func(s string) bool { return s == "" })
	if len(out) == 0 {
		return []string{}
	}
	slices.Sort(out)
	return slices.Compact(out)
}
