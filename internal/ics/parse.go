package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// ParseICS parses a single ICS payload into calendar events.
//
//   - All-day events (VALUE=DATE or no time part) have an exclusive DTEND
//     per RFC 5545; it is converted to an inclusive end date.
//   - Timed events keep only their calendar dates. An end at exactly
//     midnight does not count the following day.
//   - CATEGORIES maps onto model.Category, STATUS onto the workflow
//     statuses and ATTENDEE CN (or the mail address) onto assignees.
//   - RRULE is not expanded; recurring events contribute their first
//     occurrence only.
//
// A VEVENT that cannot be parsed is logged and skipped.
func ParseICS(src Source, body []byte) ([]model.Event, error) {
	if len(body) == 0 {
		return nil, errors.New("empty ICS body")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		appLog.Error("ics parse failed", err, "id", src.ID, "url", redactURL(src.URL))
		return nil, err
	}

	events := make([]model.Event, 0)

	for _, comp := range cal.Events() {
		ev, perr := parseVEvent(src, comp)
		if perr != nil {
			appLog.Error("ics vevent parse failed", perr, "id", src.ID, "url", redactURL(src.URL))
			continue
		}
		events = append(events, ev)
	}

	appLog.Info("ics parse completed", "id", src.ID, "url", redactURL(src.URL), "event_count", len(events))
	return events, nil
}

func parseVEvent(src Source, ve *ical.VEvent) (model.Event, error) {
	out := model.Event{SourceID: src.ID, Category: model.CategoryOther}

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.ID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil {
		// Only the first listed category is meaningful on the grid.
		first, _, _ := strings.Cut(p.Value, ",")
		out.Category = model.ParseCategory(first)
	}
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		out.Status = mapStatus(p.Value)
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyAttendee) {
		if name := attendeeName(p); name != "" {
			out.Assignees = append(out.Assignees, name)
		}
	}

	start, end, err := eventDates(ve)
	if err != nil {
		return out, err
	}
	out.Start = start
	out.End = end

	if err := out.Validate(); err != nil {
		return out, err
	}
	return out, nil
}

// eventDates returns the inclusive calendar dates covered by a VEVENT.
func eventDates(ve *ical.VEvent) (time.Time, time.Time, error) {
	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil || dtStart.Value == "" {
		return time.Time{}, time.Time{}, errors.New("missing DTSTART")
	}

	if isAllDay(dtStart) {
		start, err := parseICSDate(dtStart.Value)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end := start
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil && dtEnd.Value != "" {
			exclusive, err := parseICSDate(dtEnd.Value)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			if last := exclusive.AddDate(0, 0, -1); last.After(start) {
				end = last
			}
		}
		return start, end, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ve.GetEndAt()
	if err != nil || end.Before(start) {
		end = start
	}
	if end.After(start) && end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		end = end.Add(-time.Nanosecond)
	}
	return model.Date(start), model.Date(end), nil
}

func isAllDay(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSDate parses a DATE value (20250101) as a civil date. A stray
// time part is ignored.
func parseICSDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if d, _, ok := strings.Cut(v, "T"); ok {
		v = d
	}
	return time.Parse("20060102", v)
}

func mapStatus(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "NEEDS-ACTION", "TENTATIVE":
		return model.StatusToDo
	case "IN-PROCESS", "CONFIRMED":
		return model.StatusInProgress
	case "COMPLETED", "CANCELLED":
		return model.StatusDone
	default:
		return ""
	}
}

func attendeeName(p *ical.IANAProperty) string {
	if cns, ok := p.ICalParameters[string(ical.ParameterCn)]; ok && len(cns) > 0 && cns[0] != "" {
		return cns[0]
	}
	v := strings.TrimSpace(p.Value)
	if len(v) >= len("mailto:") && strings.EqualFold(v[:len("mailto:")], "mailto:") {
		v = v[len("mailto:"):]
	}
	return v
}
