package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// Private extended properties read from Google events.
const (
	googleCategoryKey = "category"
	googleStatusKey   = "status"
)

// EventsProvider lists the events of one calendar between two RFC 3339
// instants, with recurring events already expanded.
type EventsProvider interface {
	ListEvents(ctx context.Context, calendarID, timeMin, timeMax string) ([]*calendar.Event, error)
}

type serviceProvider struct {
	service *calendar.Service
}

func (p *serviceProvider) ListEvents(ctx context.Context, calendarID, timeMin, timeMax string) ([]*calendar.Event, error) {
	var items []*calendar.Event
	err := p.service.Events.List(calendarID).
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(250).
		Pages(ctx, func(page *calendar.Events) error {
			items = append(items, page.Items...)
			return nil
		})
	return items, err
}

// Google loads events from a Google Calendar. Only events overlapping
// [now - MonthsBack, now + MonthsAhead] (whole months) are requested.
type Google struct {
	provider   EventsProvider
	calendarID string

	MonthsBack  int
	MonthsAhead int
	Now         func() time.Time
}

// NewGoogle creates a Google source authenticated with a service-account
// JSON key (read-only scope).
func NewGoogle(ctx context.Context, credentialsJSON []byte, calendarID string) (*Google, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("google credentials: %w", err)
	}

	service, err := calendar.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("google calendar service: %w", err)
	}

	return NewGoogleWithService(service, calendarID), nil
}

// NewGoogleWithService wraps an existing calendar service.
func NewGoogleWithService(service *calendar.Service, calendarID string) *Google {
	return NewGoogleWithProvider(&serviceProvider{service: service}, calendarID)
}

func NewGoogleWithProvider(provider EventsProvider, calendarID string) *Google {
	return &Google{
		provider:    provider,
		calendarID:  calendarID,
		MonthsBack:  3,
		MonthsAhead: 12,
		Now:         time.Now,
	}
}

func (g *Google) Name() string { return "google:" + g.calendarID }

func (g *Google) Load(ctx context.Context) ([]model.Event, error) {
	now := g.Now().UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	timeMin := first.AddDate(0, -g.MonthsBack, 0).Format(time.RFC3339)
	timeMax := first.AddDate(0, g.MonthsAhead+1, 0).Format(time.RFC3339)

	items, err := g.provider.ListEvents(ctx, g.calendarID, timeMin, timeMax)
	if err != nil {
		return nil, fmt.Errorf("list google calendar events: %w", err)
	}

	events := make([]model.Event, 0, len(items))
	for _, item := range items {
		if item.Status == "cancelled" {
			continue
		}
		ev, err := g.convertToEvent(item)
		if err != nil {
			appLog.Warn("skipping google event", "id", item.Id, "err", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// convertToEvent maps a Google event onto a model.Event. All-day end dates
// are exclusive in the API and become inclusive here.
func (g *Google) convertToEvent(item *calendar.Event) (model.Event, error) {
	ev := model.Event{
		ID:          item.Id,
		Title:       item.Summary,
		Category:    model.CategoryOther,
		SourceID:    g.calendarID,
		Location:    item.Location,
		Description: item.Description,
	}
	if ev.Title == "" {
		ev.Title = "(untitled)"
	}

	if item.ExtendedProperties != nil {
		if c, ok := item.ExtendedProperties.Private[googleCategoryKey]; ok {
			ev.Category = model.ParseCategory(c)
		}
		ev.Status = item.ExtendedProperties.Private[googleStatusKey]
	}

	for _, a := range item.Attendees {
		if a.Resource {
			continue
		}
		switch {
		case a.DisplayName != "":
			ev.Assignees = append(ev.Assignees, a.DisplayName)
		case a.Email != "":
			ev.Assignees = append(ev.Assignees, a.Email)
		}
	}

	start, allDay, err := googleTime(item.Start)
	if err != nil {
		return model.Event{}, fmt.Errorf("start: %w", err)
	}
	end, _, err := googleTime(item.End)
	if err != nil {
		return model.Event{}, fmt.Errorf("end: %w", err)
	}

	if allDay {
		end = end.AddDate(0, 0, -1)
	} else if end.After(start) && end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		end = end.Add(-time.Nanosecond)
	}
	ev.Start = model.Date(start)
	ev.End = model.Date(end)
	if ev.End.Before(ev.Start) {
		ev.End = ev.Start
	}

	return ev, nil
}

var errMissingTime = errors.New("missing time")

// googleTime parses an EventDateTime. Timed values keep the offset they
// were sent with, so their calendar date is the calendar's local date.
func googleTime(dt *calendar.EventDateTime) (time.Time, bool, error) {
	switch {
	case dt == nil:
		return time.Time{}, false, errMissingTime
	case dt.DateTime != "":
		t, err := time.Parse(time.RFC3339, dt.DateTime)
		return t, false, err
	case dt.Date != "":
		t, err := model.ParseDate(dt.Date)
		return t, true, err
	default:
		return time.Time{}, false, errMissingTime
	}
}
