// Package source loads the event set shown on the month grid from the
// configured collaborators: a YAML events file, ICS subscriptions and a
// Google Calendar.
package source

import (
	"context"
	"errors"
	"fmt"

	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// Source supplies a full set of events. Implementations return a fresh
// slice on every call; callers may keep it.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]model.Event, error)
}

// Multi concatenates several sources in order.
type Multi []Source

func (m Multi) Name() string { return "multi" }

// Load loads every source. A failing source is logged and skipped so the
// remaining ones still contribute; the combined error of all failures is
// returned alongside the partial result.
func (m Multi) Load(ctx context.Context) ([]model.Event, error) {
	var (
		events []model.Event
		errs   []error
	)
	for _, src := range m {
		if err := ctx.Err(); err != nil {
			return events, err
		}
		evs, err := src.Load(ctx)
		if err != nil {
			appLog.Error("source load failed", err, "source", src.Name())
			errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
			continue
		}
		appLog.Debug("source loaded", "source", src.Name(), "events", len(evs))
		events = append(events, evs...)
	}
	if events == nil {
		events = []model.Event{}
	}
	return events, errors.Join(errs...)
}

// Static is a fixed in-memory event set.
type Static []model.Event

func (s Static) Name() string { return "static" }

func (s Static) Load(context.Context) ([]model.Event, error) {
	out := make([]model.Event, len(s))
	copy(out, s)
	return out, nil
}
