package source

import (
	"context"
	"errors"

	"monthcal/internal/ics"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
)

// Feed loads events from ICS subscriptions. The fetcher's conditional-GET
// cache lives as long as the Feed.
type Feed struct {
	fetcher *ics.Fetcher
	sources []ics.Source
}

func NewFeed(fetcher *ics.Fetcher, sources []ics.Source) *Feed {
	if fetcher == nil {
		fetcher = ics.NewFetcher(nil)
	}
	return &Feed{fetcher: fetcher, sources: sources}
}

func (f *Feed) Name() string { return "ics" }

// Load fetches and parses every subscription. Feeds that fail to fetch or
// parse are skipped; an error is returned only when every feed failed.
func (f *Feed) Load(ctx context.Context) ([]model.Event, error) {
	results, errs := f.fetcher.FetchAll(ctx, f.sources)

	events := make([]model.Event, 0)
	for _, res := range results {
		evs, err := ics.ParseICS(res.Source, res.Body)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		appLog.Debug("ics feed loaded", "id", res.Source.ID, "events", len(evs), "from_cache", res.FromCache)
		events = append(events, evs...)
	}

	if len(f.sources) > 0 && len(errs) == len(f.sources) {
		return nil, errors.Join(errs...)
	}
	return events, nil
}
