package cli

import (
	"context"
	"fmt"
	"os"

	"monthcal/internal/config"
	"monthcal/internal/ics"
	"monthcal/internal/source"
)

// buildSource assembles the configured event sources, in order: events
// file, ICS feeds, Google Calendar.
func buildSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	var multi source.Multi

	if cfg.EventsFile != "" {
		multi = append(multi, source.File{Path: cfg.EventsFile, AllowMissing: true})
	}

	feeds := icsSources(cfg.ICS)
	if len(feeds) > 0 {
		multi = append(multi, source.NewFeed(ics.NewFetcher(nil), feeds))
	}

	if cfg.Google != nil && cfg.Google.CredentialsFile != "" {
		creds, err := os.ReadFile(cfg.Google.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read google credentials: %w", err)
		}
		g, err := source.NewGoogle(ctx, creds, cfg.Google.CalendarID)
		if err != nil {
			return nil, err
		}
		multi = append(multi, g)
	}

	return multi, nil
}

// icsSources converts config entries, skipping those without a URL. The ID
// falls back to the name, then the URL.
func icsSources(entries []config.ICSConfig) []ics.Source {
	out := make([]ics.Source, 0, len(entries))
	for _, c := range entries {
		if c.URL == "" {
			continue
		}
		id := c.ID
		if id == "" {
			if c.Name != "" {
				id = c.Name
			} else {
				id = c.URL
			}
		}
		out = append(out, ics.Source{ID: id, URL: c.URL})
	}
	return out
}
