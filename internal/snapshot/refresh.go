package snapshot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	appLog "monthcal/internal/log"
	"monthcal/internal/source"
)

// Refresher reloads a source into a Store, on demand and on a cron
// schedule.
type Refresher struct {
	store   *Store
	src     source.Source
	timeout time.Duration

	// mu serializes loads so two refreshes never race to Replace.
	mu sync.Mutex

	cron *cron.Cron
}

// NewRefresher creates a Refresher. timeout bounds each scheduled load;
// zero means one minute.
func NewRefresher(store *Store, src source.Source, timeout time.Duration) *Refresher {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &Refresher{store: store, src: src, timeout: timeout}
}

// RefreshNow loads the source and replaces the snapshot.
//
// A load that fails outright keeps the previous snapshot. A partial load
// (some events plus an error) is installed and the error still returned.
func (r *Refresher) RefreshNow(ctx context.Context) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := time.Now()
	events, err := r.src.Load(ctx)
	if err != nil && len(events) == 0 {
		appLog.Error("refresh failed; keeping previous snapshot", err, "source", r.src.Name())
		return r.store.Current(), fmt.Errorf("refresh: %w", err)
	}

	snap := r.store.Replace(events)
	appLog.Info("snapshot refreshed",
		"version", snap.Version,
		"events", len(snap.Events),
		"took", time.Since(started).Round(time.Millisecond).String(),
		"partial", err != nil,
	)
	if err != nil {
		return snap, fmt.Errorf("refresh (partial): %w", err)
	}
	return snap, nil
}

// Start schedules RefreshNow on spec (standard 5-field cron syntax or
// descriptors such as "@every 10m"). It returns an error for an invalid
// spec or if already started.
func (r *Refresher) Start(spec string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cron != nil {
		return fmt.Errorf("refresher already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(spec, r.scheduled); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()
	r.cron = c

	appLog.Info("refresh scheduled", "spec", spec)
	return nil
}

// Stop halts the schedule and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	r.mu.Lock()
	c := r.cron
	r.cron = nil
	r.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

func (r *Refresher) scheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	if _, err := r.RefreshNow(ctx); err != nil {
		appLog.Warn("scheduled refresh error", "err", err)
	}
}
