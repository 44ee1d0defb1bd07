package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/stream"
	"github.com/lthibault/jitterbug/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Default refresh intervals.
const (
	DefaultStatsInterval  = 300 * time.Second
	DefaultAlertsInterval = 150 * time.Second
	DefaultFullInterval   = 3000 * time.Second
	DefaultJitter         = 30 * time.Millisecond
)

// Intervals are the independent polling periods of a Refresher.
type Intervals struct {
	Stats  time.Duration
	Alerts time.Duration
	Full   time.Duration
}

func (iv Intervals) withDefaults() Intervals {
	if iv.Stats <= 0 {
		iv.Stats = DefaultStatsInterval
	}
	if iv.Alerts <= 0 {
		iv.Alerts = DefaultAlertsInterval
	}
	if iv.Full <= 0 {
		iv.Full = DefaultFullInterval
	}
	return iv
}

// RefresherParams holds configuration for creating a Refresher.
type RefresherParams struct {
	Service   api.DashboardServiceAPI
	Cache     *Cache
	Intervals Intervals
	Jitter    time.Duration
	Filters   api.DashboardFilters
	// PollOnly makes Run skip its initial full load, for callers that
	// load the first snapshot themselves.
	PollOnly  bool
}

// Refresher feeds a Cache from the dashboard endpoints and push events.
// Failed refreshes are logged and leave the cached snapshot in place.
type Refresher struct {
	svc    api.DashboardServiceAPI
	cache  *Cache
	iv     Intervals
	jitter time.Duration
	poll   bool
	log    *zap.SugaredLogger

	mu      sync.Mutex
	filters api.DashboardFilters
}

// NewRefresher creates a Refresher.
func NewRefresher(p RefresherParams) *Refresher {
	jitter := p.Jitter
	if jitter <= 0 {
		jitter = DefaultJitter
	}
	return &Refresher{
		svc:     p.Service,
		cache:   p.Cache,
		iv:      p.Intervals.withDefaults(),
		jitter:  jitter,
		poll:    p.PollOnly,
		filters: p.Filters,
		log:     zap.S().Named("dashboard"),
	}
}

// Cache returns the cache being fed.
func (r *Refresher) Cache() *Cache {
	return r.cache
}

// Filters returns the filters applied to every request.
func (r *Refresher) Filters() api.DashboardFilters {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.filters
}

// SetFilters changes the filters and reloads everything with them.
func (r *Refresher) SetFilters(ctx context.Context, f api.DashboardFilters) error {
	r.mu.Lock()
	r.filters = f
	r.mu.Unlock()
	return r.Reload(ctx)
}

// Reload fetches every dashboard section in parallel and replaces the
// snapshot once all of them arrived.
func (r *Refresher) Reload(ctx context.Context) error {
	f := r.Filters()
	var data api.DashboardData

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := r.svc.Stats(gctx, f)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		if stats != nil {
			data.Stats = *stats
		}
		return nil
	})
	g.Go(func() error {
		charts, err := r.svc.Charts(gctx, f)
		if err != nil {
			return fmt.Errorf("charts: %w", err)
		}
		if charts != nil {
			data.Charts = *charts
		}
		return nil
	})
	g.Go(func() error {
		alerts, err := r.svc.Alerts(gctx, f)
		if err != nil {
			return fmt.Errorf("alerts: %w", err)
		}
		data.Alerts = alerts
		return nil
	})
	g.Go(func() error {
		recent, err := r.svc.RecentMachines(gctx, f)
		if err != nil {
			return fmt.Errorf("recent machines: %w", err)
		}
		data.RecentMachines = recent
		return nil
	})

	if err := g.Wait(); err != nil {
		r.log.Warnw("dashboard reload failed, keeping last snapshot", "error", err)
		return fmt.Errorf("reloading dashboard: %w", err)
	}
	r.cache.Set(data)
	return nil
}

// RefreshStats re-reads the headline counters.
func (r *Refresher) RefreshStats(ctx context.Context) error {
	stats, err := r.svc.Stats(ctx, r.Filters())
	if err != nil {
		r.log.Warnw("stats refresh failed", "error", err)
		return fmt.Errorf("refreshing stats: %w", err)
	}
	if stats != nil {
		r.merge(api.DashboardPatch{Stats: stats})
	}
	return nil
}

// RefreshAlerts re-reads the maintenance alerts.
func (r *Refresher) RefreshAlerts(ctx context.Context) error {
	alerts, err := r.svc.Alerts(ctx, r.Filters())
	if err != nil {
		r.log.Warnw("alerts refresh failed", "error", err)
		return fmt.Errorf("refreshing alerts: %w", err)
	}
	r.merge(api.DashboardPatch{Alerts: &alerts})
	return nil
}

func (r *Refresher) merge(p api.DashboardPatch) {
	if !r.cache.Merge(p) {
		r.log.Debugw("partial update ignored, no snapshot loaded yet")
	}
}

// Run performs an initial full load and then polls on three independent
// jittered timers until ctx is cancelled. Refreshes may overlap; the last
// one to finish wins.
func (r *Refresher) Run(ctx context.Context) error {
	if !r.poll {
		_ = r.Reload(ctx)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.every(gctx, r.iv.Stats, r.RefreshStats) })
	g.Go(func() error { return r.every(gctx, r.iv.Alerts, r.RefreshAlerts) })
	g.Go(func() error { return r.every(gctx, r.iv.Full, r.Reload) })
	return g.Wait()
}

func (r *Refresher) every(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	t := jitterbug.New(d, &jitterbug.Norm{Stdev: r.jitter})
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			_ = fn(ctx)
		}
	}
}

// Consume applies push events to the cache until ctx is cancelled or both
// channels are closed. Dashboard patches merge directly, machine and
// maintenance changes trigger a stats refresh, and alert lists replace the
// cached alerts.
func (r *Refresher) Consume(ctx context.Context, events <-chan stream.DashboardEvent, alerts <-chan []api.MaintenanceAlert) {
	for events != nil || alerts != nil {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			r.apply(ctx, ev)
		case list, ok := <-alerts:
			if !ok {
				alerts = nil
				continue
			}
			r.merge(api.DashboardPatch{Alerts: &list})
		}
	}
}

func (r *Refresher) apply(ctx context.Context, ev stream.DashboardEvent) {
	switch ev.Type {
	case stream.EventDashboardUpdate:
		if ev.Patch != nil && !ev.Patch.Empty() {
			r.merge(*ev.Patch)
		}
	case stream.EventMachineStatusUpdate, stream.EventMaintenanceUpdate:
		_ = r.RefreshStats(ctx)
	}
}
