package dashboard_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/dashboard"
	"github.com/deevus/maintenance-tui/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockService(total *atomic.Int32) *api.MockDashboardService {
	return &api.MockDashboardService{
		StatsFunc: func(ctx context.Context, f api.DashboardFilters) (*api.DashboardStats, error) {
			return &api.DashboardStats{TotalMachines: int(total.Load())}, nil
		},
		ChartsFunc: func(ctx context.Context, f api.DashboardFilters) (*api.DashboardCharts, error) {
			return &api.DashboardCharts{MachineStatus: api.MachineStatusCounts{Operational: 4}}, nil
		},
		AlertsFunc: func(ctx context.Context, f api.DashboardFilters) ([]api.MaintenanceAlert, error) {
			return []api.MaintenanceAlert{{ID: "a1", DaysRemaining: 1}}, nil
		},
		RecentMachinesFunc: func(ctx context.Context, f api.DashboardFilters) ([]api.RecentMachine, error) {
			return []api.RecentMachine{{ID: "m1"}}, nil
		},
	}
}

func newRefresher(svc api.DashboardServiceAPI) *dashboard.Refresher {
	return dashboard.NewRefresher(dashboard.RefresherParams{
		Service: svc,
		Cache:   dashboard.NewCache(nil),
		Intervals: dashboard.Intervals{
			Stats:  time.Hour,
			Alerts: time.Hour,
			Full:   time.Hour,
		},
		Jitter: time.Millisecond,
	})
}

func TestRefresher_Reload(t *testing.T) {
	var total atomic.Int32
	total.Store(5)
	r := newRefresher(mockService(&total))

	require.NoError(t, r.Reload(context.Background()))
	snap := r.Cache().Get()
	require.NotNil(t, snap)
	assert.Equal(t, 5, snap.Stats.TotalMachines)
	assert.Equal(t, 4, snap.Charts.MachineStatus.Operational)
	assert.Len(t, snap.Alerts, 1)
	assert.Len(t, snap.RecentMachines, 1)
}

func TestRefresher_FailureKeepsSnapshot(t *testing.T) {
	var total atomic.Int32
	total.Store(5)
	svc := mockService(&total)
	r := newRefresher(svc)
	require.NoError(t, r.Reload(context.Background()))
	before := r.Cache().Get()

	svc.StatsFunc = func(ctx context.Context, f api.DashboardFilters) (*api.DashboardStats, error) {
		return nil, errors.New("502 bad gateway")
	}
	assert.Error(t, r.RefreshStats(context.Background()))
	assert.Error(t, r.Reload(context.Background()))
	assert.Same(t, before, r.Cache().Get())
}

func TestRefresher_PartialRefreshes(t *testing.T) {
	var total atomic.Int32
	total.Store(5)
	r := newRefresher(mockService(&total))

	require.NoError(t, r.RefreshStats(context.Background()))
	assert.Nil(t, r.Cache().Get(), "no snapshot to merge into yet")

	require.NoError(t, r.Reload(context.Background()))
	total.Store(6)
	require.NoError(t, r.RefreshStats(context.Background()))
	assert.Equal(t, 6, r.Cache().Get().Stats.TotalMachines)
	assert.Len(t, r.Cache().Get().RecentMachines, 1)
}

func TestRefresher_SetFiltersReloads(t *testing.T) {
	var seen atomic.Value
	var total atomic.Int32
	svc := mockService(&total)
	svc.StatsFunc = func(ctx context.Context, f api.DashboardFilters) (*api.DashboardStats, error) {
		seen.Store(f.Client)
		return &api.DashboardStats{}, nil
	}
	r := newRefresher(svc)

	require.NoError(t, r.SetFilters(context.Background(), api.DashboardFilters{Client: "acme"}))
	assert.Equal(t, "acme", seen.Load())
	assert.Equal(t, "acme", r.Filters().Client)
	assert.NotNil(t, r.Cache().Get())
}

func TestRefresher_RunPollsUntilCancelled(t *testing.T) {
	var total atomic.Int32
	var statsCalls atomic.Int32
	svc := mockService(&total)
	svc.StatsFunc = func(ctx context.Context, f api.DashboardFilters) (*api.DashboardStats, error) {
		n := statsCalls.Add(1)
		return &api.DashboardStats{TotalMachines: int(n)}, nil
	}

	r := dashboard.NewRefresher(dashboard.RefresherParams{
		Service:   svc,
		Cache:     dashboard.NewCache(nil),
		Intervals: dashboard.Intervals{Stats: 10 * time.Millisecond, Alerts: time.Hour, Full: time.Hour},
		Jitter:    time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		snap := r.Cache().Get()
		return snap != nil && snap.Stats.TotalMachines >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRefresher_RunPollOnlySkipsInitialLoad(t *testing.T) {
	var total atomic.Int32
	var statsCalls atomic.Int32
	svc := mockService(&total)
	svc.StatsFunc = func(ctx context.Context, f api.DashboardFilters) (*api.DashboardStats, error) {
		statsCalls.Add(1)
		return &api.DashboardStats{}, nil
	}

	r := dashboard.NewRefresher(dashboard.RefresherParams{
		Service:   svc,
		Cache:     dashboard.NewCache(nil),
		Intervals: dashboard.Intervals{Stats: time.Hour, Alerts: time.Hour, Full: time.Hour},
		Jitter:    time.Millisecond,
		PollOnly:  true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, statsCalls.Load())
	assert.Nil(t, r.Cache().Get())
}

func TestRefresher_Consume(t *testing.T) {
	var total atomic.Int32
	total.Store(5)
	r := newRefresher(mockService(&total))
	require.NoError(t, r.Reload(context.Background()))

	events := make(chan stream.DashboardEvent)
	alerts := make(chan []api.MaintenanceAlert)
	done := make(chan struct{})
	go func() {
		r.Consume(context.Background(), events, alerts)
		close(done)
	}()

	stats := api.DashboardStats{TotalMachines: 42}
	events <- stream.DashboardEvent{
		Type:  stream.EventDashboardUpdate,
		Patch: &api.DashboardPatch{Stats: &stats},
	}
	alerts <- []api.MaintenanceAlert{{ID: "x"}, {ID: "y"}}

	total.Store(7)
	events <- stream.DashboardEvent{
		Type:          stream.EventMachineStatusUpdate,
		MachineStatus: &stream.MachineStatusUpdate{MachineID: "m1", NewStatus: "offline"},
	}

	close(events)
	close(alerts)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Consume did not return after channels closed")
	}

	snap := r.Cache().Get()
	assert.Equal(t, 7, snap.Stats.TotalMachines)
	assert.Len(t, snap.Alerts, 2)
	assert.Len(t, snap.RecentMachines, 1)
}
