package views_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/dashboard"
	"github.com/deevus/maintenance-tui/internal/broadcast"
	"github.com/deevus/maintenance-tui/internal/vxtest"
	"github.com/deevus/maintenance-tui/stream"
	"github.com/deevus/maintenance-tui/views"
)

func dashboardData() api.DashboardData {
	due := time.Now().Add(72 * time.Hour)
	return api.DashboardData{
		Stats: api.DashboardStats{
			TotalMachines:         10,
			ActiveMachines:        8,
			PendingMaintenances:   3,
			CompletedMaintenances: 9,
			UpcomingAlerts:        2,
			TotalWorkHours:        1234.5,
		},
		Charts: api.DashboardCharts{
			MaintenancesByMonth: []api.MonthlyMaintenances{
				{Month: "2026-01", Total: 4}, {Month: "2026-02", Total: 7}, {Month: "2026-03", Total: 2},
			},
		},
		Alerts: []api.MaintenanceAlert{
			{ID: "later", MachineModel: "Lathe X", DaysRemaining: 3, Priority: api.PriorityLow},
			{ID: "late", MachineModel: "Press 400", DaysRemaining: -2, Priority: api.PriorityHigh},
		},
		RecentMachines: []api.RecentMachine{
			{ID: "m1", Model: "Press 400", SerialNumber: "P-1", Status: api.MachineOperational, NextMaintenanceDate: &due, DaysUntilMaintenance: 3},
			{ID: "m2", Model: "Mill 2", Status: api.MachineOutOfService},
		},
	}
}

func newDashboardView(cache *dashboard.Cache, reload func(context.Context) error) *views.DashboardView {
	return views.NewDashboardView(views.DashboardViewParams{
		Cache:    cache,
		Reload:   reload,
		StaleTTL: 30 * time.Second,
	})
}

func TestDashboardView_Load(t *testing.T) {
	cache := dashboard.NewCache(nil)
	calls := 0
	dv := newDashboardView(cache, func(ctx context.Context) error {
		calls++
		cache.Set(dashboardData())
		return nil
	})

	if dv.Loaded() {
		t.Error("expected Loaded()=false before Load()")
	}
	if err := dv.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 reload, got %d", calls)
	}
	if !dv.Loaded() {
		t.Error("expected Loaded()=true after Load()")
	}
	if dv.Snapshot().Stats.TotalMachines != 10 {
		t.Errorf("expected 10 machines, got %d", dv.Snapshot().Stats.TotalMachines)
	}
}

func TestDashboardView_Load_Error(t *testing.T) {
	dv := newDashboardView(dashboard.NewCache(nil), func(ctx context.Context) error {
		return errors.New("502 bad gateway")
	})
	if err := dv.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if dv.Loaded() {
		t.Error("expected Loaded()=false after failed Load()")
	}
}

func TestDashboardView_New_UsesExistingSnapshot(t *testing.T) {
	cache := dashboard.NewCache(nil)
	cache.Set(dashboardData())

	dv := newDashboardView(cache, nil)
	if !dv.Loaded() {
		t.Fatal("expected view to pick up the cached snapshot")
	}
	alerts := dv.Alerts()
	if len(alerts) != 2 || alerts[0].ID != "late" {
		t.Errorf("expected overdue alert first, got %+v", alerts)
	}
}

func TestDashboardView_Stale(t *testing.T) {
	now := time.Date(2020, 5, 1, 12, 0, 0, 0, time.UTC)
	cache := dashboard.NewCache(func() time.Time { return now })
	dv := newDashboardView(cache, nil)
	if !dv.Stale() {
		t.Error("expected Stale()=true without a snapshot")
	}

	cache.Set(dashboardData())
	_ = dv.Load(context.Background())
	if !dv.Stale() {
		t.Error("expected a snapshot stamped in the past to be stale")
	}

	fresh := dashboard.NewCache(nil)
	fresh.Set(dashboardData())
	if newDashboardView(fresh, nil).Stale() {
		t.Error("expected a just-stamped snapshot to be fresh")
	}
}

func TestDashboardView_Draw(t *testing.T) {
	cache := dashboard.NewCache(nil)
	dv := newDashboardView(cache, nil)

	if _, err := dv.Draw(vxtest.DrawContext(100, 30)); err != nil {
		t.Fatalf("unexpected error drawing loading state: %v", err)
	}

	cache.Set(dashboardData())
	_ = dv.Load(context.Background())

	for _, size := range [][2]uint16{{100, 30}, {60, 8}, {20, 3}} {
		s, err := dv.Draw(vxtest.DrawContext(size[0], size[1]))
		if err != nil {
			t.Fatalf("%dx%d: unexpected error: %v", size[0], size[1], err)
		}
		if s.Size.Width != size[0] {
			t.Errorf("expected width=%d, got %d", size[0], s.Size.Width)
		}
	}
}

func TestDashboardView_Subscriptions(t *testing.T) {
	cache := dashboard.NewCache(nil)
	var states broadcast.Cell[stream.ConnectionState]

	updates := make(chan struct{}, 16)
	dv := views.NewDashboardView(views.DashboardViewParams{
		Cache:    cache,
		States:   states.Subscribe,
		StaleTTL: time.Minute,
		PostEvent: func(ev vaxis.Event) {
			if _, ok := ev.(views.DashboardUpdated); ok {
				updates <- struct{}{}
			}
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dv.StartSubscriptions(ctx)
	defer dv.StopSubscriptions()

	wait := func(what string, cond func() bool) {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for !cond() {
			select {
			case <-updates:
			case <-deadline:
				t.Fatalf("timed out waiting for %s", what)
			}
		}
	}

	cache.Set(dashboardData())
	wait("snapshot", func() bool { return dv.Loaded() })

	states.Set(stream.Connected)
	wait("connection state", func() bool { return dv.ConnectionState() == stream.Connected })

	stats := api.DashboardStats{TotalMachines: 10, PendingMaintenances: 5}
	cache.Merge(api.DashboardPatch{Stats: &stats})
	wait("merged snapshot", func() bool { return dv.Snapshot().Stats.PendingMaintenances == 5 })

	history := dv.PendingHistory()
	if len(history) < 2 || history[len(history)-1] != 5 {
		t.Errorf("expected pending history to end with 5, got %v", history)
	}
}

func TestDashboardView_HandleEvent(t *testing.T) {
	cache := dashboard.NewCache(nil)
	cache.Set(dashboardData())
	dv := newDashboardView(cache, nil)

	if _, err := dv.HandleEvent(vaxis.Key{Keycode: 'j'}, vxfw.EventPhase(0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestFormatDue(t *testing.T) {
	tests := map[int]string{0: "today", 3: "in 3d", -2: "2d late"}
	for days, want := range tests {
		if got := views.FormatDue(days); got != want {
			t.Errorf("FormatDue(%d) = %q, want %q", days, got, want)
		}
	}
}
