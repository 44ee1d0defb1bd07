// Package dashboard keeps the console's dashboard snapshot current from
// periodic polling and push events.
package dashboard

import (
	"slices"
	"time"

	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/internal/broadcast"
)

// Snapshot is one coherent view of the dashboard. Published snapshots are
// never modified; every change produces a new one.
type Snapshot struct {
	Stats          api.DashboardStats
	Charts         api.DashboardCharts
	Alerts         []api.MaintenanceAlert
	RecentMachines []api.RecentMachine
	LastUpdated    time.Time
}

// Cache owns the dashboard snapshot. Set and Merge are the only ways to
// change it.
type Cache struct {
	cell broadcast.Cell[*Snapshot]
	now  func() time.Time
}

// NewCache creates an empty cache. now defaults to time.Now.
func NewCache(now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{now: now}
}

// Get returns the current snapshot, or nil before the first Set.
func (c *Cache) Get() *Snapshot {
	s, _ := c.cell.Get()
	return s
}

// Subscribe delivers the current snapshot, if any, and then every change.
// A slow subscriber only sees the newest snapshot.
func (c *Cache) Subscribe() *broadcast.Subscription[*Snapshot] {
	return c.cell.Subscribe()
}

// Set replaces the whole snapshot.
func (c *Cache) Set(data api.DashboardData) {
	c.cell.Update(func(prev *Snapshot, _ bool) (*Snapshot, bool) {
		return &Snapshot{
			Stats:          data.Stats,
			Charts:         data.Charts,
			Alerts:         nonNil(data.Alerts),
			RecentMachines: nonNil(data.RecentMachines),
			LastUpdated:    c.stamp(prev),
		}, true
	})
}

// Merge overlays the fields present in patch onto the current snapshot and
// keeps the rest. It does nothing and reports false when there is no
// snapshot yet.
func (c *Cache) Merge(patch api.DashboardPatch) bool {
	return c.cell.Update(func(prev *Snapshot, _ bool) (*Snapshot, bool) {
		if prev == nil {
			return nil, false
		}
		next := *prev
		if patch.Stats != nil {
			next.Stats = *patch.Stats
		}
		if patch.Charts != nil {
			next.Charts = *patch.Charts
		}
		if patch.Alerts != nil {
			next.Alerts = nonNil(*patch.Alerts)
		}
		if patch.RecentMachines != nil {
			next.RecentMachines = nonNil(*patch.RecentMachines)
		}
		next.LastUpdated = c.stamp(prev)
		return &next, true
	})
}

// stamp returns the clock reading, nudged forward if needed so that
// LastUpdated strictly increases.
func (c *Cache) stamp(prev *Snapshot) time.Time {
	t := c.now()
	if prev != nil && !t.After(prev.LastUpdated) {
		t = prev.LastUpdated.Add(time.Nanosecond)
	}
	return t
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clip(s)
}
