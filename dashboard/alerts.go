package dashboard

import (
	"cmp"
	"slices"

	"github.com/deevus/maintenance-tui/api"
)

// SortAlerts returns a copy of alerts ordered for display: most overdue
// first, then by priority from critical to low.
func SortAlerts(alerts []api.MaintenanceAlert) []api.MaintenanceAlert {
	out := slices.Clone(alerts)
	slices.SortStableFunc(out, func(a, b api.MaintenanceAlert) int {
		if c := cmp.Compare(a.DaysRemaining, b.DaysRemaining); c != 0 {
			return c
		}
		return cmp.Compare(a.Priority.Rank(), b.Priority.Rank())
	})
	return out
}

// CountOverdue returns how many alerts are past their due date.
func CountOverdue(alerts []api.MaintenanceAlert) int {
	n := 0
	for _, a := range alerts {
		if a.Overdue() {
			n++
		}
	}
	return n
}
