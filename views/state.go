package views

// ViewLoaded is a custom vaxis event posted when a view finishes loading data.
// It is sent from background goroutines via PostEvent to notify the UI.
type ViewLoaded struct {
	Tab int
	Err error
}

// DashboardUpdated is posted by subscription goroutines when a new
// dashboard snapshot or connection state arrives, triggering a redraw.
type DashboardUpdated struct{}

// ActionDone is posted when a maintenance action started from the
// maintenances view finishes.
type ActionDone struct {
	Message string
	Err     error
}
