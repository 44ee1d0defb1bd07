package views

import (
	"context"
	"fmt"
	"sync"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/list"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/dashboard"
	"github.com/deevus/maintenance-tui/internal/broadcast"
	"github.com/deevus/maintenance-tui/stream"
	"github.com/deevus/maintenance-tui/widgets"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DashboardViewParams holds configuration for creating a DashboardView.
type DashboardViewParams struct {
	Cache *dashboard.Cache
	// Reload fetches a full snapshot into Cache.
	Reload func(ctx context.Context) error
	// States returns a subscription to the push connection state. Nil
	// shows the stream as disconnected.
	States    func() *broadcast.Subscription[stream.ConnectionState]
	PostEvent func(vaxis.Event)
	StaleTTL  time.Duration
}

// DashboardView displays the live maintenance dashboard.
type DashboardView struct {
	cache     *dashboard.Cache
	reload    func(ctx context.Context) error
	states    func() *broadcast.Subscription[stream.ConnectionState]
	postEvent func(vaxis.Event)
	staleTTL  time.Duration
	log       *zap.SugaredLogger

	// Streaming state (protected by mu)
	mu           sync.Mutex
	snapshot     *dashboard.Snapshot
	alerts       []api.MaintenanceAlert
	connState    stream.ConnectionState
	pendingSpark *widgets.Sparkline
	monthlySpark *widgets.Sparkline

	cancelSubs context.CancelFunc

	alertList list.Dynamic
	now       func() time.Time
}

// NewDashboardView creates a DashboardView backed by the given params.
func NewDashboardView(p DashboardViewParams) *DashboardView {
	dv := &DashboardView{
		cache:        p.Cache,
		reload:       p.Reload,
		states:       p.States,
		postEvent:    p.PostEvent,
		staleTTL:     p.StaleTTL,
		log:          zap.S().Named("views.dashboard"),
		pendingSpark: widgets.NewSparkline(60),
		monthlySpark: widgets.NewSparkline(12),
		now:          time.Now,
	}
	dv.monthlySpark.Color = vaxis.IndexColor(5)
	dv.alertList.DrawCursor = true
	dv.alertList.Builder = dv.buildAlertItem
	if snap := p.Cache.Get(); snap != nil {
		dv.applySnapshot(snap)
	}
	return dv
}

// Load fetches a full dashboard snapshot.
func (dv *DashboardView) Load(ctx context.Context) error {
	if dv.reload != nil {
		if err := dv.reload(ctx); err != nil {
			return err
		}
	}
	if snap := dv.cache.Get(); snap != nil {
		dv.applySnapshot(snap)
	}
	return nil
}

// Loaded reports whether a snapshot is available.
func (dv *DashboardView) Loaded() bool {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	return dv.snapshot != nil
}

// Stale reports whether the snapshot is older than the configured TTL.
func (dv *DashboardView) Stale() bool {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	if dv.snapshot == nil {
		return true
	}
	return dv.now().Sub(dv.snapshot.LastUpdated) > dv.staleTTL
}

// Snapshot returns the snapshot currently on screen.
func (dv *DashboardView) Snapshot() *dashboard.Snapshot {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	return dv.snapshot
}

// Alerts returns the alerts in display order.
func (dv *DashboardView) Alerts() []api.MaintenanceAlert {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	return dv.alerts
}

// ConnectionState returns the last push connection state seen.
func (dv *DashboardView) ConnectionState() stream.ConnectionState {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	return dv.connState
}

// PendingHistory returns the pending-maintenance samples collected so far.
func (dv *DashboardView) PendingHistory() []float64 {
	dv.mu.Lock()
	defer dv.mu.Unlock()
	return dv.pendingSpark.Values()
}

// StartSubscriptions follows the cache and the connection state until
// StopSubscriptions is called or ctx is cancelled.
func (dv *DashboardView) StartSubscriptions(ctx context.Context) {
	subCtx, cancel := context.WithCancel(ctx)
	dv.cancelSubs = cancel

	go dv.runSnapshotSub(subCtx)
	if dv.states != nil {
		go dv.runStateSub(subCtx)
	}
}

// StopSubscriptions terminates all active subscriptions.
func (dv *DashboardView) StopSubscriptions() {
	if dv.cancelSubs != nil {
		dv.cancelSubs()
	}
}

func (dv *DashboardView) notify() {
	if dv.postEvent != nil {
		dv.postEvent(DashboardUpdated{})
	}
}

func (dv *DashboardView) runSnapshotSub(ctx context.Context) {
	sub := dv.cache.Subscribe()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-sub.C:
			if !ok {
				dv.log.Debug("snapshot subscription closed")
				return
			}
			dv.applySnapshot(snap)
			dv.notify()
		}
	}
}

func (dv *DashboardView) runStateSub(ctx context.Context) {
	sub := dv.states()
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-sub.C:
			if !ok {
				return
			}
			dv.mu.Lock()
			dv.connState = st
			dv.mu.Unlock()
			dv.notify()
		}
	}
}

func (dv *DashboardView) applySnapshot(snap *dashboard.Snapshot) {
	if snap == nil {
		return
	}
	dv.mu.Lock()
	defer dv.mu.Unlock()

	if dv.snapshot == snap {
		return
	}
	dv.snapshot = snap
	dv.alerts = dashboard.SortAlerts(snap.Alerts)
	dv.pendingSpark.Push(float64(snap.Stats.PendingMaintenances))

	monthly := make([]float64, 0, len(snap.Charts.MaintenancesByMonth))
	for _, m := range snap.Charts.MaintenancesByMonth {
		monthly = append(monthly, float64(m.Total))
	}
	dv.monthlySpark.SetValues(monthly)
}

// Fixed-width columns for the alerts table (CLIENT, TYPE, DUE, PRIORITY).
// The machine column width is computed dynamically to fill remaining space.
const (
	alertColClientWidth   = 16
	alertColTypeWidth     = 14
	alertColDueWidth      = 10
	alertColPriorityWidth = 9
	alertColGap           = 2
	alertFixedWidth       = alertColClientWidth + alertColGap + alertColTypeWidth + alertColGap +
		alertColDueWidth + alertColGap + alertColPriorityWidth
)

// alertCols returns column definitions with the machine column sized to fill width.
func alertCols(totalWidth int) []widgets.TableColumn {
	machineWidth := max(totalWidth-alertFixedWidth-alertColGap, 16)
	return []widgets.TableColumn{
		{Width: machineWidth},
		{Width: alertColClientWidth},
		{Width: alertColTypeWidth},
		{Width: alertColDueWidth, AlignRight: true},
		{Width: alertColPriorityWidth},
	}
}

// rowWidget renders a single row using WriteCell for exact column alignment.
type rowWidget struct {
	layout func(width int) []widgets.TableColumn
	gap    int
	cells  []string
	styles []vaxis.Style
}

func (w *rowWidget) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, w)
	col := 0
	for i, c := range w.layout(int(ctx.Max.Width)) {
		if col >= int(ctx.Max.Width) {
			break
		}
		text := ""
		if i < len(w.cells) {
			text = w.cells[i]
		}
		style := vaxis.Style{}
		if i < len(w.styles) {
			style = w.styles[i]
		}
		writeCell(&s, uint16(col), 0, c.Width, text, style, c.AlignRight)
		col += c.Width + w.gap
	}
	return s, nil
}

func (w *rowWidget) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	return nil, nil
}

// writeCell writes text into surf at (col, row) within maxWidth, right-aligning if requested.
func writeCell(surf *vxfw.Surface, col, row uint16, maxWidth int, s string, style vaxis.Style, alignRight bool) {
	chars := vaxis.Characters(s)
	displayWidth := 0
	for _, ch := range chars {
		displayWidth += ch.Width
	}
	offset := 0
	if alignRight && displayWidth < maxWidth {
		offset = maxWidth - displayWidth
	}
	pos := offset
	for _, ch := range chars {
		if pos+ch.Width > maxWidth {
			break
		}
		surf.WriteCell(col+uint16(pos), row, vaxis.Cell{
			Character: ch,
			Style:     style,
		})
		pos += ch.Width
	}
}

// priorityColor maps an alert priority to a terminal colour.
func priorityColor(p api.Priority) vaxis.Color {
	switch p {
	case api.PriorityCritical, api.PriorityHigh:
		return vaxis.IndexColor(1) // red
	case api.PriorityMedium:
		return vaxis.IndexColor(3) // yellow
	default:
		return vaxis.IndexColor(2) // green
	}
}

// FormatDue renders days remaining as "in 3d", "today" or "2d late".
func FormatDue(days int) string {
	switch {
	case days == 0:
		return "today"
	case days < 0:
		return fmt.Sprintf("%dd late", -days)
	default:
		return fmt.Sprintf("in %dd", days)
	}
}

func (dv *DashboardView) buildAlertItem(i uint, cursor uint) vxfw.Widget {
	dv.mu.Lock()
	defer dv.mu.Unlock()

	if int(i) >= len(dv.alerts) {
		return nil
	}
	a := dv.alerts[i]

	dueStyle := vaxis.Style{}
	if a.Overdue() {
		dueStyle = vaxis.Style{Foreground: vaxis.IndexColor(1), Attribute: vaxis.AttrBold}
	}

	return &rowWidget{
		layout: alertCols,
		gap:    alertColGap,
		cells: []string{
			" " + a.MachineModel + " " + string(a.MachineSerial),
			a.Client,
			a.MaintenanceType,
			FormatDue(a.DaysRemaining),
			string(a.Priority),
		},
		styles: []vaxis.Style{
			{},
			{},
			{Attribute: vaxis.AttrDim},
			dueStyle,
			{Foreground: priorityColor(a.Priority)},
		},
	}
}

func connStyle(st stream.ConnectionState) vaxis.Style {
	switch st {
	case stream.Connected:
		return vaxis.Style{Foreground: vaxis.IndexColor(2)}
	case stream.Connecting:
		return vaxis.Style{Foreground: vaxis.IndexColor(3)}
	default:
		return vaxis.Style{Foreground: vaxis.IndexColor(1)}
	}
}

func drawLine(s *vxfw.Surface, ctx vxfw.DrawContext, row uint16, w vxfw.Widget) error {
	surf, err := w.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
	if err != nil {
		return err
	}
	s.AddChild(0, int(row), surf)
	return nil
}

// Draw renders the dashboard.
func (dv *DashboardView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	dv.mu.Lock()
	snap := dv.snapshot
	st := dv.connState
	alertCount := len(dv.alerts)
	dv.mu.Unlock()

	if snap == nil {
		return drawLoadingState(ctx, dv, "dashboard")
	}

	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, dv)
	row := uint16(0)
	barWidth := 20
	stats := snap.Stats

	// === Header row ===
	header := richtext.New([]vaxis.Segment{
		{Text: " Maintenance  ", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: "● " + st.String() + "  ", Style: connStyle(st)},
		{Text: "updated " + humanize.RelTime(snap.LastUpdated, dv.now(), "ago", "from now"),
			Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	})
	if err := drawLine(&s, ctx, row, header); err != nil {
		return vxfw.Surface{}, err
	}
	row++

	// === Fleet gauge ===
	ops := &widgets.BarGauge{
		Label:      "OPS",
		Value:      widgets.Ratio(stats.ActiveMachines, stats.TotalMachines),
		Suffix:     fmt.Sprintf("%d/%d machines active", stats.ActiveMachines, stats.TotalMachines),
		BarWidth:   barWidth,
		HighIsGood: true,
	}
	if err := drawLine(&s, ctx, row, ops); err != nil {
		return vxfw.Surface{}, err
	}
	row++

	// === Completion gauge + pending trend ===
	done := &widgets.BarGauge{
		Label:      "DONE",
		Value:      widgets.Ratio(stats.CompletedMaintenances, stats.CompletedMaintenances+stats.PendingMaintenances),
		Suffix:     fmt.Sprintf("%d pending", stats.PendingMaintenances),
		BarWidth:   barWidth,
		HighIsGood: true,
	}
	if err := drawLine(&s, ctx, row, done); err != nil {
		return vxfw.Surface{}, err
	}
	gaugeWidth := 5 + 1 + barWidth + 1 + 7 + 2 + len(done.Suffix)
	if sparkWidth := int(ctx.Max.Width) - gaugeWidth - 2; sparkWidth > 0 {
		dv.mu.Lock()
		sparkSurf, err := dv.pendingSpark.Draw(ctx.WithMax(vxfw.Size{Width: uint16(sparkWidth), Height: 1}))
		dv.mu.Unlock()
		if err == nil {
			s.AddChild(gaugeWidth+2, int(row), sparkSurf)
		}
	}
	row++

	// === Counters ===
	overdue := dashboard.CountOverdue(snap.Alerts)
	alertStyle := vaxis.Style{}
	if overdue > 0 {
		alertStyle.Foreground = vaxis.IndexColor(1)
	}
	counters := richtext.New([]vaxis.Segment{
		{Text: " ALRT ", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: fmt.Sprintf("%d upcoming, %d overdue", stats.UpcomingAlerts, overdue), Style: alertStyle},
		{Text: "   HRS ", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: fmt.Sprintf("%s worked, %s avg usage",
			humanize.FormatFloat("#,###.#", stats.TotalWorkHours),
			humanize.FormatFloat("#,###.#", stats.AverageUsageHours))},
	})
	if err := drawLine(&s, ctx, row, counters); err != nil {
		return vxfw.Surface{}, err
	}
	row++

	// === Monthly trend ===
	dv.mu.Lock()
	hasMonthly := dv.monthlySpark.Count() > 0
	dv.mu.Unlock()
	if hasMonthly {
		label := richtext.New([]vaxis.Segment{
			{Text: " MNT/MO ", Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		})
		if err := drawLine(&s, ctx, row, label); err != nil {
			return vxfw.Surface{}, err
		}
		if ctx.Max.Width > 10 {
			dv.mu.Lock()
			sparkSurf, err := dv.monthlySpark.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width - 9, Height: 1}))
			dv.mu.Unlock()
			if err == nil {
				s.AddChild(9, int(row), sparkSurf)
			}
		}
		row++
	}

	// === Blank separator ===
	row++

	// === Recent machines ===
	recent := snap.RecentMachines
	if len(recent) > 0 && row < ctx.Max.Height {
		title := richtext.New([]vaxis.Segment{
			{Text: fmt.Sprintf(" RECENT MACHINES (%d)", len(recent)), Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		})
		if err := drawLine(&s, ctx, row, title); err != nil {
			return vxfw.Surface{}, err
		}
		row++

		tbl := &widgets.Table{
			Columns: []widgets.TableColumn{
				{Width: 24}, {Width: 16}, {Width: 12}, {Width: 12, AlignRight: true},
			},
			Gap: 2,
		}
		for i, m := range recent {
			if i == 5 {
				break
			}
			next := "-"
			if m.NextMaintenanceDate != nil {
				next = FormatDue(m.DaysUntilMaintenance)
			}
			tbl.Rows = append(tbl.Rows, []string{" " + m.Model + " " + string(m.SerialNumber), m.Client, m.Status, next})
			style := vaxis.Style{Foreground: statusColor(m.Status)}
			tbl.RowStyles = append(tbl.RowStyles, &style)
		}
		avail := ctx.Max.Height - row
		tblSurf, err := tbl.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: avail}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, int(row), tblSurf)
		row += tblSurf.Size.Height + 1
	}

	if row >= ctx.Max.Height {
		return s, nil
	}

	// === Alerts header ===
	cols := alertCols(int(ctx.Max.Width))
	headers := []string{fmt.Sprintf(" ALERTS (%d)", alertCount), "CLIENT", "TYPE", "DUE", "PRIORITY"}
	headerSurf := vxfw.NewSurface(ctx.Max.Width, 1, dv)
	colPos := 0
	for i, c := range cols {
		if colPos >= int(ctx.Max.Width) {
			break
		}
		style := vaxis.Style{Attribute: vaxis.AttrDim}
		if i == 0 {
			style = vaxis.Style{Attribute: vaxis.AttrBold}
		}
		writeCell(&headerSurf, uint16(colPos), 0, c.Width, headers[i], style, c.AlignRight)
		colPos += c.Width + alertColGap
	}
	s.AddChild(0, int(row), headerSurf)
	row++

	// === Alert list ===
	if remaining := ctx.Max.Height - min(row, ctx.Max.Height); remaining > 0 {
		listCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: remaining})
		listSurf, err := dv.alertList.Draw(listCtx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, int(row), listSurf)
	}

	return s, nil
}

// HandleEvent delegates navigation keys to the alert list.
func (dv *DashboardView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	return dv.alertList.HandleEvent(ev, phase)
}
