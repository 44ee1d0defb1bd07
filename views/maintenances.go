package views

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/list"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/widgets"
	"github.com/deevus/maintenance-tui/workflow"
)

var (
	// ErrNoUser is returned when a technician view loads without a
	// signed-in user to filter by.
	ErrNoUser = errors.New("no signed-in user")
	// ErrNoNextState is returned by Advance when the workflow offers no
	// further state to the caller.
	ErrNoNextState = errors.New("no further state available")
	// ErrAlreadyCompleted is returned by Complete for a closed maintenance.
	ErrAlreadyCompleted = errors.New("maintenance already completed")
)

// Viewer identifies who is looking at the console.
type Viewer interface {
	Role() api.Role
	User() (*api.User, bool)
}

// MaintenancesViewParams holds configuration for creating a MaintenancesView.
type MaintenancesViewParams struct {
	Service    api.MaintenanceServiceAPI
	TypeStates api.TypeMaintenanceStateServiceAPI
	Viewer     Viewer
	PostEvent  func(vaxis.Event)
	StaleTTL   time.Duration
}

// MaintenancesView lists maintenances and drives their workflow. Admins
// and coordinators see every maintenance; technicians see their own.
type MaintenancesView struct {
	service     api.MaintenanceServiceAPI
	typeStates  api.TypeMaintenanceStateServiceAPI
	viewer      Viewer
	postEvent   func(vaxis.Event)
	items       []api.Maintenance
	pendingOnly bool
	list        list.Dynamic
	loaded      bool
	loadedAt    time.Time
	staleTTL    time.Duration
	status      string
	statusErr   bool
}

// NewMaintenancesView creates a MaintenancesView backed by the given params.
func NewMaintenancesView(p MaintenancesViewParams) *MaintenancesView {
	mv := &MaintenancesView{
		service:    p.Service,
		typeStates: p.TypeStates,
		viewer:     p.Viewer,
		postEvent:  p.PostEvent,
		staleTTL:   p.StaleTTL,
	}
	mv.list.DrawCursor = true
	mv.list.Builder = mv.buildItem
	return mv
}

func (mv *MaintenancesView) role() api.Role {
	if mv.viewer == nil {
		return api.RoleTechnician
	}
	return mv.viewer.Role()
}

// Load fetches the maintenances visible to the viewer.
func (mv *MaintenancesView) Load(ctx context.Context) error {
	var (
		items []api.Maintenance
		err   error
	)
	if mv.role().SeesAllMaintenances() {
		if mv.pendingOnly {
			items, err = mv.service.ListPending(ctx)
		} else {
			items, err = mv.service.List(ctx)
		}
	} else {
		var u *api.User
		var ok bool
		if mv.viewer != nil {
			u, ok = mv.viewer.User()
		}
		if !ok || u.ID == "" {
			return ErrNoUser
		}
		if mv.pendingOnly {
			items, err = mv.service.ListPendingByTechnician(ctx, u.ID)
		} else {
			items, err = mv.service.ListByTechnician(ctx, u.ID)
		}
	}
	if err != nil {
		return err
	}

	slices.SortStableFunc(items, func(a, b api.Maintenance) int {
		return cmp.Compare(a.Date.Unix(), b.Date.Unix())
	})
	mv.items = items
	mv.loaded = true
	mv.loadedAt = time.Now()
	return nil
}

// Loaded reports whether data has been successfully fetched.
func (mv *MaintenancesView) Loaded() bool {
	return mv.loaded
}

// Stale reports whether the cached data is older than the configured TTL.
func (mv *MaintenancesView) Stale() bool {
	if !mv.loaded {
		return true
	}
	return time.Since(mv.loadedAt) > mv.staleTTL
}

// Maintenances returns the loaded maintenances in date order.
func (mv *MaintenancesView) Maintenances() []api.Maintenance {
	return mv.items
}

// ItemCount returns the number of loaded maintenances.
func (mv *MaintenancesView) ItemCount() int {
	return len(mv.items)
}

// PendingOnly reports whether completed maintenances are hidden.
func (mv *MaintenancesView) PendingOnly() bool {
	return mv.pendingOnly
}

// SetPendingOnly hides or shows completed maintenances on the next Load.
func (mv *MaintenancesView) SetPendingOnly(v bool) {
	mv.pendingOnly = v
}

// Selected returns the maintenance under the cursor, or nil if empty.
func (mv *MaintenancesView) Selected() *api.Maintenance {
	idx := int(mv.list.Cursor())
	if idx >= len(mv.items) {
		return nil
	}
	return &mv.items[idx]
}

// Status returns the last action outcome shown under the list.
func (mv *MaintenancesView) Status() (string, bool) {
	return mv.status, mv.statusErr
}

// SetStatus records an action outcome for display.
func (mv *MaintenancesView) SetStatus(msg string, err error) {
	mv.status = msg
	mv.statusErr = err != nil
	if err != nil {
		mv.status = fmt.Sprintf("%s: %v", msg, err)
	}
}

// loadWorkflow builds a guard for m alone. Actions run concurrently, so
// each one gets its own guard and discards it when done.
func (mv *MaintenancesView) loadWorkflow(ctx context.Context, m api.Maintenance) (*workflow.Guard, error) {
	g := workflow.NewGuard(mv.typeStates)
	if err := g.Load(ctx, m.Type.ID()); err != nil {
		return nil, err
	}
	g.SetCurrent(m.CurrentState.ID())
	return g, nil
}

// Workflow returns the states of m's workflow as offered to the viewer.
func (mv *MaintenancesView) Workflow(ctx context.Context, m api.Maintenance) ([]workflow.Option, error) {
	g, err := mv.loadWorkflow(ctx, m)
	if err != nil {
		return nil, err
	}
	return g.Options(mv.role()), nil
}

// Advance moves m to the next state the viewer may select.
func (mv *MaintenancesView) Advance(ctx context.Context, m api.Maintenance) (workflow.State, error) {
	g, err := mv.loadWorkflow(ctx, m)
	if err != nil {
		return workflow.State{}, err
	}
	next, ok := g.Next(mv.role())
	if !ok {
		return workflow.State{}, ErrNoNextState
	}
	if _, err := g.Apply(ctx, mv.service, m.ID, next.ID, "", mv.role()); err != nil {
		return workflow.State{}, err
	}
	return next, nil
}

// Complete closes m, keeping its recorded work hours and observations.
func (mv *MaintenancesView) Complete(ctx context.Context, m api.Maintenance) error {
	if m.IsCompleted {
		return ErrAlreadyCompleted
	}
	req := api.CompleteRequest{Observations: m.Observations}
	if m.WorkHours != nil {
		req.WorkHours = *m.WorkHours
	}
	return mv.service.Complete(ctx, m.ID, req)
}

// FormatWorkflow renders options as "Scheduled > [Running] > Done", with
// states the viewer may not select struck out.
func FormatWorkflow(opts []workflow.Option) string {
	if len(opts) == 0 {
		return "no workflow configured"
	}
	parts := make([]string, 0, len(opts))
	for _, o := range opts {
		name := o.Name
		switch {
		case o.Current:
			name = "[" + name + "]"
		case !o.Enabled:
			name = "~" + name + "~"
		}
		parts = append(parts, name)
	}
	return strings.Join(parts, " > ")
}

// run performs fn off the UI goroutine and posts its outcome. The app
// reloads the list after every successful action.
func (mv *MaintenancesView) run(fn func(ctx context.Context) (string, error)) {
	go func() {
		msg, err := fn(context.Background())
		if mv.postEvent != nil {
			mv.postEvent(ActionDone{Message: msg, Err: err})
		}
	}()
}

func stateLabel(m api.Maintenance) string {
	if label := m.StateLabel(); label != "" {
		return label
	}
	if m.CurrentState.IsZero() {
		return workflow.NoStateName
	}
	return workflow.UnknownStateName
}

func technicianLabel(m api.Maintenance) string {
	if u, ok := m.Technician.Value(); ok {
		return u.FullName()
	}
	if id := m.Technician.ID(); id != "" {
		return id
	}
	return "-"
}

func machineLabel(m api.Maintenance) string {
	if s, ok := m.Machine.Value(); ok {
		return s.Model + " " + string(s.SerialNumber)
	}
	return m.Machine.ID()
}

const (
	mntColDateWidth  = 10
	mntColTypeWidth  = 14
	mntColStateWidth = 14
	mntColTechWidth  = 18
	mntColDoneWidth  = 4
	mntColGap        = 1
	mntFixedWidth    = mntColDateWidth + mntColTypeWidth + mntColStateWidth + mntColTechWidth +
		mntColDoneWidth + 5*mntColGap
)

var maintenanceHeaders = []string{"DATE", "MACHINE", "TYPE", "STATE", "TECHNICIAN", "DONE"}

func maintenanceCols(totalWidth int) []widgets.TableColumn {
	return []widgets.TableColumn{
		{Width: mntColDateWidth},
		{Width: max(totalWidth-mntFixedWidth, 16)},
		{Width: mntColTypeWidth},
		{Width: mntColStateWidth},
		{Width: mntColTechWidth},
		{Width: mntColDoneWidth},
	}
}

func (mv *MaintenancesView) buildItem(i uint, cursor uint) vxfw.Widget {
	if int(i) >= len(mv.items) {
		return nil
	}
	m := mv.items[i]

	done, doneStyle := "no", vaxis.Style{Foreground: vaxis.IndexColor(3)}
	if m.IsCompleted {
		done, doneStyle = "yes", vaxis.Style{Foreground: vaxis.IndexColor(2)}
	}
	dateStyle := vaxis.Style{}
	if !m.IsCompleted && m.Date.Before(time.Now()) {
		dateStyle.Foreground = vaxis.IndexColor(1)
	}

	return &rowWidget{
		layout: maintenanceCols,
		gap:    mntColGap,
		cells: []string{
			m.Date.Format(time.DateOnly),
			machineLabel(m),
			m.TypeLabel(),
			stateLabel(m),
			technicianLabel(m),
			done,
		},
		styles: []vaxis.Style{dateStyle, {}, {Attribute: vaxis.AttrDim}, {}, {}, doneStyle},
	}
}

// Draw renders the maintenance list, or a loading state if data hasn't arrived.
func (mv *MaintenancesView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	if !mv.loaded {
		return drawLoadingState(ctx, mv, "maintenances")
	}

	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, mv)

	scope := "all"
	if !mv.role().SeesAllMaintenances() {
		scope = "assigned to me"
	}
	if mv.pendingOnly {
		scope += ", pending"
	}
	title := richtext.New([]vaxis.Segment{
		{Text: fmt.Sprintf("%d maintenances", len(mv.items)), Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: " (" + scope + ")  a:advance c:complete w:workflow p:pending", Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	})
	titleSurf, err := title.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, titleSurf)

	headerSurf := vxfw.NewSurface(ctx.Max.Width, 1, mv)
	col := 0
	for i, c := range maintenanceCols(int(ctx.Max.Width)) {
		if col >= int(ctx.Max.Width) {
			break
		}
		writeCell(&headerSurf, uint16(col), 0, c.Width, maintenanceHeaders[i], vaxis.Style{Attribute: vaxis.AttrBold}, c.AlignRight)
		col += c.Width + mntColGap
	}
	s.AddChild(0, 1, headerSurf)

	listHeight := int(ctx.Max.Height) - 2
	if mv.status != "" {
		listHeight--
		style := vaxis.Style{Foreground: vaxis.IndexColor(2)}
		if mv.statusErr {
			style.Foreground = vaxis.IndexColor(1)
		}
		line := richtext.New([]vaxis.Segment{{Text: mv.status, Style: style}})
		lineSurf, err := line.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, int(ctx.Max.Height)-1, lineSurf)
	}

	if listHeight > 0 {
		listCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: uint16(listHeight)})
		listSurf, err := mv.list.Draw(listCtx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, 2, listSurf)
	}

	return s, nil
}

// HandleEvent runs maintenance actions on the selected row and otherwise
// delegates to the list widget for navigation.
func (mv *MaintenancesView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return mv.list.HandleEvent(ev, phase)
	}

	switch {
	case key.Matches('p'):
		mv.pendingOnly = !mv.pendingOnly
		msg := "showing all maintenances"
		if mv.pendingOnly {
			msg = "showing pending maintenances"
		}
		mv.run(func(context.Context) (string, error) { return msg, nil })
		return vxfw.ConsumeAndRedraw(), nil
	}

	sel := mv.Selected()
	if sel == nil {
		return mv.list.HandleEvent(ev, phase)
	}
	m := *sel

	switch {
	case key.Matches('a'):
		mv.SetStatus("advancing "+machineLabel(m)+"...", nil)
		mv.run(func(ctx context.Context) (string, error) {
			next, err := mv.Advance(ctx, m)
			if err != nil {
				return "advance " + machineLabel(m), err
			}
			return fmt.Sprintf("%s moved to %s", machineLabel(m), next.Name), nil
		})
	case key.Matches('c'):
		mv.SetStatus("completing "+machineLabel(m)+"...", nil)
		mv.run(func(ctx context.Context) (string, error) {
			if err := mv.Complete(ctx, m); err != nil {
				return "complete " + machineLabel(m), err
			}
			return machineLabel(m) + " completed", nil
		})
	case key.Matches('w'):
		mv.run(func(ctx context.Context) (string, error) {
			opts, err := mv.Workflow(ctx, m)
			if err != nil {
				return "workflow for " + m.TypeLabel(), err
			}
			return m.TypeLabel() + ": " + FormatWorkflow(opts), nil
		})
	default:
		return mv.list.HandleEvent(ev, phase)
	}
	return vxfw.ConsumeAndRedraw(), nil
}
