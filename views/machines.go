package views

import (
	"context"
	"fmt"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/list"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/widgets"
	"github.com/dustin/go-humanize"
)

// MachinesViewParams holds configuration for creating a MachinesView.
type MachinesViewParams struct {
	Service  api.MachineServiceAPI
	StaleTTL time.Duration
}

// machineFilters is the cycle of status filters, "" meaning all.
var machineFilters = []string{"", api.MachineOperational, api.MachineMaintenance, api.MachineOutOfService}

// MachinesView displays the machine fleet.
type MachinesView struct {
	service  api.MachineServiceAPI
	machines []api.Machine
	visible  []api.Machine
	filter   int
	list     list.Dynamic
	loaded   bool
	loadedAt time.Time
	staleTTL time.Duration
}

// NewMachinesView creates a MachinesView backed by the given params.
func NewMachinesView(p MachinesViewParams) *MachinesView {
	mv := &MachinesView{
		service:  p.Service,
		staleTTL: p.StaleTTL,
	}
	mv.list.DrawCursor = true
	mv.list.Builder = mv.buildItem
	return mv
}

// Load fetches machines from the service.
func (mv *MachinesView) Load(ctx context.Context) error {
	machines, err := mv.service.List(ctx)
	if err != nil {
		return err
	}
	mv.machines = machines
	mv.applyFilter()
	mv.loaded = true
	mv.loadedAt = time.Now()
	return nil
}

// Loaded reports whether data has been successfully fetched.
func (mv *MachinesView) Loaded() bool {
	return mv.loaded
}

// Stale reports whether the cached data is older than the configured TTL.
func (mv *MachinesView) Stale() bool {
	if !mv.loaded {
		return true
	}
	return time.Since(mv.loadedAt) > mv.staleTTL
}

// Machines returns the machines that pass the current filter.
func (mv *MachinesView) Machines() []api.Machine {
	return mv.visible
}

// ItemCount returns the number of visible machines.
func (mv *MachinesView) ItemCount() int {
	return len(mv.visible)
}

// Filter returns the status filter in effect, "" for all.
func (mv *MachinesView) Filter() string {
	return machineFilters[mv.filter]
}

// CycleFilter advances to the next status filter.
func (mv *MachinesView) CycleFilter() {
	mv.filter = (mv.filter + 1) % len(machineFilters)
	mv.applyFilter()
}

func (mv *MachinesView) applyFilter() {
	want := mv.Filter()
	if want == "" {
		mv.visible = mv.machines
		return
	}
	mv.visible = make([]api.Machine, 0, len(mv.machines))
	for _, m := range mv.machines {
		if m.Status == want {
			mv.visible = append(mv.visible, m)
		}
	}
}

// SelectedMachine returns the machine under the cursor, or nil if empty.
func (mv *MachinesView) SelectedMachine() *api.Machine {
	idx := int(mv.list.Cursor())
	if idx >= len(mv.visible) {
		return nil
	}
	return &mv.visible[idx]
}

// statusColor maps a machine status to a terminal colour.
func statusColor(status string) vaxis.Color {
	switch status {
	case api.MachineOperational:
		return vaxis.IndexColor(2) // green
	case api.MachineMaintenance:
		return vaxis.IndexColor(3) // yellow
	default:
		return vaxis.IndexColor(1) // red
	}
}

const (
	machineColSerialWidth   = 14
	machineColClientWidth   = 18
	machineColLocationWidth = 16
	machineColStatusWidth   = 15
	machineColHoursWidth    = 9
	machineColGap           = 1
	machineFixedWidth       = machineColSerialWidth + machineColClientWidth + machineColLocationWidth +
		machineColStatusWidth + machineColHoursWidth + 5*machineColGap
)

var machineHeaders = []string{"MODEL", "SERIAL", "CLIENT", "LOCATION", "STATUS", "HOURS"}

func machineCols(totalWidth int) []widgets.TableColumn {
	return []widgets.TableColumn{
		{Width: max(totalWidth-machineFixedWidth, 14)},
		{Width: machineColSerialWidth},
		{Width: machineColClientWidth},
		{Width: machineColLocationWidth},
		{Width: machineColStatusWidth},
		{Width: machineColHoursWidth, AlignRight: true},
	}
}

func (mv *MachinesView) buildItem(i uint, cursor uint) vxfw.Widget {
	if int(i) >= len(mv.visible) {
		return nil
	}
	m := mv.visible[i]

	return &rowWidget{
		layout: machineCols,
		gap:    machineColGap,
		cells: []string{
			m.Model,
			string(m.SerialNumber),
			m.Client,
			m.Location,
			api.MachineStatusLabel(m.Status),
			humanize.FormatFloat("#,###.", m.UsageHours) + "h",
		},
		styles: []vaxis.Style{
			{Attribute: vaxis.AttrBold},
			{Attribute: vaxis.AttrDim},
			{},
			{},
			{Foreground: statusColor(m.Status)},
			{},
		},
	}
}

// Draw renders the machines list, or a loading state if data hasn't arrived.
func (mv *MachinesView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	if !mv.loaded {
		return drawLoadingState(ctx, mv, "machines")
	}

	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, mv)

	filter := "all"
	if f := mv.Filter(); f != "" {
		filter = api.MachineStatusLabel(f)
	}
	title := richtext.New([]vaxis.Segment{
		{Text: fmt.Sprintf("%d machines", len(mv.visible)), Style: vaxis.Style{Attribute: vaxis.AttrBold}},
		{Text: "  filter: " + filter + "  (f to change)", Style: vaxis.Style{Attribute: vaxis.AttrDim}},
	})
	titleSurf, err := title.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, titleSurf)

	// Header row
	headerSurf := vxfw.NewSurface(ctx.Max.Width, 1, mv)
	col := 0
	for i, c := range machineCols(int(ctx.Max.Width)) {
		if col >= int(ctx.Max.Width) {
			break
		}
		writeCell(&headerSurf, uint16(col), 0, c.Width, machineHeaders[i], vaxis.Style{Attribute: vaxis.AttrBold}, c.AlignRight)
		col += c.Width + machineColGap
	}
	s.AddChild(0, 1, headerSurf)

	// List
	if ctx.Max.Height > 2 {
		listCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: ctx.Max.Height - 2})
		listSurf, err := mv.list.Draw(listCtx)
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, 2, listSurf)
	}

	return s, nil
}

// HandleEvent cycles the status filter on 'f' and otherwise delegates to
// the list widget for navigation.
func (mv *MachinesView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	if key, ok := ev.(vaxis.Key); ok && key.Matches('f') {
		mv.CycleFilter()
		return vxfw.ConsumeAndRedraw(), nil
	}
	return mv.list.HandleEvent(ev, phase)
}
