package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/maintenance-tui/dashboard"
	"github.com/deevus/maintenance-tui/internal"
	"github.com/deevus/maintenance-tui/internal/broadcast"
	"github.com/deevus/maintenance-tui/stream"
	"github.com/deevus/maintenance-tui/views"
	"github.com/deevus/maintenance-tui/widgets"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Tab indices.
const (
	TabDashboard = iota
	TabMachines
	TabMaintenances
	tabCount
)

// DefaultReloadEvery is the minimum spacing between manual reloads.
const DefaultReloadEvery = time.Second

// Connected is posted when the Connect callback succeeds.
type Connected struct {
	Services *internal.Services
}

// ConnectFailed is posted when the Connect callback returns an error.
type ConnectFailed struct {
	Err error
}

// Params configures the root App widget.
type Params struct {
	// Services is used directly when set. Otherwise Connect runs on Init.
	Services *internal.Services
	Connect  func(ctx context.Context) (*internal.Services, error)

	// Viewer decides which maintenances are listed.
	Viewer views.Viewer
	// Cache is shared with whatever feeds it from push events. Nil creates
	// a private cache.
	Cache *dashboard.Cache
	// States streams the push connection state for the status header.
	States func() *broadcast.Subscription[stream.ConnectionState]

	ServerName  string
	StaleTTL    time.Duration
	ReloadEvery time.Duration
}

// App is the root vxfw widget for the maintenance console.
type App struct {
	services   *internal.Services
	connect    func(ctx context.Context) (*internal.Services, error)
	connectErr error

	viewer     views.Viewer
	cache      *dashboard.Cache
	states     func() *broadcast.Subscription[stream.ConnectionState]
	serverName string
	staleTTL   time.Duration

	tabBar       *widgets.TabBar
	refresher    *dashboard.Refresher
	dashboard    *views.DashboardView
	machines     *views.MachinesView
	maintenances *views.MaintenancesView

	limiter   *rate.Limiter
	postEvent func(vaxis.Event)
	log       *zap.SugaredLogger
}

// New creates the root App widget. When p.Services is nil the app shows a
// connecting screen until Connect reports back.
func New(p Params) *App {
	cache := p.Cache
	if cache == nil {
		cache = dashboard.NewCache(nil)
	}
	every := p.ReloadEvery
	if every <= 0 {
		every = DefaultReloadEvery
	}
	a := &App{
		connect:    p.Connect,
		viewer:     p.Viewer,
		cache:      cache,
		states:     p.States,
		serverName: p.ServerName,
		staleTTL:   p.StaleTTL,
		tabBar:     widgets.NewTabBar([]string{"Dashboard", "Machines", "Maintenances"}),
		limiter:    rate.NewLimiter(rate.Every(every), 1),
		log:        zap.S().Named("app"),
	}
	if p.Services != nil {
		a.setServices(p.Services)
	}
	return a
}

func (a *App) setServices(svc *internal.Services) {
	a.services = svc
	a.connectErr = nil
	a.refresher = dashboard.NewRefresher(dashboard.RefresherParams{
		Service: svc.Dashboard,
		Cache:   a.cache,
	})
	a.dashboard = views.NewDashboardView(views.DashboardViewParams{
		Cache:     a.cache,
		Reload:    a.refresher.Reload,
		States:    a.states,
		PostEvent: a.post,
		StaleTTL:  a.staleTTL,
	})
	a.machines = views.NewMachinesView(views.MachinesViewParams{
		Service:  svc.Machines,
		StaleTTL: a.staleTTL,
	})
	a.maintenances = views.NewMaintenancesView(views.MaintenancesViewParams{
		Service:    svc.Maintenances,
		TypeStates: svc.TypeStates,
		Viewer:     a.viewer,
		PostEvent:  a.post,
		StaleTTL:   a.staleTTL,
	})
}

// IsConnected reports whether services are available.
func (a *App) IsConnected() bool {
	return a.services != nil
}

// SetPostEvent sets the function used to post events to the vaxis event loop.
// Must be called before LoadAll.
func (a *App) SetPostEvent(fn func(vaxis.Event)) {
	a.postEvent = fn
}

func (a *App) post(ev vaxis.Event) {
	if a.postEvent != nil {
		a.postEvent(ev)
	}
}

// ActiveTab returns the current tab index.
func (a *App) ActiveTab() int {
	return a.tabBar.Active()
}

// SetTab switches to the given tab index.
func (a *App) SetTab(i int) {
	a.tabBar.SetActive(i)
}

// ServerName returns the connected server profile name.
func (a *App) ServerName() string {
	return a.serverName
}

// Badge returns the text shown next to a tab label.
func (a *App) Badge(tab int) string {
	return a.tabBar.Badge(tab)
}

// LoadAll loads data for all views in parallel using goroutines.
// Each view posts a ViewLoaded event when done.
func (a *App) LoadAll(ctx context.Context) {
	if !a.IsConnected() {
		return
	}
	for tab := range tabCount {
		go func(t int) {
			a.post(views.ViewLoaded{Tab: t, Err: a.load(ctx, t)})
		}(tab)
	}
}

// LoadActiveView fetches data for the currently active view.
func (a *App) LoadActiveView(ctx context.Context) error {
	if !a.IsConnected() {
		return nil
	}
	return a.load(ctx, a.tabBar.Active())
}

func (a *App) load(ctx context.Context, tab int) error {
	switch tab {
	case TabDashboard:
		return a.dashboard.Load(ctx)
	case TabMachines:
		return a.machines.Load(ctx)
	case TabMaintenances:
		return a.maintenances.Load(ctx)
	}
	return nil
}

func (a *App) stale(tab int) bool {
	switch tab {
	case TabDashboard:
		return a.dashboard.Stale()
	case TabMachines:
		return a.machines.Stale()
	case TabMaintenances:
		return a.maintenances.Stale()
	}
	return false
}

// reloadAsync refetches one tab off the UI goroutine.
func (a *App) reloadAsync(tab int) {
	go func() {
		a.post(views.ViewLoaded{Tab: tab, Err: a.load(context.Background(), tab)})
	}()
}

func (a *App) activeView() vxfw.Widget {
	switch a.tabBar.Active() {
	case TabMachines:
		return a.machines
	case TabMaintenances:
		return a.maintenances
	default:
		return a.dashboard
	}
}

// Draw renders the tab bar and active view, or the connection status while
// no services are available.
func (a *App) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, a)

	if !a.IsConnected() {
		msg := fmt.Sprintf("Connecting to %s...", a.serverName)
		style := vaxis.Style{Attribute: vaxis.AttrDim}
		if a.connectErr != nil {
			msg = fmt.Sprintf("Failed to connect to %s: %v (q to quit)", a.serverName, a.connectErr)
			style = vaxis.Style{Foreground: vaxis.IndexColor(1)}
		}
		row := ctx.Max.Height / 2
		col := 0
		for _, ch := range ctx.Characters(msg) {
			if col >= int(ctx.Max.Width) {
				break
			}
			s.WriteCell(uint16(col), row, vaxis.Cell{Character: ch, Style: style})
			col += ch.Width
		}
		return s, nil
	}

	tabCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1})
	tabSurf, err := a.tabBar.Draw(tabCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, tabSurf)

	if ctx.Max.Height < 2 {
		return s, nil
	}
	viewCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: ctx.Max.Height - 1})
	viewSurf, err := a.activeView().Draw(viewCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 1, viewSurf)

	return s, nil
}

// CaptureEvent handles global keybindings before views process them.
func (a *App) CaptureEvent(ev vaxis.Event) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return nil, nil
	}
	if key.Matches('q') {
		return vxfw.QuitCmd{}, nil
	}
	if !a.IsConnected() {
		return nil, nil
	}

	prev := a.tabBar.Active()
	switch {
	case key.Matches('r'):
		if !a.limiter.Allow() {
			a.log.Debugw("reload throttled", "tab", prev)
			return vxfw.ConsumeAndRedraw(), nil
		}
		a.reloadAsync(prev)
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches('1'):
		a.tabBar.SetActive(TabDashboard)
	case key.Matches('2'):
		a.tabBar.SetActive(TabMachines)
	case key.Matches('3'):
		a.tabBar.SetActive(TabMaintenances)
	case key.Matches(vaxis.KeyTab):
		a.tabBar.Next()
	case key.Matches(vaxis.KeyTab, vaxis.ModShift):
		a.tabBar.Prev()
	default:
		return nil, nil
	}
	if cur := a.tabBar.Active(); cur != prev && a.stale(cur) {
		a.reloadAsync(cur)
	}
	return vxfw.ConsumeAndRedraw(), nil
}

func (a *App) startConnect() {
	go func() {
		svc, err := a.connect(context.Background())
		if err != nil {
			a.post(ConnectFailed{Err: err})
			return
		}
		a.post(Connected{Services: svc})
	}()
}

func (a *App) updateBadge() {
	n := dashboard.CountOverdue(a.dashboard.Alerts())
	if n == 0 {
		a.tabBar.SetBadge(TabMaintenances, "")
		return
	}
	a.tabBar.SetBadge(TabMaintenances, strconv.Itoa(n))
}

// HandleEvent delegates to the active view, and handles custom events.
func (a *App) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	switch ev := ev.(type) {
	case vxfw.Init:
		if a.IsConnected() {
			a.dashboard.StartSubscriptions(context.Background())
			return nil, nil
		}
		if a.connect != nil {
			a.startConnect()
		}
		return nil, nil
	case Connected:
		a.setServices(ev.Services)
		a.log.Infow("connected", "server", a.serverName)
		a.dashboard.StartSubscriptions(context.Background())
		a.LoadAll(context.Background())
		return vxfw.RedrawCmd{}, nil
	case ConnectFailed:
		a.connectErr = ev.Err
		a.log.Errorw("connect failed", "server", a.serverName, "error", ev.Err)
		return vxfw.RedrawCmd{}, nil
	case views.ViewLoaded:
		if ev.Err != nil {
			a.log.Warnw("loading tab failed", "tab", ev.Tab, "error", ev.Err)
		}
		if ev.Tab == TabDashboard && a.IsConnected() {
			a.updateBadge()
		}
		return vxfw.RedrawCmd{}, nil
	case views.DashboardUpdated:
		if a.IsConnected() {
			a.updateBadge()
		}
		return vxfw.RedrawCmd{}, nil
	case views.ActionDone:
		if !a.IsConnected() {
			return nil, nil
		}
		a.maintenances.SetStatus(ev.Message, ev.Err)
		if ev.Err != nil {
			a.log.Warnw("maintenance action failed", "error", ev.Err)
		} else if ev.Message != "" {
			a.reloadAsync(TabMaintenances)
		}
		return vxfw.RedrawCmd{}, nil
	default:
		if !a.IsConnected() {
			return nil, nil
		}
		type handler interface {
			HandleEvent(vaxis.Event, vxfw.EventPhase) (vxfw.Command, error)
		}
		if h, ok := a.activeView().(handler); ok {
			return h.HandleEvent(ev, phase)
		}
	}
	return nil, nil
}

// Close stops background subscriptions.
func (a *App) Close() {
	if a.dashboard != nil {
		a.dashboard.StopSubscriptions()
	}
}
