package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/dashboard"
	"github.com/deevus/maintenance-tui/internal/log"
	"github.com/deevus/maintenance-tui/session"
	"github.com/deevus/maintenance-tui/stream"
	"github.com/deevus/maintenance-tui/views"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	green  = lipgloss.Color("76")
	red    = lipgloss.Color("204")
	yellow = lipgloss.Color("214")
	purple = lipgloss.Color("99")
	dim    = lipgloss.Color("243")

	successStyle = lipgloss.NewStyle().Foreground(green)
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
	accentStyle  = lipgloss.NewStyle().Foreground(purple)
	mutedStyle   = lipgloss.NewStyle().Foreground(dim)
	boldStyle    = lipgloss.NewStyle().Bold(true)
)

func SuccessMsg(format string, a ...any) string {
	return successStyle.Render("✓") + " " + fmt.Sprintf(format, a...)
}

func WarnMsg(format string, a ...any) string {
	return warnStyle.Render("!") + " " + fmt.Sprintf(format, a...)
}

func ErrorMsg(format string, a ...any) string {
	return errorStyle.Render("✗") + " " + fmt.Sprintf(format, a...)
}

func InfoMsg(format string, a ...any) string {
	return accentStyle.Render("●") + " " + fmt.Sprintf(format, a...)
}

func watchCmd(flags *rootFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print push events and connection changes as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, *flags, all, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "include heartbeats and events outside the dashboard")
	return cmd
}

func runWatch(ctx context.Context, flags rootFlags, all bool, out io.Writer) error {
	p, err := openProfile(flags, log.Stderr)
	if err != nil {
		return err
	}
	if err := p.authenticate(ctx); err != nil {
		return err
	}

	if data, err := p.services.Dashboard.Data(ctx, api.DashboardFilters{}); err != nil {
		fmt.Fprintln(out, WarnMsg("initial dashboard load failed: %v", err))
	} else {
		fmt.Fprint(out, renderStatus(data, time.Now()))
	}

	sc, err := p.newStream()
	if err != nil {
		return err
	}
	defer sc.Close()

	states := sc.States()
	defer states.Close()
	events := sc.Subscribe()
	defer events.Close()

	if err := sc.Connect(ctx); err != nil {
		fmt.Fprintln(out, WarnMsg("%v", err))
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-states.C:
			if !ok {
				return nil
			}
			fmt.Fprintln(out, describeState(st))
		case ev, ok := <-events.C:
			if !ok {
				return nil
			}
			if !all && !ev.IsDashboard() && ev.Type != stream.EventUpcomingAlerts && ev.Type != stream.EventMaintenanceAlert {
				continue
			}
			fmt.Fprintln(out, describeEvent(ev))
		}
	}
}

func statusCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a one-shot dashboard summary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := openProfile(*flags, log.Stderr)
			if err != nil {
				return err
			}
			if err := p.authenticate(ctx); err != nil {
				return err
			}

			r := dashboard.NewRefresher(dashboard.RefresherParams{
				Service: p.services.Dashboard,
				Cache:   dashboard.NewCache(nil),
			})
			if err := r.Reload(ctx); err != nil {
				return err
			}
			snap := r.Cache().Get()
			data := &api.DashboardData{
				Stats:          snap.Stats,
				Charts:         snap.Charts,
				Alerts:         snap.Alerts,
				RecentMachines: snap.RecentMachines,
			}
			fmt.Fprint(cmd.OutOrStdout(), renderStatus(data, snap.LastUpdated))
			return nil
		},
	}
}

func logoutCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Invalidate and forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := openProfile(*flags, log.Stderr)
			if err != nil {
				return err
			}
			if p.session.Authenticated() {
				p.session.Logout(cmd.Context(), p.services.Auth)
			}
			if err := session.Remove(p.sessionPath); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessMsg("logged out of %s", p.name))
			return nil
		},
	}
}

func describeState(st stream.ConnectionState) string {
	switch st {
	case stream.Connected:
		return SuccessMsg("stream %s", st)
	case stream.Errored:
		return ErrorMsg("stream %s", st)
	case stream.Connecting:
		return InfoMsg("stream %s", st)
	default:
		return WarnMsg("stream %s", st)
	}
}

// describeEvent renders one push event as a single line.
func describeEvent(ev stream.Event) string {
	ts := time.Now()
	if ev.Timestamp != nil {
		ts = *ev.Timestamp
	}
	prefix := mutedStyle.Render(ts.Format("15:04:05")) + " " + boldStyle.Render(string(ev.Type))

	if alerts, ok, err := stream.DecodeAlerts(ev); ok {
		if err != nil {
			return prefix + " " + errorStyle.Render(err.Error())
		}
		overdue := dashboard.CountOverdue(alerts)
		msg := fmt.Sprintf("%d upcoming", len(alerts))
		if overdue > 0 {
			msg += ", " + errorStyle.Render(fmt.Sprintf("%d overdue", overdue))
		}
		return prefix + " " + msg
	}

	de, ok, err := stream.DecodeDashboardEvent(ev)
	if !ok {
		if len(ev.Data) > 0 {
			return prefix + " " + mutedStyle.Render(string(ev.Data))
		}
		return prefix
	}
	if err != nil {
		return prefix + " " + errorStyle.Render(err.Error())
	}

	switch {
	case de.MachineStatus != nil:
		m := de.MachineStatus
		return fmt.Sprintf("%s machine %s %s → %s", prefix, m.MachineID,
			api.MachineStatusLabel(m.OldStatus), api.MachineStatusLabel(m.NewStatus))
	case de.Maintenance != nil:
		m := de.Maintenance
		return fmt.Sprintf("%s maintenance %s %s on machine %s", prefix, m.MaintenanceID, m.Action, m.MachineID)
	case de.Patch != nil:
		var parts []string
		if de.Patch.Stats != nil {
			parts = append(parts, "stats")
		}
		if de.Patch.Charts != nil {
			parts = append(parts, "charts")
		}
		if de.Patch.Alerts != nil {
			parts = append(parts, "alerts")
		}
		if de.Patch.RecentMachines != nil {
			parts = append(parts, "machines")
		}
		if len(parts) == 0 {
			return prefix + " (empty)"
		}
		return prefix + " " + strings.Join(parts, ", ")
	}
	return prefix
}

// renderStatus formats a dashboard summary followed by the alert table.
func renderStatus(data *api.DashboardData, updated time.Time) string {
	var b strings.Builder
	s := data.Stats

	fmt.Fprintf(&b, "%s %s\n", boldStyle.Render("Machines"),
		fmt.Sprintf("%d total, %s, %d inactive", s.TotalMachines,
			successStyle.Render(strconv.Itoa(s.ActiveMachines)+" active"), s.InactiveMachines))
	fmt.Fprintf(&b, "%s %d pending, %d completed, %s work hours\n", boldStyle.Render("Maintenances"),
		s.PendingMaintenances, s.CompletedMaintenances, humanize.FormatFloat("#,###.#", s.TotalWorkHours))
	if !updated.IsZero() {
		fmt.Fprintln(&b, mutedStyle.Render("updated "+humanize.Time(updated)))
	}

	alerts := dashboard.SortAlerts(data.Alerts)
	if len(alerts) == 0 {
		fmt.Fprintln(&b, SuccessMsg("no upcoming maintenance"))
		return b.String()
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(mutedStyle).
		Headers("MACHINE", "TYPE", "DUE", "PRIORITY").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return boldStyle.Padding(0, 1)
			}
			style := lipgloss.NewStyle().Padding(0, 1)
			if row >= 0 && row < len(alerts) && alerts[row].Overdue() {
				style = style.Foreground(red)
			}
			return style
		})
	for _, a := range alerts {
		t.Row(
			strings.TrimSpace(a.MachineModel+" "+string(a.MachineSerial)),
			a.MaintenanceType,
			views.FormatDue(a.DaysRemaining),
			string(a.Priority),
		)
	}
	fmt.Fprintln(&b, t.Render())
	return b.String()
}
