package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"
)

// DashboardStats are the headline counters of the dashboard.
type DashboardStats struct {
	TotalMachines         int     `json:"totalMachines"`
	ActiveMachines        int     `json:"activeMachines"`
	InactiveMachines      int     `json:"inactiveMachines"`
	PendingMaintenances   int     `json:"pendingMaintenances"`
	CompletedMaintenances int     `json:"completedMaintenances"`
	UpcomingAlerts        int     `json:"upcomingAlerts"`
	TotalWorkHours        float64 `json:"totalWorkHours"`
	AverageUsageHours     float64 `json:"averageUsageHours"`
}

// MonthlyMaintenances counts maintenances performed in one month.
type MonthlyMaintenances struct {
	Month      string `json:"month"`
	Preventive int    `json:"preventive"`
	Corrective int    `json:"corrective"`
	Total      int    `json:"total"`
}

// MachineStatusCounts breaks the fleet down by status.
type MachineStatusCounts struct {
	Operational int `json:"operational"`
	Maintenance int `json:"maintenance"`
	Offline     int `json:"offline"`
}

// SparePartsUsage is one month of consumables.
type SparePartsUsage struct {
	Month         string  `json:"month"`
	FiltersUsed   float64 `json:"filtersUsed"`
	OilUsed       float64 `json:"oilUsed"`
	PartsReplaced float64 `json:"partsReplaced"`
}

// DashboardCharts holds the series behind the dashboard charts.
type DashboardCharts struct {
	MaintenancesByMonth   []MonthlyMaintenances `json:"maintenancesByMonth"`
	MachineStatus         MachineStatusCounts   `json:"machineStatus"`
	SparePartsConsumption []SparePartsUsage     `json:"sparePartsConsumption"`
}

// Priority is the urgency of a maintenance alert.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities from most (0) to least urgent. Unknown priorities
// sort last.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// MaintenanceAlert flags a maintenance that is due soon or overdue.
type MaintenanceAlert struct {
	ID              string    `json:"id"`
	MaintenanceID   string    `json:"maintenanceId"`
	MachineID       string    `json:"machineId"`
	MachineModel    string    `json:"machineModel"`
	MachineSerial   Text      `json:"machineSerial"`
	Client          string    `json:"client"`
	DueDate         time.Time `json:"dueDate"`
	DaysRemaining   int       `json:"daysRemaining"`
	MaintenanceType string    `json:"maintenanceType"`
	Priority        Priority  `json:"priority"`
	Location        string    `json:"location"`
	TechnicianID    string    `json:"technicianId"`
	SpareParts      []string  `json:"spareParts"`
	Observations    string    `json:"observations,omitempty"`
}

// Overdue reports whether the due date has passed.
func (a MaintenanceAlert) Overdue() bool {
	return a.DaysRemaining < 0
}

// RecentMachine is a machine with its next scheduled maintenance.
type RecentMachine struct {
	ID                   string     `json:"id"`
	Model                string     `json:"model"`
	SerialNumber         Text       `json:"serialNumber"`
	Client               string     `json:"client"`
	NextMaintenanceDate  *time.Time `json:"nextMaintenanceDate,omitempty"`
	DaysUntilMaintenance int        `json:"daysUntilMaintenance"`
	Status               string     `json:"status"`
	Location             string     `json:"location"`
}

// DashboardData is a full dashboard load.
type DashboardData struct {
	Stats          DashboardStats     `json:"stats"`
	Charts         DashboardCharts    `json:"charts"`
	Alerts         []MaintenanceAlert `json:"alerts"`
	RecentMachines []RecentMachine    `json:"recentMachines"`
	LastUpdated    *time.Time         `json:"lastUpdated,omitempty"`
}

// DashboardPatch is a partial dashboard update. Nil fields were not sent.
type DashboardPatch struct {
	Stats          *DashboardStats     `json:"stats,omitempty"`
	Charts         *DashboardCharts    `json:"charts,omitempty"`
	Alerts         *[]MaintenanceAlert `json:"alerts,omitempty"`
	RecentMachines *[]RecentMachine    `json:"recentMachines,omitempty"`
}

// Empty reports whether the patch carries no fields.
func (p DashboardPatch) Empty() bool {
	return p.Stats == nil && p.Charts == nil && p.Alerts == nil && p.RecentMachines == nil
}

// DashboardFilters narrows the dashboard queries.
type DashboardFilters struct {
	Start       time.Time
	End         time.Time
	Client      string
	MachineType string
	Location    string
	Status      []string
}

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// Query encodes the filters as query parameters. The date range is only
// sent when both ends are set.
func (f DashboardFilters) Query() url.Values {
	q := url.Values{}
	if !f.Start.IsZero() && !f.End.IsZero() {
		q.Set("startDate", f.Start.UTC().Format(isoMillis))
		q.Set("endDate", f.End.UTC().Format(isoMillis))
	}
	if f.Client != "" {
		q.Set("client", f.Client)
	}
	if f.MachineType != "" {
		q.Set("machineType", f.MachineType)
	}
	if f.Location != "" {
		q.Set("location", f.Location)
	}
	if len(f.Status) > 0 {
		q.Set("status", strings.Join(f.Status, ","))
	}
	return q
}

// nested unwraps payloads that the dashboard endpoints wrap in a second
// envelope.
type nested[T any] struct {
	v T
}

func (n *nested[T]) UnmarshalJSON(b []byte) error {
	var inner struct {
		Success *bool           `json:"success"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(b, &inner); err == nil && inner.Success != nil && len(inner.Payload) > 0 {
		b = inner.Payload
	}
	return json.Unmarshal(b, &n.v)
}

// DashboardServiceAPI reads dashboard aggregates.
type DashboardServiceAPI interface {
	Data(ctx context.Context, f DashboardFilters) (*DashboardData, error)
	Stats(ctx context.Context, f DashboardFilters) (*DashboardStats, error)
	Charts(ctx context.Context, f DashboardFilters) (*DashboardCharts, error)
	Alerts(ctx context.Context, f DashboardFilters) ([]MaintenanceAlert, error)
	RecentMachines(ctx context.Context, f DashboardFilters) ([]RecentMachine, error)
	Broadcast(ctx context.Context) error
}

// DashboardService implements DashboardServiceAPI over HTTP.
type DashboardService struct {
	client *Client
}

// NewDashboardService creates a DashboardService.
func NewDashboardService(c *Client) *DashboardService {
	return &DashboardService{client: c}
}

func dashboardGet[T any](ctx context.Context, c *Client, path string, f DashboardFilters) (T, error) {
	var out nested[T]
	err := c.get(ctx, path, f.Query(), &out)
	return out.v, err
}

func (s *DashboardService) Data(ctx context.Context, f DashboardFilters) (*DashboardData, error) {
	data, err := dashboardGet[DashboardData](ctx, s.client, "dashboard/data", f)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

func (s *DashboardService) Stats(ctx context.Context, f DashboardFilters) (*DashboardStats, error) {
	stats, err := dashboardGet[DashboardStats](ctx, s.client, "dashboard/stats", f)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *DashboardService) Charts(ctx context.Context, f DashboardFilters) (*DashboardCharts, error) {
	charts, err := dashboardGet[DashboardCharts](ctx, s.client, "dashboard/charts", f)
	if err != nil {
		return nil, err
	}
	return &charts, nil
}

func (s *DashboardService) Alerts(ctx context.Context, f DashboardFilters) ([]MaintenanceAlert, error) {
	alerts, err := dashboardGet[[]MaintenanceAlert](ctx, s.client, "dashboard/alerts", f)
	if err != nil {
		return nil, err
	}
	if alerts == nil {
		alerts = []MaintenanceAlert{}
	}
	return alerts, nil
}

func (s *DashboardService) RecentMachines(ctx context.Context, f DashboardFilters) ([]RecentMachine, error) {
	machines, err := dashboardGet[[]RecentMachine](ctx, s.client, "dashboard/machines/recent", f)
	if err != nil {
		return nil, err
	}
	if machines == nil {
		machines = []RecentMachine{}
	}
	return machines, nil
}

// Broadcast asks the backend to push a dashboard_update to every connected
// console.
func (s *DashboardService) Broadcast(ctx context.Context) error {
	return s.client.post(ctx, "dashboard/broadcast", struct{}{}, nil)
}
