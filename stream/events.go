package stream

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/deevus/maintenance-tui/api"
)

// EventType tags a push event.
type EventType string

const (
	EventConnectionEstablished EventType = "connection_established"
	EventPing                  EventType = "ping"
	EventPong                  EventType = "pong"
	EventError                 EventType = "error"
	EventDashboardUpdate       EventType = "dashboard_update"
	EventMachineStatusUpdate   EventType = "machine_status_update"
	EventMaintenanceUpdate     EventType = "maintenance_update"
	EventMaintenanceAlert      EventType = "maintenance_alert"
	EventUpcomingAlerts        EventType = "upcoming_maintenance_alerts"
)

// Event is one decoded text frame.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp *time.Time      `json:"timestamp,omitempty"`
}

// UnmarshalJSON decodes a frame. A timestamp that cannot be read leaves
// Timestamp nil instead of rejecting the frame.
func (e *Event) UnmarshalJSON(b []byte) error {
	var raw struct {
		Type      EventType       `json:"type"`
		Data      json.RawMessage `json:"data,omitempty"`
		Timestamp json.RawMessage `json:"timestamp,omitempty"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.Type, e.Data, e.Timestamp = raw.Type, raw.Data, nil
	if ts, ok := parseTime(raw.Timestamp); ok {
		e.Timestamp = &ts
	}
	return nil
}

// Time is a payload timestamp decoded leniently. Unreadable values decode
// to the zero time.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(b []byte) error {
	t.Time, _ = parseTime(b)
	return nil
}

// parseTime accepts RFC 3339 strings, bare dates and epoch numbers.
// Numbers above 1e11 are read as milliseconds.
func parseTime(b []byte) (time.Time, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return time.Time{}, false
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", time.DateOnly} {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return time.Time{}, false
	}
	n, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return time.Time{}, false
	}
	if n > 1e11 {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	return time.Unix(int64(n), 0).UTC(), true
}

// IsDashboard reports whether the event concerns dashboard data.
func (e Event) IsDashboard() bool {
	switch e.Type {
	case EventDashboardUpdate, EventMachineStatusUpdate, EventMaintenanceUpdate:
		return true
	}
	return false
}

// MachineStatusUpdate reports a machine changing status.
type MachineStatusUpdate struct {
	MachineID string `json:"machineId"`
	OldStatus string `json:"oldStatus"`
	NewStatus string `json:"newStatus"`
	Timestamp Time   `json:"timestamp"`
}

// MaintenanceAction is what happened to a maintenance.
type MaintenanceAction string

const (
	ActionCreated   MaintenanceAction = "created"
	ActionCompleted MaintenanceAction = "completed"
	ActionUpdated   MaintenanceAction = "updated"
	ActionCancelled MaintenanceAction = "cancelled"
)

// MaintenanceUpdate reports a maintenance lifecycle change.
type MaintenanceUpdate struct {
	MaintenanceID string            `json:"maintenanceId"`
	MachineID     string            `json:"machineId"`
	Action        MaintenanceAction `json:"action"`
	Timestamp     Time              `json:"timestamp"`
}

// DashboardEvent is a decoded dashboard-domain event. Exactly one of
// Patch, MachineStatus and Maintenance is set, matching Type.
type DashboardEvent struct {
	Type          EventType
	Patch         *api.DashboardPatch
	MachineStatus *MachineStatusUpdate
	Maintenance   *MaintenanceUpdate
	Timestamp     *time.Time
}

// DecodeDashboardEvent maps a raw event to its typed form. It reports false
// for events outside the dashboard domain.
func DecodeDashboardEvent(ev Event) (DashboardEvent, bool, error) {
	out := DashboardEvent{Type: ev.Type, Timestamp: ev.Timestamp}
	switch ev.Type {
	case EventDashboardUpdate:
		var p api.DashboardPatch
		if err := decodeData(ev.Data, &p); err != nil {
			return out, true, err
		}
		out.Patch = &p
	case EventMachineStatusUpdate:
		var m MachineStatusUpdate
		if err := decodeData(ev.Data, &m); err != nil {
			return out, true, err
		}
		out.MachineStatus = &m
	case EventMaintenanceUpdate:
		var m MaintenanceUpdate
		if err := decodeData(ev.Data, &m); err != nil {
			return out, true, err
		}
		out.Maintenance = &m
	default:
		return out, false, nil
	}
	return out, true, nil
}

// DecodeAlerts extracts the alert list from an upcoming_maintenance_alerts
// event. It reports false for any other event type.
func DecodeAlerts(ev Event) ([]api.MaintenanceAlert, bool, error) {
	if ev.Type != EventUpcomingAlerts {
		return nil, false, nil
	}
	var alerts []api.MaintenanceAlert
	if err := decodeData(ev.Data, &alerts); err != nil {
		return nil, true, err
	}
	if alerts == nil {
		alerts = []api.MaintenanceAlert{}
	}
	return alerts, true, nil
}

func decodeData(raw json.RawMessage, v any) error {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, v)
}
