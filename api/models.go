package api

import (
	"encoding/json"
	"strings"
	"time"
)

// Role is the access level of a console user.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleCoordinator Role = "coordinator"
	RoleTechnician  Role = "technician"
)

// Privileged reports whether the role bypasses workflow restrictions.
func (r Role) Privileged() bool {
	return r == RoleAdmin
}

// SeesAllMaintenances reports whether the role may list every maintenance
// rather than only its own assignments.
func (r Role) SeesAllMaintenances() bool {
	return r == RoleAdmin || r == RoleCoordinator
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// User is an authenticated console user or a technician.
type User struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Role      Role       `json:"role"`
	IsActive  bool       `json:"isActive"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

func (u *User) UnmarshalJSON(b []byte) error {
	type raw User
	aux := struct {
		*raw
		MongoID  string `json:"_id"`
		IsActive *bool  `json:"isActive"`
	}{raw: (*raw)(u)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = aux.MongoID
	}
	u.IsActive = boolOr(aux.IsActive, true)
	return nil
}

// FullName joins first and last name, falling back to the email.
func (u User) FullName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Machine status values.
const (
	MachineOperational  = "operational"
	MachineMaintenance  = "maintenance"
	MachineOutOfService = "out_of_service"
)

// MachineStatusLabel returns a display label for a machine status.
func MachineStatusLabel(status string) string {
	switch status {
	case MachineOperational:
		return "Operational"
	case MachineMaintenance:
		return "In maintenance"
	case MachineOutOfService:
		return "Out of service"
	case "":
		return "-"
	default:
		return status
	}
}

// Machine is an industrial machine under maintenance.
type Machine struct {
	ID           string     `json:"id"`
	Model        string     `json:"model"`
	SerialNumber Text       `json:"serialNumber"`
	Status       string     `json:"status"`
	UsageHours   float64    `json:"usageHours"`
	Client       string     `json:"client"`
	Location     string     `json:"location"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

func (m *Machine) UnmarshalJSON(b []byte) error {
	type raw Machine
	aux := struct {
		*raw
		MongoID string `json:"_id"`
	}{raw: (*raw)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = aux.MongoID
	}
	return nil
}

// MaintenanceType groups maintenances that share a workflow.
type MaintenanceType struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (t *MaintenanceType) UnmarshalJSON(b []byte) error {
	type raw MaintenanceType
	aux := struct {
		*raw
		MongoID  string `json:"_id"`
		IsActive *bool  `json:"isActive"`
	}{raw: (*raw)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = aux.MongoID
	}
	t.IsActive = boolOr(aux.IsActive, true)
	return nil
}

// State is a named workflow step.
type State struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (s *State) UnmarshalJSON(b []byte) error {
	type raw State
	aux := struct {
		*raw
		MongoID  string `json:"_id"`
		IsActive *bool  `json:"isActive"`
	}{raw: (*raw)(s)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = aux.MongoID
	}
	s.IsActive = boolOr(aux.IsActive, true)
	return nil
}

// TypeMaintenanceState places a State at a position in a maintenance
// type's workflow.
type TypeMaintenanceState struct {
	ID              string                `json:"id"`
	TypeMaintenance Ref[MaintenanceType]  `json:"typeMaintenanceId"`
	State           Ref[State]            `json:"stateId"`
	Order           int                   `json:"order"`
	IsActive        bool                  `json:"isActive"`
	CreatedAt       *time.Time            `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time            `json:"updatedAt,omitempty"`
}

func (t *TypeMaintenanceState) UnmarshalJSON(b []byte) error {
	type raw TypeMaintenanceState
	aux := struct {
		*raw
		MongoID     string           `json:"_id"`
		IsActive    *bool            `json:"isActive"`
		StateDetail *State           `json:"state"`
		TypeDetail  *MaintenanceType `json:"typeMaintenance"`
	}{raw: (*raw)(t)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = aux.MongoID
	}
	t.IsActive = boolOr(aux.IsActive, true)
	if _, ok := t.State.Value(); !ok && aux.StateDetail != nil {
		id := t.State.ID()
		if id == "" {
			id = aux.StateDetail.ID
		}
		t.State = Populated(id, *aux.StateDetail)
	}
	if _, ok := t.TypeMaintenance.Value(); !ok && aux.TypeDetail != nil {
		id := t.TypeMaintenance.ID()
		if id == "" {
			id = aux.TypeDetail.ID
		}
		t.TypeMaintenance = Populated(id, *aux.TypeDetail)
	}
	return nil
}

// StateName returns the populated state's name, or "" if only the id is known.
func (t TypeMaintenanceState) StateName() string {
	if s, ok := t.State.Value(); ok {
		return s.Name
	}
	return ""
}

// MachineSummary is the machine embedded in a populated maintenance.
type MachineSummary struct {
	ID           string `json:"id"`
	Model        string `json:"model"`
	SerialNumber Text   `json:"serialNumber"`
	Client       string `json:"client"`
	Location     string `json:"location"`
}

func (m *MachineSummary) UnmarshalJSON(b []byte) error {
	type raw MachineSummary
	aux := struct {
		*raw
		MongoID string `json:"_id"`
	}{raw: (*raw)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = aux.MongoID
	}
	return nil
}

// Maintenance is a scheduled or completed service event on one machine.
type Maintenance struct {
	ID           string               `json:"id"`
	Machine      Ref[MachineSummary]  `json:"machineId"`
	Type         Ref[MaintenanceType] `json:"typeId"`
	CurrentState Ref[State]           `json:"currentStateId"`
	Technician   Ref[User]            `json:"technicianId"`
	Date         time.Time            `json:"date"`
	Observations string               `json:"observations"`
	WorkHours    *float64             `json:"workHours,omitempty"`
	SpareParts   []string             `json:"spareParts"`
	IsCompleted  bool                 `json:"isCompleted"`
	CreatedAt    *time.Time           `json:"createdAt,omitempty"`
	UpdatedAt    *time.Time           `json:"updatedAt,omitempty"`

	// TypeName is the legacy free-text type some records still carry.
	TypeName string `json:"type,omitempty"`
}

func (m *Maintenance) UnmarshalJSON(b []byte) error {
	type raw Maintenance
	aux := struct {
		*raw
		MongoID     string `json:"_id"`
		IsCompleted *bool  `json:"isCompleted"`
	}{raw: (*raw)(m)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = aux.MongoID
	}
	m.IsCompleted = boolOr(aux.IsCompleted, false)
	if m.SpareParts == nil {
		m.SpareParts = []string{}
	}
	if m.Type.IsZero() && m.TypeName != "" {
		m.Type = RefTo[MaintenanceType](m.TypeName)
	}
	return nil
}

// TypeLabel returns the best available display name for the maintenance type.
func (m Maintenance) TypeLabel() string {
	if t, ok := m.Type.Value(); ok && t.Name != "" {
		return t.Name
	}
	if m.TypeName != "" {
		return m.TypeName
	}
	return m.Type.ID()
}

// StateLabel returns the populated current state's name, if any.
func (m Maintenance) StateLabel() string {
	if s, ok := m.CurrentState.Value(); ok {
		return s.Name
	}
	return ""
}

// Customer is a client that owns machines.
type Customer struct {
	ID                   string     `json:"id"`
	IdentificationNumber string     `json:"identificationNumber"`
	Name                 string     `json:"name"`
	LastName             string     `json:"lastName"`
	CellphoneNumber      string     `json:"cellphoneNumber,omitempty"`
	Address              string     `json:"address,omitempty"`
	Email                string     `json:"email,omitempty"`
	IsActive             bool       `json:"isActive"`
	CreatedAt            *time.Time `json:"createdAt,omitempty"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

func (c *Customer) UnmarshalJSON(b []byte) error {
	type raw Customer
	aux := struct {
		*raw
		MongoID  string `json:"_id"`
		IsActive *bool  `json:"isActive"`
	}{raw: (*raw)(c)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = aux.MongoID
	}
	c.IsActive = boolOr(aux.IsActive, true)
	return nil
}

// Permission grants an action on a resource.
type Permission struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Resource    string     `json:"resource"`
	Action      string     `json:"action"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

func (p *Permission) UnmarshalJSON(b []byte) error {
	type raw Permission
	aux := struct {
		*raw
		MongoID  string `json:"_id"`
		IsActive *bool  `json:"isActive"`
	}{raw: (*raw)(p)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if p.ID == "" {
		p.ID = aux.MongoID
	}
	p.IsActive = boolOr(aux.IsActive, true)
	return nil
}

// RoleDefinition is a role record and the permissions it grants.
type RoleDefinition struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Permissions []Ref[Permission] `json:"permissions"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time        `json:"updatedAt,omitempty"`
}

func (r *RoleDefinition) UnmarshalJSON(b []byte) error {
	type raw RoleDefinition
	aux := struct {
		*raw
		MongoID  string `json:"_id"`
		IsActive *bool  `json:"isActive"`
	}{raw: (*raw)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = aux.MongoID
	}
	r.IsActive = boolOr(aux.IsActive, true)
	if r.Permissions == nil {
		r.Permissions = []Ref[Permission]{}
	}
	return nil
}
