package api

import "time"

// LoginRequest carries user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResult is returned by login and token refresh.
type LoginResult struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// MachineRequest creates or updates a machine.
type MachineRequest struct {
	Model        string  `json:"model" validate:"required"`
	SerialNumber string  `json:"serialNumber" validate:"required"`
	Status       string  `json:"status,omitempty"`
	UsageHours   float64 `json:"usageHours" validate:"gte=0"`
	Client       string  `json:"client" validate:"required"`
	Location     string  `json:"location" validate:"required"`
}

// MaintenanceRequest creates or updates a maintenance.
type MaintenanceRequest struct {
	MachineID    string    `json:"machineId" validate:"required"`
	TypeID       string    `json:"typeId" validate:"required"`
	Date         time.Time `json:"date" validate:"required"`
	SpareParts   []string  `json:"spareParts"`
	TechnicianID string    `json:"technicianId,omitempty"`
	Observations string    `json:"observations,omitempty"`
	WorkHours    *float64  `json:"workHours,omitempty" validate:"omitempty,gte=0"`
}

// CompleteRequest closes out a maintenance.
type CompleteRequest struct {
	WorkHours    float64 `json:"workHours" validate:"gte=0"`
	Observations string  `json:"observations"`
}

// StateChangeRequest moves a maintenance to another workflow state.
type StateChangeRequest struct {
	StateID      string `json:"stateId" validate:"required"`
	Observations string `json:"observations,omitempty"`
}

// CatalogRequest creates or updates a named catalog entry such as a
// maintenance type or a state.
type CatalogRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

// TypeMaintenanceStateRequest links a state into a type's workflow.
type TypeMaintenanceStateRequest struct {
	TypeMaintenanceID string `json:"typeMaintenanceId" validate:"required"`
	StateID           string `json:"stateId" validate:"required"`
	Order             int    `json:"order" validate:"gte=0"`
	IsActive          bool   `json:"isActive"`
}

// PermissionRequest creates or updates a permission.
type PermissionRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Resource    string `json:"resource" validate:"required"`
	Action      string `json:"action" validate:"required"`
	IsActive    bool   `json:"isActive"`
}

// RoleRequest creates or updates a role definition.
type RoleRequest struct {
	Name          string   `json:"name" validate:"required"`
	Description   string   `json:"description"`
	PermissionIDs []string `json:"permissions"`
	IsActive      bool     `json:"isActive"`
}

// CustomerRequest creates or updates a customer.
type CustomerRequest struct {
	IdentificationNumber string `json:"identificationNumber" validate:"required"`
	Name                 string `json:"name" validate:"required"`
	LastName             string `json:"lastName" validate:"required"`
	CellphoneNumber      string `json:"cellphoneNumber,omitempty"`
	Address              string `json:"address,omitempty"`
	Email                string `json:"email,omitempty" validate:"omitempty,email"`
	IsActive             bool   `json:"isActive"`
}
