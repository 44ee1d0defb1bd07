package internal

import "github.com/deevus/maintenance-tui/api"

// Services holds initialized API service interfaces for one server.
type Services struct {
	Auth             api.AuthServiceAPI
	Machines         api.MachineServiceAPI
	Maintenances     api.MaintenanceServiceAPI
	MaintenanceTypes api.MaintenanceTypeServiceAPI
	States           api.StateServiceAPI
	TypeStates       api.TypeMaintenanceStateServiceAPI
	Users            api.UserServiceAPI
	Roles            api.RoleServiceAPI
	Permissions      api.PermissionServiceAPI
	Customers        api.CustomerServiceAPI
	Dashboard        api.DashboardServiceAPI
}

// NewServices creates a Services container backed by c.
func NewServices(c *api.Client) *Services {
	return &Services{
		Auth:             api.NewAuthService(c),
		Machines:         api.NewMachineService(c),
		Maintenances:     api.NewMaintenanceService(c),
		MaintenanceTypes: api.NewMaintenanceTypeService(c),
		States:           api.NewStateService(c),
		TypeStates:       api.NewTypeMaintenanceStateService(c),
		Users:            api.NewUserService(c),
		Roles:            api.NewRoleService(c),
		Permissions:      api.NewPermissionService(c),
		Customers:        api.NewCustomerService(c),
		Dashboard:        api.NewDashboardService(c),
	}
}
