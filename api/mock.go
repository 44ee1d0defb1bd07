package api

import "context"

// Mock service implementations for tests. A nil Func field returns zero
// values.

// MockAuthService is a test double for AuthServiceAPI.
type MockAuthService struct {
	LoginFunc   func(ctx context.Context, req LoginRequest) (*LoginResult, error)
	RefreshFunc func(ctx context.Context, refreshToken string) (*LoginResult, error)
	LogoutFunc  func(ctx context.Context) error
}

func (m *MockAuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, refreshToken)
	}
	return nil, nil
}

func (m *MockAuthService) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

// MockMachineService is a test double for MachineServiceAPI.
type MockMachineService struct {
	ListFunc   func(ctx context.Context) ([]Machine, error)
	GetFunc    func(ctx context.Context, id string) (*Machine, error)
	CreateFunc func(ctx context.Context, req MachineRequest) (*Machine, error)
	UpdateFunc func(ctx context.Context, id string, req MachineRequest) (*Machine, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockMachineService) List(ctx context.Context) ([]Machine, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockMachineService) Get(ctx context.Context, id string) (*Machine, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockMachineService) Create(ctx context.Context, req MachineRequest) (*Machine, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockMachineService) Update(ctx context.Context, id string, req MachineRequest) (*Machine, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockMachineService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockMaintenanceService is a test double for MaintenanceServiceAPI.
type MockMaintenanceService struct {
	ListFunc                    func(ctx context.Context) ([]Maintenance, error)
	ListPendingFunc             func(ctx context.Context) ([]Maintenance, error)
	ListByTechnicianFunc        func(ctx context.Context, technicianID string) ([]Maintenance, error)
	ListPendingByTechnicianFunc func(ctx context.Context, technicianID string) ([]Maintenance, error)
	GetFunc                     func(ctx context.Context, id string) (*Maintenance, error)
	CreateFunc                  func(ctx context.Context, req MaintenanceRequest) (*Maintenance, error)
	UpdateFunc                  func(ctx context.Context, id string, req MaintenanceRequest) (*Maintenance, error)
	DeleteFunc                  func(ctx context.Context, id string) error
	CompleteFunc                func(ctx context.Context, id string, req CompleteRequest) error
	UpdateStateFunc             func(ctx context.Context, id string, req StateChangeRequest) (*Maintenance, error)
}

func (m *MockMaintenanceService) List(ctx context.Context) ([]Maintenance, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockMaintenanceService) ListPending(ctx context.Context) ([]Maintenance, error) {
	if m.ListPendingFunc != nil {
		return m.ListPendingFunc(ctx)
	}
	return nil, nil
}

func (m *MockMaintenanceService) ListByTechnician(ctx context.Context, technicianID string) ([]Maintenance, error) {
	if m.ListByTechnicianFunc != nil {
		return m.ListByTechnicianFunc(ctx, technicianID)
	}
	return nil, nil
}

func (m *MockMaintenanceService) ListPendingByTechnician(ctx context.Context, technicianID string) ([]Maintenance, error) {
	if m.ListPendingByTechnicianFunc != nil {
		return m.ListPendingByTechnicianFunc(ctx, technicianID)
	}
	return nil, nil
}

func (m *MockMaintenanceService) Get(ctx context.Context, id string) (*Maintenance, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockMaintenanceService) Create(ctx context.Context, req MaintenanceRequest) (*Maintenance, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockMaintenanceService) Update(ctx context.Context, id string, req MaintenanceRequest) (*Maintenance, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockMaintenanceService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockMaintenanceService) Complete(ctx context.Context, id string, req CompleteRequest) error {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, id, req)
	}
	return nil
}

func (m *MockMaintenanceService) UpdateState(ctx context.Context, id string, req StateChangeRequest) (*Maintenance, error) {
	if m.UpdateStateFunc != nil {
		return m.UpdateStateFunc(ctx, id, req)
	}
	return nil, nil
}

// MockMaintenanceTypeService is a test double for MaintenanceTypeServiceAPI.
type MockMaintenanceTypeService struct {
	ListFunc       func(ctx context.Context) ([]MaintenanceType, error)
	ListActiveFunc func(ctx context.Context) ([]MaintenanceType, error)
	GetFunc        func(ctx context.Context, id string) (*MaintenanceType, error)
	CreateFunc     func(ctx context.Context, req CatalogRequest) (*MaintenanceType, error)
	UpdateFunc     func(ctx context.Context, id string, req CatalogRequest) (*MaintenanceType, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockMaintenanceTypeService) List(ctx context.Context) ([]MaintenanceType, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockMaintenanceTypeService) ListActive(ctx context.Context) ([]MaintenanceType, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *MockMaintenanceTypeService) Get(ctx context.Context, id string) (*MaintenanceType, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockMaintenanceTypeService) Create(ctx context.Context, req CatalogRequest) (*MaintenanceType, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockMaintenanceTypeService) Update(ctx context.Context, id string, req CatalogRequest) (*MaintenanceType, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockMaintenanceTypeService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockStateService is a test double for StateServiceAPI.
type MockStateService struct {
	ListFunc       func(ctx context.Context) ([]State, error)
	ListActiveFunc func(ctx context.Context) ([]State, error)
	GetFunc        func(ctx context.Context, id string) (*State, error)
	CreateFunc     func(ctx context.Context, req CatalogRequest) (*State, error)
	UpdateFunc     func(ctx context.Context, id string, req CatalogRequest) (*State, error)
	DeleteFunc     func(ctx context.Context, id string) error
}

func (m *MockStateService) List(ctx context.Context) ([]State, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockStateService) ListActive(ctx context.Context) ([]State, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

func (m *MockStateService) Get(ctx context.Context, id string) (*State, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockStateService) Create(ctx context.Context, req CatalogRequest) (*State, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockStateService) Update(ctx context.Context, id string, req CatalogRequest) (*State, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockStateService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockTypeMaintenanceStateService is a test double for TypeMaintenanceStateServiceAPI.
type MockTypeMaintenanceStateService struct {
	ListByTypeFunc  func(ctx context.Context, typeID string) ([]TypeMaintenanceState, error)
	ListByStateFunc func(ctx context.Context, stateID string) ([]TypeMaintenanceState, error)
	GetFunc         func(ctx context.Context, id string) (*TypeMaintenanceState, error)
	CreateFunc      func(ctx context.Context, req TypeMaintenanceStateRequest) (*TypeMaintenanceState, error)
	UpdateFunc      func(ctx context.Context, id string, req TypeMaintenanceStateRequest) (*TypeMaintenanceState, error)
	UpdateOrderFunc func(ctx context.Context, typeID, stateID string, order int) (*TypeMaintenanceState, error)
	DeleteFunc      func(ctx context.Context, id string) error
}

func (m *MockTypeMaintenanceStateService) ListByType(ctx context.Context, typeID string) ([]TypeMaintenanceState, error) {
	if m.ListByTypeFunc != nil {
		return m.ListByTypeFunc(ctx, typeID)
	}
	return nil, nil
}

func (m *MockTypeMaintenanceStateService) ListByState(ctx context.Context, stateID string) ([]TypeMaintenanceState, error) {
	if m.ListByStateFunc != nil {
		return m.ListByStateFunc(ctx, stateID)
	}
	return nil, nil
}

func (m *MockTypeMaintenanceStateService) Get(ctx context.Context, id string) (*TypeMaintenanceState, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockTypeMaintenanceStateService) Create(ctx context.Context, req TypeMaintenanceStateRequest) (*TypeMaintenanceState, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockTypeMaintenanceStateService) Update(ctx context.Context, id string, req TypeMaintenanceStateRequest) (*TypeMaintenanceState, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockTypeMaintenanceStateService) UpdateOrder(ctx context.Context, typeID, stateID string, order int) (*TypeMaintenanceState, error) {
	if m.UpdateOrderFunc != nil {
		return m.UpdateOrderFunc(ctx, typeID, stateID, order)
	}
	return nil, nil
}

func (m *MockTypeMaintenanceStateService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockUserService is a test double for UserServiceAPI.
type MockUserService struct {
	ListActiveFunc func(ctx context.Context) ([]User, error)
}

func (m *MockUserService) ListActive(ctx context.Context) ([]User, error) {
	if m.ListActiveFunc != nil {
		return m.ListActiveFunc(ctx)
	}
	return nil, nil
}

// MockRoleService is a test double for RoleServiceAPI.
type MockRoleService struct {
	ListFunc   func(ctx context.Context) ([]RoleDefinition, error)
	GetFunc    func(ctx context.Context, id string) (*RoleDefinition, error)
	CreateFunc func(ctx context.Context, req RoleRequest) (*RoleDefinition, error)
	UpdateFunc func(ctx context.Context, id string, req RoleRequest) (*RoleDefinition, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockRoleService) List(ctx context.Context) ([]RoleDefinition, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockRoleService) Get(ctx context.Context, id string) (*RoleDefinition, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockRoleService) Create(ctx context.Context, req RoleRequest) (*RoleDefinition, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockRoleService) Update(ctx context.Context, id string, req RoleRequest) (*RoleDefinition, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockRoleService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockPermissionService is a test double for PermissionServiceAPI.
type MockPermissionService struct {
	ListFunc   func(ctx context.Context) ([]Permission, error)
	GetFunc    func(ctx context.Context, id string) (*Permission, error)
	CreateFunc func(ctx context.Context, req PermissionRequest) (*Permission, error)
	UpdateFunc func(ctx context.Context, id string, req PermissionRequest) (*Permission, error)
	DeleteFunc func(ctx context.Context, id string) error
}

func (m *MockPermissionService) List(ctx context.Context) ([]Permission, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *MockPermissionService) Get(ctx context.Context, id string) (*Permission, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockPermissionService) Create(ctx context.Context, req PermissionRequest) (*Permission, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockPermissionService) Update(ctx context.Context, id string, req PermissionRequest) (*Permission, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockPermissionService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockCustomerService is a test double for CustomerServiceAPI.
type MockCustomerService struct {
	GetByIdentificationFunc func(ctx context.Context, identificationNumber string) (*Customer, error)
	ListFunc                func(ctx context.Context, skip, limit int) ([]Customer, error)
	GetFunc                 func(ctx context.Context, id string) (*Customer, error)
	CreateFunc              func(ctx context.Context, req CustomerRequest) (*Customer, error)
	UpdateFunc              func(ctx context.Context, id string, req CustomerRequest) (*Customer, error)
	DeleteFunc              func(ctx context.Context, id string) error
}

func (m *MockCustomerService) GetByIdentification(ctx context.Context, identificationNumber string) (*Customer, error) {
	if m.GetByIdentificationFunc != nil {
		return m.GetByIdentificationFunc(ctx, identificationNumber)
	}
	return nil, nil
}

func (m *MockCustomerService) List(ctx context.Context, skip, limit int) ([]Customer, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, skip, limit)
	}
	return nil, nil
}

func (m *MockCustomerService) Get(ctx context.Context, id string) (*Customer, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockCustomerService) Create(ctx context.Context, req CustomerRequest) (*Customer, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockCustomerService) Update(ctx context.Context, id string, req CustomerRequest) (*Customer, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockCustomerService) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockDashboardService is a test double for DashboardServiceAPI.
type MockDashboardService struct {
	DataFunc           func(ctx context.Context, f DashboardFilters) (*DashboardData, error)
	StatsFunc          func(ctx context.Context, f DashboardFilters) (*DashboardStats, error)
	ChartsFunc         func(ctx context.Context, f DashboardFilters) (*DashboardCharts, error)
	AlertsFunc         func(ctx context.Context, f DashboardFilters) ([]MaintenanceAlert, error)
	RecentMachinesFunc func(ctx context.Context, f DashboardFilters) ([]RecentMachine, error)
	BroadcastFunc      func(ctx context.Context) error
}

func (m *MockDashboardService) Data(ctx context.Context, f DashboardFilters) (*DashboardData, error) {
	if m.DataFunc != nil {
		return m.DataFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockDashboardService) Stats(ctx context.Context, f DashboardFilters) (*DashboardStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockDashboardService) Charts(ctx context.Context, f DashboardFilters) (*DashboardCharts, error) {
	if m.ChartsFunc != nil {
		return m.ChartsFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockDashboardService) Alerts(ctx context.Context, f DashboardFilters) ([]MaintenanceAlert, error) {
	if m.AlertsFunc != nil {
		return m.AlertsFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockDashboardService) RecentMachines(ctx context.Context, f DashboardFilters) ([]RecentMachine, error) {
	if m.RecentMachinesFunc != nil {
		return m.RecentMachinesFunc(ctx, f)
	}
	return nil, nil
}

func (m *MockDashboardService) Broadcast(ctx context.Context) error {
	if m.BroadcastFunc != nil {
		return m.BroadcastFunc(ctx)
	}
	return nil
}

var _ AuthServiceAPI = (*MockAuthService)(nil)
var _ MachineServiceAPI = (*MockMachineService)(nil)
var _ MaintenanceServiceAPI = (*MockMaintenanceService)(nil)
var _ MaintenanceTypeServiceAPI = (*MockMaintenanceTypeService)(nil)
var _ StateServiceAPI = (*MockStateService)(nil)
var _ TypeMaintenanceStateServiceAPI = (*MockTypeMaintenanceStateService)(nil)
var _ UserServiceAPI = (*MockUserService)(nil)
var _ RoleServiceAPI = (*MockRoleService)(nil)
var _ PermissionServiceAPI = (*MockPermissionService)(nil)
var _ CustomerServiceAPI = (*MockCustomerService)(nil)
var _ DashboardServiceAPI = (*MockDashboardService)(nil)

var _ AuthServiceAPI = (*AuthService)(nil)
var _ MachineServiceAPI = (*MachineService)(nil)
var _ MaintenanceServiceAPI = (*MaintenanceService)(nil)
var _ MaintenanceTypeServiceAPI = (*MaintenanceTypeService)(nil)
var _ StateServiceAPI = (*StateService)(nil)
var _ TypeMaintenanceStateServiceAPI = (*TypeMaintenanceStateService)(nil)
var _ UserServiceAPI = (*UserService)(nil)
var _ RoleServiceAPI = (*RoleService)(nil)
var _ PermissionServiceAPI = (*PermissionService)(nil)
var _ CustomerServiceAPI = (*CustomerService)(nil)
var _ DashboardServiceAPI = (*DashboardService)(nil)
