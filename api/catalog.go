package api

import (
	"context"
	"net/url"
	"strconv"
)

// MaintenanceTypeServiceAPI manages maintenance types.
type MaintenanceTypeServiceAPI interface {
	List(ctx context.Context) ([]MaintenanceType, error)
	ListActive(ctx context.Context) ([]MaintenanceType, error)
	Get(ctx context.Context, id string) (*MaintenanceType, error)
	Create(ctx context.Context, req CatalogRequest) (*MaintenanceType, error)
	Update(ctx context.Context, id string, req CatalogRequest) (*MaintenanceType, error)
	Delete(ctx context.Context, id string) error
}

// MaintenanceTypeService implements MaintenanceTypeServiceAPI over HTTP.
type MaintenanceTypeService struct {
	client *Client
}

// NewMaintenanceTypeService creates a MaintenanceTypeService.
func NewMaintenanceTypeService(c *Client) *MaintenanceTypeService {
	return &MaintenanceTypeService{client: c}
}

func (s *MaintenanceTypeService) List(ctx context.Context) ([]MaintenanceType, error) {
	return getList[MaintenanceType](ctx, s.client, "maintenances/types", nil)
}

func (s *MaintenanceTypeService) ListActive(ctx context.Context) ([]MaintenanceType, error) {
	return getList[MaintenanceType](ctx, s.client, "maintenances/types/active", nil)
}

func (s *MaintenanceTypeService) Get(ctx context.Context, id string) (*MaintenanceType, error) {
	return getOne[MaintenanceType](ctx, s.client, pathf("maintenances/types/%s", id))
}

func (s *MaintenanceTypeService) Create(ctx context.Context, req CatalogRequest) (*MaintenanceType, error) {
	return create[MaintenanceType](ctx, s.client, "maintenances/types", req)
}

func (s *MaintenanceTypeService) Update(ctx context.Context, id string, req CatalogRequest) (*MaintenanceType, error) {
	return update[MaintenanceType](ctx, s.client, pathf("maintenances/types/%s", id), req)
}

func (s *MaintenanceTypeService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, pathf("maintenances/types/%s", id))
}

// StateServiceAPI manages workflow states.
type StateServiceAPI interface {
	List(ctx context.Context) ([]State, error)
	ListActive(ctx context.Context) ([]State, error)
	Get(ctx context.Context, id string) (*State, error)
	Create(ctx context.Context, req CatalogRequest) (*State, error)
	Update(ctx context.Context, id string, req CatalogRequest) (*State, error)
	Delete(ctx context.Context, id string) error
}

// StateService implements StateServiceAPI over HTTP.
type StateService struct {
	client *Client
}

// NewStateService creates a StateService.
func NewStateService(c *Client) *StateService {
	return &StateService{client: c}
}

func (s *StateService) List(ctx context.Context) ([]State, error) {
	return getList[State](ctx, s.client, "maintenances/states", nil)
}

func (s *StateService) ListActive(ctx context.Context) ([]State, error) {
	return getList[State](ctx, s.client, "maintenances/states/active", nil)
}

func (s *StateService) Get(ctx context.Context, id string) (*State, error) {
	return getOne[State](ctx, s.client, pathf("maintenances/states/%s", id))
}

func (s *StateService) Create(ctx context.Context, req CatalogRequest) (*State, error) {
	return create[State](ctx, s.client, "maintenances/states", req)
}

func (s *StateService) Update(ctx context.Context, id string, req CatalogRequest) (*State, error) {
	return update[State](ctx, s.client, pathf("maintenances/states/%s", id), req)
}

func (s *StateService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, pathf("maintenances/states/%s", id))
}

// TypeMaintenanceStateServiceAPI manages the ordered state list of each
// maintenance type.
type TypeMaintenanceStateServiceAPI interface {
	ListByType(ctx context.Context, typeID string) ([]TypeMaintenanceState, error)
	ListByState(ctx context.Context, stateID string) ([]TypeMaintenanceState, error)
	Get(ctx context.Context, id string) (*TypeMaintenanceState, error)
	Create(ctx context.Context, req TypeMaintenanceStateRequest) (*TypeMaintenanceState, error)
	Update(ctx context.Context, id string, req TypeMaintenanceStateRequest) (*TypeMaintenanceState, error)
	UpdateOrder(ctx context.Context, typeID, stateID string, order int) (*TypeMaintenanceState, error)
	Delete(ctx context.Context, id string) error
}

// TypeMaintenanceStateService implements TypeMaintenanceStateServiceAPI over HTTP.
type TypeMaintenanceStateService struct {
	client *Client
}

// NewTypeMaintenanceStateService creates a TypeMaintenanceStateService.
func NewTypeMaintenanceStateService(c *Client) *TypeMaintenanceStateService {
	return &TypeMaintenanceStateService{client: c}
}

const typeStatesPath = "maintenances/type-maintenance-states"

func (s *TypeMaintenanceStateService) ListByType(ctx context.Context, typeID string) ([]TypeMaintenanceState, error) {
	return getList[TypeMaintenanceState](ctx, s.client, pathf(typeStatesPath+"/type-maintenance/%s", typeID), nil)
}

func (s *TypeMaintenanceStateService) ListByState(ctx context.Context, stateID string) ([]TypeMaintenanceState, error) {
	return getList[TypeMaintenanceState](ctx, s.client, pathf(typeStatesPath+"/state/%s", stateID), nil)
}

func (s *TypeMaintenanceStateService) Get(ctx context.Context, id string) (*TypeMaintenanceState, error) {
	return getOne[TypeMaintenanceState](ctx, s.client, pathf(typeStatesPath+"/%s", id))
}

func (s *TypeMaintenanceStateService) Create(ctx context.Context, req TypeMaintenanceStateRequest) (*TypeMaintenanceState, error) {
	return create[TypeMaintenanceState](ctx, s.client, typeStatesPath, req)
}

func (s *TypeMaintenanceStateService) Update(ctx context.Context, id string, req TypeMaintenanceStateRequest) (*TypeMaintenanceState, error) {
	return update[TypeMaintenanceState](ctx, s.client, pathf(typeStatesPath+"/%s", id), req)
}

type orderRequest struct {
	Order int `json:"order" validate:"gte=0"`
}

func (s *TypeMaintenanceStateService) UpdateOrder(ctx context.Context, typeID, stateID string, order int) (*TypeMaintenanceState, error) {
	return update[TypeMaintenanceState](ctx, s.client, pathf(typeStatesPath+"/order/%s/%s", typeID, stateID), orderRequest{Order: order})
}

func (s *TypeMaintenanceStateService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, pathf(typeStatesPath+"/%s", id))
}

// UserServiceAPI looks up users.
type UserServiceAPI interface {
	ListActive(ctx context.Context) ([]User, error)
}

// UserService implements UserServiceAPI over HTTP.
type UserService struct {
	client *Client
}

// NewUserService creates a UserService.
func NewUserService(c *Client) *UserService {
	return &UserService{client: c}
}

// ListActive returns active users, used to pick technicians.
func (s *UserService) ListActive(ctx context.Context) ([]User, error) {
	return getList[User](ctx, s.client, "users/actives", nil)
}

// RoleServiceAPI manages role definitions.
type RoleServiceAPI interface {
	List(ctx context.Context) ([]RoleDefinition, error)
	Get(ctx context.Context, id string) (*RoleDefinition, error)
	Create(ctx context.Context, req RoleRequest) (*RoleDefinition, error)
	Update(ctx context.Context, id string, req RoleRequest) (*RoleDefinition, error)
	Delete(ctx context.Context, id string) error
}

// RoleService implements RoleServiceAPI over HTTP.
type RoleService struct {
	client *Client
}

// NewRoleService creates a RoleService.
func NewRoleService(c *Client) *RoleService {
	return &RoleService{client: c}
}

func (s *RoleService) List(ctx context.Context) ([]RoleDefinition, error) {
	return getList[RoleDefinition](ctx, s.client, "roles", nil)
}

func (s *RoleService) Get(ctx context.Context, id string) (*RoleDefinition, error) {
	return getOne[RoleDefinition](ctx, s.client, pathf("roles/%s", id))
}

func (s *RoleService) Create(ctx context.Context, req RoleRequest) (*RoleDefinition, error) {
	return create[RoleDefinition](ctx, s.client, "roles", req)
}

func (s *RoleService) Update(ctx context.Context, id string, req RoleRequest) (*RoleDefinition, error) {
	return update[RoleDefinition](ctx, s.client, pathf("roles/%s", id), req)
}

func (s *RoleService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, pathf("roles/%s", id))
}

// PermissionServiceAPI manages permissions.
type PermissionServiceAPI interface {
	List(ctx context.Context) ([]Permission, error)
	Get(ctx context.Context, id string) (*Permission, error)
	Create(ctx context.Context, req PermissionRequest) (*Permission, error)
	Update(ctx context.Context, id string, req PermissionRequest) (*Permission, error)
	Delete(ctx context.Context, id string) error
}

// PermissionService implements PermissionServiceAPI over HTTP.
type PermissionService struct {
	client *Client
}

// NewPermissionService creates a PermissionService.
func NewPermissionService(c *Client) *PermissionService {
	return &PermissionService{client: c}
}

func (s *PermissionService) List(ctx context.Context) ([]Permission, error) {
	return getList[Permission](ctx, s.client, "permissions", nil)
}

func (s *PermissionService) Get(ctx context.Context, id string) (*Permission, error) {
	return getOne[Permission](ctx, s.client, pathf("permissions/%s", id))
}

func (s *PermissionService) Create(ctx context.Context, req PermissionRequest) (*Permission, error) {
	return create[Permission](ctx, s.client, "permissions", req)
}

func (s *PermissionService) Update(ctx context.Context, id string, req PermissionRequest) (*Permission, error) {
	return update[Permission](ctx, s.client, pathf("permissions/%s", id), req)
}

func (s *PermissionService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, pathf("permissions/%s", id))
}

// CustomerServiceAPI manages customers.
type CustomerServiceAPI interface {
	// GetByIdentification looks a customer up by national identification
	// number. The backend serves it on the same route as Get.
	GetByIdentification(ctx context.Context, identificationNumber string) (*Customer, error)
	List(ctx context.Context, skip, limit int) ([]Customer, error)
	Get(ctx context.Context, id string) (*Customer, error)
	Create(ctx context.Context, req CustomerRequest) (*Customer, error)
	Update(ctx context.Context, id string, req CustomerRequest) (*Customer, error)
	Delete(ctx context.Context, id string) error
}

// CustomerService implements CustomerServiceAPI over HTTP.
type CustomerService struct {
	client *Client
}

// NewCustomerService creates a CustomerService.
func NewCustomerService(c *Client) *CustomerService {
	return &CustomerService{client: c}
}

// DefaultCustomerPageSize is the page size used when List is given limit <= 0.
const DefaultCustomerPageSize = 20

func (s *CustomerService) GetByIdentification(ctx context.Context, identificationNumber string) (*Customer, error) {
	return getOne[Customer](ctx, s.client, pathf("customers/%s", identificationNumber))
}

func (s *CustomerService) List(ctx context.Context, skip, limit int) ([]Customer, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultCustomerPageSize
	}
	q := url.Values{}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(limit))
	return getList[Customer](ctx, s.client, "customers", q)
}

func (s *CustomerService) Get(ctx context.Context, id string) (*Customer, error) {
	return getOne[Customer](ctx, s.client, pathf("customers/%s", id))
}

func (s *CustomerService) Create(ctx context.Context, req CustomerRequest) (*Customer, error) {
	return create[Customer](ctx, s.client, "customers", req)
}

func (s *CustomerService) Update(ctx context.Context, id string, req CustomerRequest) (*Customer, error) {
	return update[Customer](ctx, s.client, pathf("customers/%s", id), req)
}

func (s *CustomerService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, pathf("customers/%s", id))
}
