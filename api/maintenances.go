package api

import (
	"context"
	"net/http"
)

// MaintenanceServiceAPI manages maintenances and their lifecycle.
type MaintenanceServiceAPI interface {
	List(ctx context.Context) ([]Maintenance, error)
	ListPending(ctx context.Context) ([]Maintenance, error)
	ListByTechnician(ctx context.Context, technicianID string) ([]Maintenance, error)
	ListPendingByTechnician(ctx context.Context, technicianID string) ([]Maintenance, error)
	Get(ctx context.Context, id string) (*Maintenance, error)
	Create(ctx context.Context, req MaintenanceRequest) (*Maintenance, error)
	Update(ctx context.Context, id string, req MaintenanceRequest) (*Maintenance, error)
	Delete(ctx context.Context, id string) error
	Complete(ctx context.Context, id string, req CompleteRequest) error
	UpdateState(ctx context.Context, id string, req StateChangeRequest) (*Maintenance, error)
}

// MaintenanceService implements MaintenanceServiceAPI over HTTP.
type MaintenanceService struct {
	client *Client
}

// NewMaintenanceService creates a MaintenanceService.
func NewMaintenanceService(c *Client) *MaintenanceService {
	return &MaintenanceService{client: c}
}

func (s *MaintenanceService) List(ctx context.Context) ([]Maintenance, error) {
	return getList[Maintenance](ctx, s.client, "maintenances", nil)
}

func (s *MaintenanceService) ListPending(ctx context.Context) ([]Maintenance, error) {
	return getList[Maintenance](ctx, s.client, "maintenances/pending", nil)
}

func (s *MaintenanceService) ListByTechnician(ctx context.Context, technicianID string) ([]Maintenance, error) {
	return getList[Maintenance](ctx, s.client, pathf("maintenances/technician/%s", technicianID), nil)
}

func (s *MaintenanceService) ListPendingByTechnician(ctx context.Context, technicianID string) ([]Maintenance, error) {
	return getList[Maintenance](ctx, s.client, pathf("maintenances/technician/%s/pending", technicianID), nil)
}

func (s *MaintenanceService) Get(ctx context.Context, id string) (*Maintenance, error) {
	return getOne[Maintenance](ctx, s.client, pathf("maintenances/%s", id))
}

func (s *MaintenanceService) Create(ctx context.Context, req MaintenanceRequest) (*Maintenance, error) {
	return create[Maintenance](ctx, s.client, "maintenances", req)
}

func (s *MaintenanceService) Update(ctx context.Context, id string, req MaintenanceRequest) (*Maintenance, error) {
	return update[Maintenance](ctx, s.client, pathf("maintenances/%s", id), req)
}

func (s *MaintenanceService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, pathf("maintenances/%s", id))
}

func (s *MaintenanceService) Complete(ctx context.Context, id string, req CompleteRequest) error {
	if err := s.client.check(req); err != nil {
		return err
	}
	return s.client.patch(ctx, pathf("maintenances/%s/complete", id), req, nil)
}

func (s *MaintenanceService) UpdateState(ctx context.Context, id string, req StateChangeRequest) (*Maintenance, error) {
	return send[Maintenance](ctx, s.client, http.MethodPatch, pathf("maintenances/%s/state", id), req)
}
