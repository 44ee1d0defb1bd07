package api

import "context"

// MachineServiceAPI manages machines.
type MachineServiceAPI interface {
	List(ctx context.Context) ([]Machine, error)
	Get(ctx context.Context, id string) (*Machine, error)
	Create(ctx context.Context, req MachineRequest) (*Machine, error)
	Update(ctx context.Context, id string, req MachineRequest) (*Machine, error)
	Delete(ctx context.Context, id string) error
}

// MachineService implements MachineServiceAPI over HTTP.
type MachineService struct {
	client *Client
}

// NewMachineService creates a MachineService.
func NewMachineService(c *Client) *MachineService {
	return &MachineService{client: c}
}

func (s *MachineService) List(ctx context.Context) ([]Machine, error) {
	return getList[Machine](ctx, s.client, "machines", nil)
}

func (s *MachineService) Get(ctx context.Context, id string) (*Machine, error) {
	return getOne[Machine](ctx, s.client, pathf("machines/%s", id))
}

func (s *MachineService) Create(ctx context.Context, req MachineRequest) (*Machine, error) {
	return create[Machine](ctx, s.client, "machines", req)
}

func (s *MachineService) Update(ctx context.Context, id string, req MachineRequest) (*Machine, error) {
	return update[Machine](ctx, s.client, pathf("machines/%s", id), req)
}

func (s *MachineService) Delete(ctx context.Context, id string) error {
	return s.client.delete(ctx, pathf("machines/%s", id))
}
