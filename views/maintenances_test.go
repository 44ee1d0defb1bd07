package views_test

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/internal/vxtest"
	"github.com/deevus/maintenance-tui/views"
	"github.com/deevus/maintenance-tui/workflow"
)

type fakeViewer struct {
	role api.Role
	user *api.User
}

func (v fakeViewer) Role() api.Role { return v.role }

func (v fakeViewer) User() (*api.User, bool) { return v.user, v.user != nil }

var technician = fakeViewer{role: api.RoleTechnician, user: &api.User{ID: "u7", FirstName: "Ana"}}

func link(id, name string, order int) api.TypeMaintenanceState {
	return api.TypeMaintenanceState{
		State:    api.Populated(id, api.State{ID: id, Name: name}),
		Order:    order,
		IsActive: true,
	}
}

func typeStates() *api.MockTypeMaintenanceStateService {
	return &api.MockTypeMaintenanceStateService{
		ListByTypeFunc: func(ctx context.Context, typeID string) ([]api.TypeMaintenanceState, error) {
			return []api.TypeMaintenanceState{
				link("s3", "Done", 3),
				link("s1", "Scheduled", 1),
				link("s2", "Running", 2),
			}, nil
		},
	}
}

func maintenance(id, state string) api.Maintenance {
	return api.Maintenance{
		ID:           id,
		Machine:      api.Populated("m1", api.MachineSummary{ID: "m1", Model: "Press 400", SerialNumber: "P-1"}),
		Type:         api.RefTo[api.MaintenanceType]("t1"),
		CurrentState: api.RefTo[api.State](state),
		Date:         time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newMaintenancesView(svc *api.MockMaintenanceService, v views.Viewer) *views.MaintenancesView {
	return views.NewMaintenancesView(views.MaintenancesViewParams{
		Service:    svc,
		TypeStates: typeStates(),
		Viewer:     v,
		StaleTTL:   30 * time.Second,
	})
}

func TestMaintenancesView_Load_AdminSeesAll(t *testing.T) {
	later := maintenance("b", "s1")
	later.Date = later.Date.AddDate(0, 1, 0)
	svc := &api.MockMaintenanceService{
		ListFunc: func(ctx context.Context) ([]api.Maintenance, error) {
			return []api.Maintenance{later, maintenance("a", "s1")}, nil
		},
		ListByTechnicianFunc: func(ctx context.Context, id string) ([]api.Maintenance, error) {
			t.Error("admin must not be scoped to a technician")
			return nil, nil
		},
	}

	mv := newMaintenancesView(svc, fakeViewer{role: api.RoleAdmin})
	if err := mv.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mv.ItemCount() != 2 {
		t.Fatalf("expected 2 maintenances, got %d", mv.ItemCount())
	}
	if mv.Maintenances()[0].ID != "a" {
		t.Errorf("expected date order, got %s first", mv.Maintenances()[0].ID)
	}
}

func TestMaintenancesView_Load_TechnicianScoped(t *testing.T) {
	var gotID string
	svc := &api.MockMaintenanceService{
		ListByTechnicianFunc: func(ctx context.Context, id string) ([]api.Maintenance, error) {
			gotID = id
			return []api.Maintenance{maintenance("a", "s1")}, nil
		},
		ListPendingByTechnicianFunc: func(ctx context.Context, id string) ([]api.Maintenance, error) {
			return []api.Maintenance{}, nil
		},
	}

	mv := newMaintenancesView(svc, technician)
	if err := mv.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "u7" {
		t.Errorf("expected technician id u7, got %q", gotID)
	}

	mv.SetPendingOnly(true)
	_ = mv.Load(context.Background())
	if mv.ItemCount() != 0 {
		t.Errorf("expected pending list to be used, got %d items", mv.ItemCount())
	}
}

func TestMaintenancesView_Load_CoordinatorPending(t *testing.T) {
	called := false
	svc := &api.MockMaintenanceService{
		ListPendingFunc: func(ctx context.Context) ([]api.Maintenance, error) {
			called = true
			return nil, nil
		},
	}
	mv := newMaintenancesView(svc, fakeViewer{role: api.RoleCoordinator})
	mv.SetPendingOnly(true)
	if err := mv.Load(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected ListPending for a coordinator")
	}
}

func TestMaintenancesView_Load_NoUser(t *testing.T) {
	mv := newMaintenancesView(&api.MockMaintenanceService{}, fakeViewer{role: api.RoleTechnician})
	if err := mv.Load(context.Background()); !errors.Is(err, views.ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
	if mv.Loaded() {
		t.Error("expected Loaded()=false")
	}
}

func TestMaintenancesView_Advance(t *testing.T) {
	var req api.StateChangeRequest
	svc := &api.MockMaintenanceService{
		UpdateStateFunc: func(ctx context.Context, id string, r api.StateChangeRequest) (*api.Maintenance, error) {
			req = r
			m := maintenance(id, r.StateID)
			return &m, nil
		},
	}
	mv := newMaintenancesView(svc, technician)

	next, err := mv.Advance(context.Background(), maintenance("a", "s1"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.ID != "s2" || req.StateID != "s2" {
		t.Errorf("expected move to s2, got next=%s request=%s", next.ID, req.StateID)
	}
}

func TestMaintenancesView_Advance_TerminalBlocksTechnician(t *testing.T) {
	svc := &api.MockMaintenanceService{
		UpdateStateFunc: func(ctx context.Context, id string, r api.StateChangeRequest) (*api.Maintenance, error) {
			t.Error("no state change expected")
			return nil, nil
		},
	}
	mv := newMaintenancesView(svc, technician)

	_, err := mv.Advance(context.Background(), maintenance("a", "s3"))
	if !errors.Is(err, views.ErrNoNextState) {
		t.Fatalf("expected ErrNoNextState, got %v", err)
	}
}

func TestMaintenancesView_Advance_ConcurrentTypes(t *testing.T) {
	states := &api.MockTypeMaintenanceStateService{
		ListByTypeFunc: func(ctx context.Context, typeID string) ([]api.TypeMaintenanceState, error) {
			runtime.Gosched()
			if typeID == "t2" {
				return []api.TypeMaintenanceState{link("x1", "Queued", 1), link("x2", "Fitted", 2)}, nil
			}
			return []api.TypeMaintenanceState{link("s1", "Scheduled", 1), link("s2", "Running", 2), link("s3", "Done", 3)}, nil
		},
	}

	var mu sync.Mutex
	moves := map[string][]string{}
	svc := &api.MockMaintenanceService{
		UpdateStateFunc: func(ctx context.Context, id string, r api.StateChangeRequest) (*api.Maintenance, error) {
			mu.Lock()
			moves[id] = append(moves[id], r.StateID)
			mu.Unlock()
			m := maintenance(id, r.StateID)
			return &m, nil
		},
	}
	mv := views.NewMaintenancesView(views.MaintenancesViewParams{
		Service:    svc,
		TypeStates: states,
		Viewer:     technician,
	})

	done := maintenance("done", "s3")
	fitting := maintenance("fitting", "x1")
	fitting.Type = api.RefTo[api.MaintenanceType]("t2")

	const rounds = 100
	var wg sync.WaitGroup
	errs := make(chan error, rounds)
	for range rounds {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := mv.Advance(context.Background(), done); !errors.Is(err, views.ErrNoNextState) {
				errs <- fmt.Errorf("completed maintenance advanced: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			next, err := mv.Advance(context.Background(), fitting)
			if err != nil || next.ID != "x2" {
				errs <- fmt.Errorf("expected move to x2, got %q: %v", next.ID, err)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	if got := moves["done"]; len(got) != 0 {
		t.Errorf("expected no state change for the completed maintenance, got %v", got)
	}
	for _, id := range moves["fitting"] {
		if id != "x2" {
			t.Errorf("state %s sent outside the t2 workflow", id)
		}
	}
}

func TestMaintenancesView_Advance_WorkflowLoadError(t *testing.T) {
	mv := views.NewMaintenancesView(views.MaintenancesViewParams{
		Service: &api.MockMaintenanceService{},
		TypeStates: &api.MockTypeMaintenanceStateService{
			ListByTypeFunc: func(ctx context.Context, typeID string) ([]api.TypeMaintenanceState, error) {
				return nil, errors.New("503")
			},
		},
		Viewer: technician,
	})

	if _, err := mv.Advance(context.Background(), maintenance("a", "s1")); err == nil {
		t.Fatal("expected error when the workflow cannot be loaded")
	}
}

func TestMaintenancesView_Complete(t *testing.T) {
	var got api.CompleteRequest
	svc := &api.MockMaintenanceService{
		CompleteFunc: func(ctx context.Context, id string, r api.CompleteRequest) error {
			got = r
			return nil
		},
	}
	mv := newMaintenancesView(svc, technician)

	m := maintenance("a", "s2")
	hours := 2.5
	m.WorkHours = &hours
	m.Observations = "belt replaced"
	if err := mv.Complete(context.Background(), m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.WorkHours != 2.5 || got.Observations != "belt replaced" {
		t.Errorf("unexpected request %+v", got)
	}

	m.IsCompleted = true
	if err := mv.Complete(context.Background(), m); !errors.Is(err, views.ErrAlreadyCompleted) {
		t.Errorf("expected ErrAlreadyCompleted, got %v", err)
	}
}

func TestMaintenancesView_Workflow(t *testing.T) {
	mv := newMaintenancesView(&api.MockMaintenanceService{}, technician)

	opts, err := mv.Workflow(context.Background(), maintenance("a", "s2"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := views.FormatWorkflow(opts); got != "Scheduled > [Running] > Done" {
		t.Errorf("unexpected workflow %q", got)
	}

	opts, _ = mv.Workflow(context.Background(), maintenance("a", "s3"))
	if got := views.FormatWorkflow(opts); got != "~Scheduled~ > ~Running~ > [Done]" {
		t.Errorf("unexpected terminal workflow %q", got)
	}
}

func TestFormatWorkflow_Empty(t *testing.T) {
	if got := views.FormatWorkflow([]workflow.Option{}); got != "no workflow configured" {
		t.Errorf("unexpected %q", got)
	}
}

func TestMaintenancesView_HandleEvent_PostsActionDone(t *testing.T) {
	svc := &api.MockMaintenanceService{
		ListByTechnicianFunc: func(ctx context.Context, id string) ([]api.Maintenance, error) {
			return []api.Maintenance{maintenance("a", "s1")}, nil
		},
		UpdateStateFunc: func(ctx context.Context, id string, r api.StateChangeRequest) (*api.Maintenance, error) {
			m := maintenance(id, r.StateID)
			return &m, nil
		},
	}

	var mu sync.Mutex
	var got []views.ActionDone
	done := make(chan struct{}, 1)
	mv := views.NewMaintenancesView(views.MaintenancesViewParams{
		Service:    svc,
		TypeStates: typeStates(),
		Viewer:     technician,
		PostEvent: func(ev vaxis.Event) {
			if ad, ok := ev.(views.ActionDone); ok {
				mu.Lock()
				got = append(got, ad)
				mu.Unlock()
				done <- struct{}{}
			}
		},
	})
	_ = mv.Load(context.Background())

	cmd, err := mv.HandleEvent(vaxis.Key{Keycode: 'a'}, vxfw.EventPhase(0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd == nil {
		t.Fatal("expected a command for the advance key")
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for ActionDone")
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0].Err != nil {
		t.Fatalf("unexpected action error: %v", got[0].Err)
	}
	if got[0].Message != "Press 400 P-1 moved to Running" {
		t.Errorf("unexpected message %q", got[0].Message)
	}
}

func TestMaintenancesView_HandleEvent_PendingToggle(t *testing.T) {
	mv := newMaintenancesView(&api.MockMaintenanceService{}, fakeViewer{role: api.RoleAdmin})
	_ = mv.Load(context.Background())

	if _, err := mv.HandleEvent(vaxis.Key{Keycode: 'p'}, vxfw.EventPhase(0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mv.PendingOnly() {
		t.Error("expected pending-only after 'p'")
	}
}

func TestMaintenancesView_Draw(t *testing.T) {
	svc := &api.MockMaintenanceService{
		ListFunc: func(ctx context.Context) ([]api.Maintenance, error) {
			done := maintenance("b", "s3")
			done.IsCompleted = true
			return []api.Maintenance{maintenance("a", ""), done}, nil
		},
	}
	mv := newMaintenancesView(svc, fakeViewer{role: api.RoleAdmin})

	if _, err := mv.Draw(vxtest.DrawContext(100, 10)); err != nil {
		t.Fatalf("unexpected error drawing loading state: %v", err)
	}

	_ = mv.Load(context.Background())
	mv.SetStatus("complete Press 400 P-1", errors.New("400 Bad Request"))
	if msg, isErr := mv.Status(); !isErr || msg != "complete Press 400 P-1: 400 Bad Request" {
		t.Errorf("unexpected status %q (error=%v)", msg, isErr)
	}

	s, err := mv.Draw(vxtest.DrawContext(100, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Size.Width != 100 || s.Size.Height != 10 {
		t.Errorf("unexpected surface size %dx%d", s.Size.Width, s.Size.Height)
	}
}
