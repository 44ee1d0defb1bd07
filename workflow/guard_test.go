package workflow_test

import (
	"context"
	"errors"
	"testing"

	"github.com/deevus/maintenance-tui/api"
	"github.com/deevus/maintenance-tui/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func link(stateID, name string, order int, active bool) api.TypeMaintenanceState {
	return api.TypeMaintenanceState{
		ID:       "tms-" + stateID,
		State:    api.Populated(stateID, api.State{ID: stateID, Name: name, IsActive: true}),
		Order:    order,
		IsActive: active,
	}
}

func threeStep() []workflow.State {
	return []workflow.State{
		{ID: "A", Name: "Scheduled", Order: 1, IsActive: true},
		{ID: "B", Name: "In progress", Order: 2, IsActive: true},
		{ID: "C", Name: "Done", Order: 3, IsActive: true},
	}
}

func guardWith(states []workflow.State, current string) *workflow.Guard {
	g := workflow.NewGuard(&api.MockTypeMaintenanceStateService{})
	g.Replace(states)
	g.SetCurrent(current)
	return g
}

func TestGuard_Load_FiltersAndSorts(t *testing.T) {
	svc := &api.MockTypeMaintenanceStateService{
		ListByTypeFunc: func(ctx context.Context, typeID string) ([]api.TypeMaintenanceState, error) {
			assert.Equal(t, "preventive", typeID)
			return []api.TypeMaintenanceState{
				link("C", "Done", 3, true),
				link("X", "Retired", 0, false),
				link("A", "Scheduled", 1, true),
				link("B", "In progress", 2, true),
			}, nil
		},
	}

	g := workflow.NewGuard(svc)
	require.NoError(t, g.Load(context.Background(), "preventive"))

	var ids []string
	for _, s := range g.States() {
		ids = append(ids, s.ID)
	}
	assert.Equal(t, []string{"A", "B", "C"}, ids)
	assert.Equal(t, "In progress", g.States()[1].Name)
	assert.Equal(t, "preventive", g.TypeID())
}

func TestGuard_Load_ErrorLeavesNoStates(t *testing.T) {
	calls := 0
	svc := &api.MockTypeMaintenanceStateService{
		ListByTypeFunc: func(ctx context.Context, typeID string) ([]api.TypeMaintenanceState, error) {
			calls++
			if calls == 1 {
				return []api.TypeMaintenanceState{link("A", "Scheduled", 1, true)}, nil
			}
			return nil, errors.New("network down")
		},
	}

	g := workflow.NewGuard(svc)
	require.NoError(t, g.Load(context.Background(), "t1"))
	require.Len(t, g.States(), 1)

	err := g.Load(context.Background(), "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
	assert.Empty(t, g.States())
	assert.False(t, g.CanTransitionTo("A", api.RoleAdmin))
}

func TestGuard_TerminalBlocksNonPrivileged(t *testing.T) {
	g := guardWith(threeStep(), "C")
	assert.True(t, g.IsTerminal())

	for _, role := range []api.Role{api.RoleTechnician, api.RoleCoordinator} {
		assert.False(t, g.CanTransitionTo("A", role), role)
		assert.False(t, g.CanTransitionTo("B", role), role)
	}
	assert.True(t, g.CanTransitionTo("A", api.RoleAdmin))
	assert.True(t, g.CanTransitionTo("B", api.RoleAdmin))
}

func TestGuard_PermissiveUntilTerminal(t *testing.T) {
	g := guardWith(threeStep(), "B")
	assert.False(t, g.IsTerminal())
	assert.True(t, g.CanTransitionTo("A", api.RoleTechnician))
	assert.True(t, g.CanTransitionTo("C", api.RoleTechnician))
}

func TestGuard_NoCurrentStateAllowsAnything(t *testing.T) {
	g := guardWith(threeStep(), "")
	assert.False(t, g.IsTerminal())
	for _, role := range []api.Role{api.RoleAdmin, api.RoleCoordinator, api.RoleTechnician, ""} {
		for _, id := range []string{"A", "B", "C"} {
			assert.True(t, g.CanTransitionTo(id, role), "%s -> %s", role, id)
		}
	}
	assert.Equal(t, workflow.NoStateName, g.CurrentName())
}

func TestGuard_UnknownCurrentState(t *testing.T) {
	g := guardWith(threeStep(), "gone")
	assert.Equal(t, workflow.UnknownStateName, g.CurrentName())
	assert.False(t, g.IsTerminal())
	assert.False(t, g.CanTransitionTo("A", api.RoleTechnician))
	assert.True(t, g.CanTransitionTo("A", api.RoleAdmin))
}

func TestGuard_CandidateOutsideWorkflow(t *testing.T) {
	g := guardWith(threeStep(), "")
	assert.False(t, g.CanTransitionTo("Z", api.RoleAdmin))
	assert.False(t, g.CanTransitionTo("", api.RoleTechnician))
}

func TestGuard_TiedMaxOrderAreAllTerminal(t *testing.T) {
	states := append(threeStep(), workflow.State{ID: "D", Name: "Cancelled", Order: 3, IsActive: true})
	for _, id := range []string{"C", "D"} {
		g := guardWith(states, id)
		assert.True(t, g.IsTerminal(), id)
		assert.False(t, g.CanTransitionTo("A", api.RoleTechnician), id)
	}
}

func TestGuard_DisplayHelpers(t *testing.T) {
	g := guardWith(threeStep(), "B")
	assert.Equal(t, "In progress", g.CurrentName())
	assert.Equal(t, 1, g.Position("A"))
	assert.Equal(t, 3, g.Position("C"))
	assert.Equal(t, 0, g.Position("Z"))

	cur, ok := g.Current()
	require.True(t, ok)
	assert.Equal(t, 2, cur.Order)
}

func TestGuard_Options(t *testing.T) {
	g := guardWith(threeStep(), "C")
	opts := g.Options(api.RoleTechnician)
	require.Len(t, opts, 3)
	for _, o := range opts {
		assert.False(t, o.Enabled, o.ID)
	}
	assert.True(t, opts[2].Current)

	for _, o := range g.Options(api.RoleAdmin) {
		assert.True(t, o.Enabled, o.ID)
	}
}

func TestGuard_Next(t *testing.T) {
	g := guardWith(threeStep(), "")
	next, ok := g.Next(api.RoleTechnician)
	require.True(t, ok)
	assert.Equal(t, "A", next.ID)

	g.SetCurrent("A")
	next, ok = g.Next(api.RoleTechnician)
	require.True(t, ok)
	assert.Equal(t, "B", next.ID)

	g.SetCurrent("C")
	_, ok = g.Next(api.RoleTechnician)
	assert.False(t, ok)
	_, ok = g.Next(api.RoleAdmin)
	assert.False(t, ok, "nothing comes after the terminal state")
}

func TestGuard_Apply(t *testing.T) {
	var got api.StateChangeRequest
	svc := &api.MockMaintenanceService{
		UpdateStateFunc: func(ctx context.Context, id string, req api.StateChangeRequest) (*api.Maintenance, error) {
			assert.Equal(t, "m1", id)
			got = req
			return &api.Maintenance{ID: id, CurrentState: api.RefTo[api.State](req.StateID)}, nil
		},
	}

	g := guardWith(threeStep(), "A")
	m, err := g.Apply(context.Background(), svc, "m1", "B", "oil changed", api.RoleTechnician)
	require.NoError(t, err)
	assert.Equal(t, "B", m.CurrentState.ID())
	assert.Equal(t, api.StateChangeRequest{StateID: "B", Observations: "oil changed"}, got)
	assert.Equal(t, "B", g.CurrentID())
}

func TestGuard_ApplyRejected(t *testing.T) {
	svc := &api.MockMaintenanceService{
		UpdateStateFunc: func(ctx context.Context, id string, req api.StateChangeRequest) (*api.Maintenance, error) {
			t.Fatal("backend must not be called")
			return nil, nil
		},
	}

	g := guardWith(threeStep(), "C")
	_, err := g.Apply(context.Background(), svc, "m1", "A", "", api.RoleTechnician)
	assert.ErrorIs(t, err, workflow.ErrTransitionNotAllowed)

	_, err = g.Apply(context.Background(), svc, "m1", "Z", "", api.RoleAdmin)
	assert.ErrorIs(t, err, workflow.ErrUnknownState)
	assert.Equal(t, "C", g.CurrentID())
}

func TestGuard_ApplyBackendError(t *testing.T) {
	svc := &api.MockMaintenanceService{
		UpdateStateFunc: func(ctx context.Context, id string, req api.StateChangeRequest) (*api.Maintenance, error) {
			return nil, &api.Error{StatusCode: 400, Message: "observations required"}
		},
	}

	g := guardWith(threeStep(), "A")
	_, err := g.Apply(context.Background(), svc, "m1", "B", "", api.RoleCoordinator)
	require.Error(t, err)
	assert.True(t, api.IsValidation(err))
	assert.Equal(t, "A", g.CurrentID())
}

func TestFromTypeStates_UsesStateID(t *testing.T) {
	states := workflow.FromTypeStates([]api.TypeMaintenanceState{
		{ID: "link-1", State: api.RefTo[api.State]("s1"), Order: 4, IsActive: true},
	})
	require.Len(t, states, 1)
	assert.Equal(t, workflow.State{ID: "s1", Order: 4, IsActive: true}, states[0])
}
