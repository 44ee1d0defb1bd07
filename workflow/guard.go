// Package workflow gates maintenance state changes against the ordered
// state list configured for each maintenance type.
package workflow

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/deevus/maintenance-tui/api"
	"go.uber.org/zap"
)

var (
	// ErrTransitionNotAllowed is returned by Apply when the guard blocks
	// the requested state for the caller's role.
	ErrTransitionNotAllowed = errors.New("workflow: transition not allowed")
	// ErrUnknownState is returned by Apply when the requested state is not
	// part of the loaded workflow.
	ErrUnknownState = errors.New("workflow: state not in workflow")
)

// Display names for a maintenance with no state and one whose state is not
// in the loaded workflow.
const (
	NoStateName      = "No state"
	UnknownStateName = "Unknown"
)

// State is one step of a maintenance type's workflow.
type State struct {
	ID       string
	Name     string
	Order    int
	IsActive bool
}

// FromTypeStates converts the backend's type/state links into workflow
// states. The state id, not the link id, identifies each step.
func FromTypeStates(links []api.TypeMaintenanceState) []State {
	out := make([]State, 0, len(links))
	for _, l := range links {
		out = append(out, State{
			ID:       l.State.ID(),
			Name:     l.StateName(),
			Order:    l.Order,
			IsActive: l.IsActive,
		})
	}
	return out
}

// Option is a state as offered to the user.
type Option struct {
	State
	Current bool
	Enabled bool
}

// Guard holds the workflow for one maintenance type and the current state
// of the maintenance being edited. It is safe for concurrent use.
type Guard struct {
	svc api.TypeMaintenanceStateServiceAPI
	log *zap.SugaredLogger

	mu      sync.RWMutex
	typeID  string
	states  []State
	current string
}

// NewGuard creates a Guard that loads workflows from svc.
func NewGuard(svc api.TypeMaintenanceStateServiceAPI) *Guard {
	return &Guard{svc: svc, log: zap.S().Named("workflow")}
}

// Load fetches the workflow for typeID, keeps the active states and sorts
// them by order, replacing whatever was loaded before. On failure the guard
// is left with no states and the error is returned.
func (g *Guard) Load(ctx context.Context, typeID string) error {
	links, err := g.svc.ListByType(ctx, typeID)
	if err != nil {
		g.mu.Lock()
		g.typeID = typeID
		g.states = nil
		g.mu.Unlock()
		g.log.Errorw("loading workflow states", "type", typeID, "error", err)
		return fmt.Errorf("loading workflow for type %s: %w", typeID, err)
	}

	g.mu.Lock()
	g.typeID = typeID
	g.mu.Unlock()
	g.Replace(FromTypeStates(links))
	return nil
}

// Replace installs a workflow directly. Inactive states are dropped and the
// rest are sorted by order; equal orders keep their input order.
func (g *Guard) Replace(states []State) {
	active := make([]State, 0, len(states))
	for _, s := range states {
		if s.IsActive {
			active = append(active, s)
		}
	}
	slices.SortStableFunc(active, func(a, b State) int { return cmp.Compare(a.Order, b.Order) })

	g.mu.Lock()
	g.states = active
	g.mu.Unlock()
}

// TypeID returns the maintenance type of the last Load.
func (g *Guard) TypeID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.typeID
}

// States returns a copy of the loaded workflow in order.
func (g *Guard) States() []State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.states)
}

// SetCurrent sets the maintenance's current state id. Empty means the
// maintenance has not entered the workflow yet.
func (g *Guard) SetCurrent(id string) {
	g.mu.Lock()
	g.current = id
	g.mu.Unlock()
}

// CurrentID returns the current state id.
func (g *Guard) CurrentID() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// Current returns the current state if it is part of the workflow.
func (g *Guard) Current() (State, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	i := g.indexLocked(g.current)
	if i < 0 {
		return State{}, false
	}
	return g.states[i], true
}

// CurrentName returns the current state's name for display.
func (g *Guard) CurrentName() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.current == "" {
		return NoStateName
	}
	if i := g.indexLocked(g.current); i >= 0 {
		return g.states[i].Name
	}
	return UnknownStateName
}

// Position returns the 1-based position of id in the workflow, or 0.
func (g *Guard) Position(id string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.indexLocked(id) + 1
}

func (g *Guard) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(g.states, func(s State) bool { return s.ID == id })
}

func (g *Guard) maxOrderLocked() (int, bool) {
	if len(g.states) == 0 {
		return 0, false
	}
	return g.states[len(g.states)-1].Order, true
}

// IsTerminal reports whether the current state has the highest order in
// the workflow. Every state sharing that order counts as terminal.
func (g *Guard) IsTerminal() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.isTerminalLocked()
}

func (g *Guard) isTerminalLocked() bool {
	i := g.indexLocked(g.current)
	if i < 0 {
		return false
	}
	top, _ := g.maxOrderLocked()
	return g.states[i].Order == top
}

// CanTransitionTo reports whether role may move the maintenance to
// candidate. Administrators may always move to any state in the workflow.
// Other roles may move freely until the maintenance reaches the terminal
// state, and are blocked while the current state is unknown.
func (g *Guard) CanTransitionTo(candidate string, role api.Role) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.allowedLocked(candidate, role)
}

func (g *Guard) allowedLocked(candidate string, role api.Role) bool {
	if g.indexLocked(candidate) < 0 {
		return false
	}
	if role.Privileged() {
		return true
	}
	if g.current == "" {
		return true
	}
	if g.indexLocked(g.current) < 0 {
		return false
	}
	return !g.isTerminalLocked()
}

// Options lists every workflow state with whether role may select it.
func (g *Guard) Options(role api.Role) []Option {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Option, len(g.states))
	for i, s := range g.states {
		out[i] = Option{
			State:   s,
			Current: s.ID == g.current,
			Enabled: g.allowedLocked(s.ID, role),
		}
	}
	return out
}

// Next returns the first state after the current one that role may select.
// With no current state it is the first selectable state.
func (g *Guard) Next(role api.Role) (State, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	after := -1
	if i := g.indexLocked(g.current); i >= 0 {
		after = i
	}
	for i := after + 1; i < len(g.states); i++ {
		s := g.states[i]
		if s.ID == g.current {
			continue
		}
		if g.allowedLocked(s.ID, role) {
			return s, true
		}
	}
	return State{}, false
}

// Apply moves maintenanceID to stateID through svc if the guard allows it,
// and records stateID as current on success.
func (g *Guard) Apply(ctx context.Context, svc api.MaintenanceServiceAPI, maintenanceID, stateID, observations string, role api.Role) (*api.Maintenance, error) {
	g.mu.RLock()
	known := g.indexLocked(stateID) >= 0
	allowed := g.allowedLocked(stateID, role)
	g.mu.RUnlock()

	if !known {
		return nil, fmt.Errorf("state %s: %w", stateID, ErrUnknownState)
	}
	if !allowed {
		return nil, fmt.Errorf("%s to state %s as %s: %w", maintenanceID, stateID, role, ErrTransitionNotAllowed)
	}

	m, err := svc.UpdateState(ctx, maintenanceID, api.StateChangeRequest{
		StateID:      stateID,
		Observations: observations,
	})
	if err != nil {
		return nil, fmt.Errorf("updating state of %s: %w", maintenanceID, err)
	}

	g.SetCurrent(stateID)
	g.log.Infow("maintenance state changed", "maintenance", maintenanceID, "state", stateID, "role", role)
	return m, nil
}
