package flowr

import (
	"context"

	flowrepo "github.com/cltrudeau/flowr/internal/adapters/repository/flows"
	"github.com/cltrudeau/flowr/internal/adapters/repository/memory"
	"github.com/cltrudeau/flowr/internal/app/dto"
	"github.com/cltrudeau/flowr/internal/app/loader"
	"github.com/cltrudeau/flowr/internal/app/services"
	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/rule"
	"github.com/cltrudeau/flowr/internal/core/snapshot"
	"github.com/cltrudeau/flowr/internal/core/state"
)

// Re-export core types for convenience
type (
	Rule     = rule.Node
	RuleSet  = rule.RuleSet
	Registry = rule.Registry
	Hooks    = rule.Hooks
	Context  = rule.Context
	Flow     = flow.Flow
	FlowNode = flow.Node
	State    = state.State
	Snapshot = snapshot.Snapshot
)

// Start options re-exported from the state package.
var (
	WithRoots             = state.WithRoots
	WithNoImmediateRepeat = state.WithNoImmediateRepeat
)

// Runtime bundles a rule set registry, a flow repository, a state service,
// and a snapshot store behind one handle. The default runtime is entirely
// in-memory.
type Runtime struct {
	sets   *rule.Sets
	flows  *flowrepo.InMemoryFlowRepository
	states *services.StateService
	store  snapshot.Store
}

// NewRuntime constructs a runtime with in-memory components.
func NewRuntime() *Runtime {
	store := memory.NewSnapshotStore(nil)
	return &Runtime{
		sets:   rule.NewSets(),
		flows:  flowrepo.NewInMemoryFlowRepository(),
		states: services.NewStateService(store),
		store:  store,
	}
}

// NewRuntimeWithStore constructs a runtime persisting snapshots to store.
func NewRuntimeWithStore(store snapshot.Store) *Runtime {
	return &Runtime{
		sets:   rule.NewSets(),
		flows:  flowrepo.NewInMemoryFlowRepository(),
		states: services.NewStateService(store),
		store:  store,
	}
}

// Sets exposes the rule set registry.
func (rt *Runtime) Sets() *rule.Sets { return rt.sets }

// NewRegistry returns a fresh rule registry to define a rule graph in.
func (rt *Runtime) NewRegistry() *rule.Registry { return rule.NewRegistry() }

// NewRuleSet finalizes reg if needed and registers a named rule set rooted
// at root.
func (rt *Runtime) NewRuleSet(name string, root *rule.Node, reg *rule.Registry) (*rule.RuleSet, error) {
	if err := reg.Finalize(); err != nil {
		return nil, err
	}
	return rt.sets.New(name, root, reg)
}

// LoadRuleSet reads a YAML rule set definition, attaching hooks by label.
func (rt *Runtime) LoadRuleSet(data []byte, hooks map[string]rule.Hooks) (*rule.RuleSet, error) {
	return loader.RuleSetFromYAML(data, rt.sets, hooks)
}

// NewFlow creates an empty flow governed by the named rule set.
func (rt *Runtime) NewFlow(ruleSet string) (*flow.Flow, error) {
	rs, err := rt.sets.Get(ruleSet)
	if err != nil {
		return nil, err
	}
	return flow.New(rs), nil
}

// SaveFlow validates and registers a composed flow.
func (rt *Runtime) SaveFlow(ctx context.Context, f *flow.Flow) error {
	return rt.flows.Save(ctx, f)
}

// GetFlow retrieves a registered flow by ID.
func (rt *Runtime) GetFlow(ctx context.Context, id string) (*flow.Flow, error) {
	return rt.flows.Get(ctx, id)
}

// Start begins a traversal of f, freezing it.
func (rt *Runtime) Start(f *flow.Flow, opts ...state.Option) (*state.State, error) {
	return rt.states.Start(f, opts...)
}

// GetState returns a running traversal by ID.
func (rt *Runtime) GetState(id string) (*state.State, error) {
	return rt.states.Get(id)
}

// TakeSnapshot persists the current position of a running traversal.
func (rt *Runtime) TakeSnapshot(ctx context.Context, stateID string) (*snapshot.Snapshot, error) {
	return rt.states.Snapshot(ctx, stateID)
}

// Resume rehydrates a traversal from a persisted snapshot.
func (rt *Runtime) Resume(ctx context.Context, snapshotID string, f *flow.Flow, opts ...state.Option) (*state.State, error) {
	return rt.states.Resume(ctx, snapshotID, f, opts...)
}

// ExportFlow returns the plain record form of a flow for persistence.
func (rt *Runtime) ExportFlow(f *flow.Flow) dto.FlowRecord {
	return dto.FlowToRecord(f)
}

// ImportFlow rebuilds a flow from its record and registers it.
func (rt *Runtime) ImportFlow(ctx context.Context, rec dto.FlowRecord) (*flow.Flow, error) {
	f, err := dto.FlowFromRecord(rt.sets, rec)
	if err != nil {
		return nil, err
	}
	if err := rt.flows.Save(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}
