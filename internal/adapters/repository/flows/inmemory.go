// Package flowrepo provides an in-memory registry of flows keyed by ID, used
// by the server and facade to hand composed flows to traversals and the
// visualization surface.
package flowrepo

import (
	"context"
	"fmt"
	"sync"

	"github.com/cltrudeau/flowr/internal/core/flow"
)

// ErrFlowNotFound is returned when a flow ID is not registered.
var ErrFlowNotFound = fmt.Errorf("flow not found")

// InMemoryFlowRepository stores live flows. Flows are engine objects, not
// records: the repository shares them rather than copying, relying on the
// freeze semantics for safety once execution starts.
type InMemoryFlowRepository struct {
	mu    sync.RWMutex
	flows map[string]*flow.Flow
}

func NewInMemoryFlowRepository() *InMemoryFlowRepository {
	return &InMemoryFlowRepository{
		flows: make(map[string]*flow.Flow),
	}
}

// Save registers a flow after structural validation.
func (r *InMemoryFlowRepository) Save(ctx context.Context, f *flow.Flow) error {
	if violations := f.Validate(); len(violations) > 0 {
		return fmt.Errorf("invalid flow %q: %s", f.ID(), violations[0])
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flows[f.ID()] = f
	return nil
}

// Get retrieves a flow by ID.
func (r *InMemoryFlowRepository) Get(ctx context.Context, id string) (*flow.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.flows[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFlowNotFound, id)
	}
	return f, nil
}

// List returns every registered flow.
func (r *InMemoryFlowRepository) List(ctx context.Context) ([]*flow.Flow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*flow.Flow, 0, len(r.flows))
	for _, f := range r.flows {
		out = append(out, f)
	}
	return out, nil
}
