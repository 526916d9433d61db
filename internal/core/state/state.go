package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/infrastructure/metrics"
)

// HistoryKind tags a history entry as an enter or an exit.
type HistoryKind string

const (
	HistoryEnter HistoryKind = "enter"
	HistoryExit  HistoryKind = "exit"
)

// HistoryEntry is one record in a state's append-only audit trail.
type HistoryEntry struct {
	Node *flow.Node
	Kind HistoryKind
	At   time.Time
}

// State is a live traversal of a frozen flow. It may hold several active
// positions at once when fork-capable rules are in play. All mutating
// operations are serialized by an internal mutex: one State has a single
// logical writer. Distinct States share no mutable data.
type State struct {
	mu        sync.Mutex
	id        string
	flow      *flow.Flow
	positions []*flow.Node
	// activated tracks, per active fork position, which of its children have
	// been advanced to in the current fork round. The position leaves the
	// active set once every child has been activated.
	activated map[*flow.Node]map[*flow.Node]bool
	history   []HistoryEntry
	noRepeat  bool
	completed bool
}

// Option configures a traversal at start time.
type Option func(*State)

// WithRoots restricts the starting positions to a subset of the flow's start
// nodes. By default every start node becomes an initial position.
func WithRoots(roots ...*flow.Node) Option {
	return func(s *State) {
		s.positions = append([]*flow.Node(nil), roots...)
	}
}

// WithNoImmediateRepeat enables the optional node-picker policy: AllowedNext
// filters out children already entered or pruned during this traversal. The
// default permits repeats, since cycles are a first-class feature.
func WithNoImmediateRepeat() Option {
	return func(s *State) {
		s.noRepeat = true
	}
}

// WithID overrides the generated state identity. Used when rehydrating a
// persisted state.
func WithID(id string) Option {
	return func(s *State) {
		s.id = id
	}
}

// Start begins a traversal of f. It freezes the flow as a side effect and
// fires the OnEnter hook for every chosen root. If any hook fails, no state
// is created and the flow is left unfrozen.
func Start(f *flow.Flow, opts ...Option) (*State, error) {
	s := &State{
		id:        uuid.NewString(),
		flow:      f,
		activated: make(map[*flow.Node]map[*flow.Node]bool),
	}
	for _, opt := range opts {
		opt(s)
	}

	roots := f.Roots()
	if len(s.positions) == 0 {
		s.positions = roots
	}
	if len(s.positions) == 0 {
		return nil, flow.ErrNoRoots
	}
	for _, n := range s.positions {
		isRoot := false
		for _, r := range roots {
			if r == n {
				isRoot = true
				break
			}
		}
		if !isRoot {
			return nil, fmt.Errorf("%w: %q", ErrNotARoot, n.ID())
		}
	}

	for _, n := range s.positions {
		if err := n.Rule().Enter(s.hookCtx(n)); err != nil {
			metrics.IncHookFailures()
			return nil, &HookError{Op: "enter", Rule: n.Rule().Label(), Err: err}
		}
		s.history = append(s.history, HistoryEntry{Node: n, Kind: HistoryEnter, At: time.Now()})
	}

	f.Freeze()
	metrics.IncStatesStarted()
	return s, nil
}

// ID returns the state's unique identity.
func (s *State) ID() string { return s.id }

// Flow returns the flow being traversed.
func (s *State) Flow() *flow.Flow { return s.flow }

// Positions returns the currently active positions, oldest first.
func (s *State) Positions() []*flow.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*flow.Node, len(s.positions))
	copy(out, s.positions)
	return out
}

// History returns the append-only audit trail of every enter and exit.
func (s *State) History() []HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]HistoryEntry, len(s.history))
	copy(out, s.history)
	return out
}

// Advance moves one active position to one of its children, firing the exit
// hook of the position left and the enter hook of the child entered.
//
// Fork policy: when the rule under from does not allow forks, to replaces
// from as the active position. When it does, to is added alongside from's
// other already-advanced children and from itself stays active until every
// one of its children has been activated, letting the caller fork into N
// concurrent positions with N successive calls.
//
// A hook failure aborts the transition atomically: positions and history are
// exactly as they were before the call.
func (s *State) Advance(from, to *flow.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.holds(from) {
		return fmt.Errorf("%w: %q", ErrInvalidPosition, from.ID())
	}
	if !from.HasChild(to) {
		return fmt.Errorf("%w: %q -> %q", flow.ErrIllegalTransition,
			from.Rule().Label(), to.Rule().Label())
	}

	if err := from.Rule().Exit(s.hookCtx(from)); err != nil {
		metrics.IncHookFailures()
		return &HookError{Op: "exit", Rule: from.Rule().Label(), Err: err}
	}
	if err := to.Rule().Enter(s.hookCtx(to)); err != nil {
		metrics.IncHookFailures()
		return &HookError{Op: "enter", Rule: to.Rule().Label(), Err: err}
	}

	now := time.Now()
	s.history = append(s.history,
		HistoryEntry{Node: from, Kind: HistoryExit, At: now},
		HistoryEntry{Node: to, Kind: HistoryEnter, At: now},
	)

	if from.Rule().AllowsFork() {
		s.advanceFork(from, to)
	} else {
		s.replace(from, to)
		delete(s.activated, from)
	}

	metrics.IncTransitions()
	s.noteCompletion()
	return nil
}

// advanceFork records to as an activated child of from and retires from once
// every child has been activated this round.
func (s *State) advanceFork(from, to *flow.Node) {
	act := s.activated[from]
	if act == nil {
		act = make(map[*flow.Node]bool)
		s.activated[from] = act
	}
	act[to] = true

	if !s.holds(to) {
		s.positions = append(s.positions, to)
	}

	for _, c := range from.Children() {
		if !act[c] {
			return
		}
	}

	// every child is active; the fork is fully resolved
	delete(s.activated, from)
	s.remove(from)
	if act[from] {
		// from activated itself through a self-edge this round; the entered
		// position stays active regardless of which sibling resolved last
		s.positions = append(s.positions, from)
	}
	metrics.IncForks()
}

// Prune abandons an active position without advancing it, firing its exit
// hook. Used when a fork resolves and sibling branches are discarded.
func (s *State) Prune(pos *flow.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.holds(pos) {
		return fmt.Errorf("%w: %q", ErrInvalidPosition, pos.ID())
	}

	if err := pos.Rule().Exit(s.hookCtx(pos)); err != nil {
		metrics.IncHookFailures()
		return &HookError{Op: "exit", Rule: pos.Rule().Label(), Err: err}
	}

	s.history = append(s.history, HistoryEntry{Node: pos, Kind: HistoryExit, At: time.Now()})
	s.remove(pos)
	delete(s.activated, pos)

	metrics.IncPrunes()
	s.noteCompletion()
	return nil
}

// IsComplete reports whether every remaining position sits on a node with no
// children. A complete state stays addressable for inspection but can never
// advance again.
func (s *State) IsComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isCompleteLocked()
}

func (s *State) isCompleteLocked() bool {
	for _, p := range s.positions {
		if len(p.Children()) > 0 {
			return false
		}
	}
	return true
}

// AllowedNext returns the flow nodes pos may legally advance to. With the
// default policy this is exactly pos's children; under WithNoImmediateRepeat
// children already entered or exited this traversal are filtered out.
func (s *State) AllowedNext(pos *flow.Node) []*flow.Node {
	s.mu.Lock()
	defer s.mu.Unlock()

	children := pos.Children()
	if !s.noRepeat {
		return children
	}

	seen := make(map[*flow.Node]bool, len(s.history))
	for _, h := range s.history {
		seen[h.Node] = true
	}
	var out []*flow.Node
	for _, c := range children {
		if !seen[c] {
			out = append(out, c)
		}
	}
	return out
}

func (s *State) holds(n *flow.Node) bool {
	for _, p := range s.positions {
		if p == n {
			return true
		}
	}
	return false
}

func (s *State) remove(n *flow.Node) {
	for i, p := range s.positions {
		if p == n {
			s.positions = append(s.positions[:i], s.positions[i+1:]...)
			return
		}
	}
}

func (s *State) replace(from, to *flow.Node) {
	if from != to && s.holds(to) {
		// the target is already active through another branch; the branches
		// join and the source simply retires
		s.remove(from)
		return
	}
	for i, p := range s.positions {
		if p == from {
			s.positions[i] = to
			return
		}
	}
}

func (s *State) noteCompletion() {
	if !s.completed && s.isCompleteLocked() {
		s.completed = true
		metrics.IncStatesComplete()
	}
}

// hookCtx adapts a transition to the rule.Context contract.
type hookCtx struct {
	node  *flow.Node
	state *State
}

func (c hookCtx) RuleLabel() string  { return c.node.Rule().Label() }
func (c hookCtx) PositionID() string { return c.node.ID() }
func (c hookCtx) StateID() string    { return c.state.id }

func (s *State) hookCtx(n *flow.Node) hookCtx {
	return hookCtx{node: n, state: s}
}
