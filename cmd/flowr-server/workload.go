package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/cltrudeau/flowr/internal/core/flow"
	"github.com/cltrudeau/flowr/internal/core/rule"
)

// workload holds a lazily-built rule set and flow used to generate traversal
// metrics on demand.
type workload struct {
	once  sync.Once
	err   error
	flow  *flow.Flow
	nodes map[string]*flow.Node
}

var wl workload

func (s *server) workloadFlow() (*flow.Flow, map[string]*flow.Node, error) {
	wl.once.Do(func() {
		reg := rule.NewRegistry()
		defs := []struct {
			label    string
			children []string
			fork     bool
		}{
			{"start", []string{"branch"}, false},
			{"branch", []string{"left", "right"}, true},
			{"left", nil, false},
			{"right", []string{"start"}, false},
		}
		var root *rule.Node
		for _, d := range defs {
			n, err := reg.Define(d.label, d.children, d.fork, rule.Hooks{})
			if err != nil {
				wl.err = err
				return
			}
			if d.label == "start" {
				root = n
			}
		}
		if wl.err = reg.Finalize(); wl.err != nil {
			return
		}
		rs, err := s.sets.New("workload", root, reg)
		if err != nil {
			wl.err = err
			return
		}

		f := flow.New(rs)
		wl.nodes = make(map[string]*flow.Node, 4)
		for i, d := range defs {
			n, ok := reg.Node(d.label)
			if !ok {
				wl.err = fmt.Errorf("workload rule %q missing", d.label)
				return
			}
			fn, err := f.AddNode(n, i == 0)
			if err != nil {
				wl.err = err
				return
			}
			wl.nodes[d.label] = fn
		}
		edges := [][2]string{
			{"start", "branch"},
			{"branch", "left"},
			{"branch", "right"},
			{"right", "start"},
		}
		for _, e := range edges {
			if err := f.AddEdge(wl.nodes[e[0]], wl.nodes[e[1]]); err != nil {
				wl.err = err
				return
			}
		}
		if wl.err = s.flows.Save(context.Background(), f); wl.err == nil {
			wl.flow = f
		}
	})
	return wl.flow, wl.nodes, wl.err
}

// traverseWorkload runs count traversals through the workload flow, taking a
// snapshot of each, to exercise the engine and populate /metrics.
func (s *server) traverseWorkload(w http.ResponseWriter, r *http.Request) {
	count := 1
	if v := r.URL.Query().Get("count"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			count = n
		}
	}

	f, nodes, err := s.workloadFlow()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	for i := 0; i < count; i++ {
		st, err := s.states.Start(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		steps := []struct{ from, to *flow.Node }{
			{nodes["start"], nodes["branch"]},
			{nodes["branch"], nodes["left"]},
			{nodes["branch"], nodes["right"]},
		}
		for _, step := range steps {
			if err := st.Advance(step.from, step.to); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		if _, err := s.states.Snapshot(r.Context(), st.ID()); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		for _, label := range []string{"left", "right"} {
			if err := st.Prune(nodes[label]); err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		s.states.Remove(st.ID())
	}

	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "ran %d traversals\n", count)
}
