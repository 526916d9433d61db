// Package main provides the flowr CLI application
package main

import (
	"fmt"
	"os"

	"github.com/cltrudeau/flowr/internal/core/rule"
	"github.com/cltrudeau/flowr/pkg/flowr"
)

// Version information set during build
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("flowr %s (commit: %s, built: %s)\n", Version, Commit, BuildTime)
		return
	}

	if err := runDemo(); err != nil {
		fmt.Fprintf(os.Stderr, "demo failed: %v\n", err)
		os.Exit(1)
	}
}

// runDemo defines a small rule graph with a fork and a loop, composes a flow
// against it, and walks a traversal through the fork while printing each hook
// invocation.
func runDemo() error {
	rt := flowr.NewRuntime()

	announce := func(note string) rule.Hooks {
		return rule.Hooks{
			OnEnter: func(ctx rule.Context) error {
				fmt.Printf("  enter %-2s at %s (%s)\n", ctx.RuleLabel(), ctx.PositionID(), note)
				return nil
			},
		}
	}

	reg := rt.NewRegistry()
	root, err := reg.Define("A", []string{"B", "C"}, false, announce("pick a branch"))
	if err != nil {
		return err
	}
	if _, err := reg.Define("B", nil, false, announce("terminal")); err != nil {
		return err
	}
	if _, err := reg.Define("C", []string{"D", "E"}, true, announce("forks to both children")); err != nil {
		return err
	}
	if _, err := reg.Define("D", nil, false, announce("terminal")); err != nil {
		return err
	}
	if _, err := reg.Define("E", []string{"A"}, false, announce("loops back to A")); err != nil {
		return err
	}
	if _, err := rt.NewRuleSet("demo", root, reg); err != nil {
		return err
	}

	f, err := rt.NewFlow("demo")
	if err != nil {
		return err
	}
	ruleNode := func(label string) *rule.Node {
		n, ok := reg.Node(label)
		if !ok {
			panic("undefined rule " + label)
		}
		return n
	}
	a, err := f.AddNode(ruleNode("A"), true)
	if err != nil {
		return err
	}
	c, _ := f.AddNode(ruleNode("C"), false)
	d, _ := f.AddNode(ruleNode("D"), false)
	e, _ := f.AddNode(ruleNode("E"), false)
	for _, edge := range [][2]*flowr.FlowNode{{a, c}, {c, d}, {c, e}, {e, a}} {
		if err := f.AddEdge(edge[0], edge[1]); err != nil {
			return err
		}
	}

	fmt.Println("starting traversal:")
	st, err := rt.Start(f)
	if err != nil {
		return err
	}

	fmt.Println("advancing A -> C:")
	if err := st.Advance(a, c); err != nil {
		return err
	}
	fmt.Println("forking C -> D and C -> E:")
	if err := st.Advance(c, d); err != nil {
		return err
	}
	if err := st.Advance(c, e); err != nil {
		return err
	}
	fmt.Println("looping E -> A, pruning D:")
	if err := st.Advance(e, a); err != nil {
		return err
	}
	if err := st.Prune(d); err != nil {
		return err
	}

	fmt.Println("history:")
	for _, h := range st.History() {
		fmt.Printf("  %-5s %s (%s)\n", h.Kind, h.Node.ID(), h.Node.Rule().Label())
	}
	fmt.Printf("active positions: %d, complete: %v\n", len(st.Positions()), st.IsComplete())
	return nil
}
