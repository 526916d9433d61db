package graphutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// adjacency for a small cyclic graph:
// 1 -> 2, 3; 3 -> 4, 5; 5 -> 1 (loop); 6 is disconnected.
var edges = map[int][]int{
	1: {2, 3},
	3: {4, 5},
	5: {1},
}

func next(n int) []int { return edges[n] }

func prev(n int) []int {
	var parents []int
	for p, children := range edges {
		for _, c := range children {
			if c == n {
				parents = append(parents, p)
			}
		}
	}
	return parents
}

func TestReachable(t *testing.T) {
	tests := []struct {
		name         string
		root, target int
		want         bool
	}{
		{"root reaches itself", 1, 1, true},
		{"direct child", 1, 2, true},
		{"through intermediate", 1, 4, true},
		{"through cycle back to root", 3, 1, true},
		{"leaf reaches nothing", 2, 4, false},
		{"disconnected node", 1, 6, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reachable(tt.root, tt.target, next))
		})
	}
}

func TestReachableSet(t *testing.T) {
	got := ReachableSet(1, next)
	assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}, got)

	// A leaf only reaches itself.
	assert.Equal(t, map[int]bool{2: true}, ReachableSet(2, next))
}

func TestDescendants(t *testing.T) {
	t.Run("node on a cycle includes itself", func(t *testing.T) {
		got := Descendants(1, next)
		assert.Equal(t, map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true}, got)
	})

	t.Run("node off any cycle excludes itself", func(t *testing.T) {
		got := Descendants(3, next)
		// 3 sits on the 1->3->5->1 cycle, so it reappears.
		assert.True(t, got[3])

		acyclic := map[int][]int{10: {11}, 11: {12}}
		got = Descendants(10, func(n int) []int { return acyclic[n] })
		assert.Equal(t, map[int]bool{11: true, 12: true}, got)
	})

	t.Run("leaf has no descendants", func(t *testing.T) {
		assert.Empty(t, Descendants(4, next))
	})
}

func TestAncestors(t *testing.T) {
	got := Ancestors(4, prev)
	// 4's parents chase back around the cycle.
	assert.Equal(t, map[int]bool{1: true, 3: true, 5: true}, got)

	assert.Empty(t, Ancestors(6, prev))
}
