// Package graphutil provides cycle-safe traversal helpers shared by the rule
// and flow graphs. Both graphs permit cycles and self-references, so every
// walk here is guarded by a visited set.
package graphutil

// Reachable reports whether target can be reached from root by following
// next. root itself is considered reachable.
func Reachable[N comparable](root, target N, next func(N) []N) bool {
	if root == target {
		return true
	}
	visited := map[N]bool{root: true}
	stack := []N{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range next(n) {
			if c == target {
				return true
			}
			if !visited[c] {
				visited[c] = true
				stack = append(stack, c)
			}
		}
	}
	return false
}

// ReachableSet returns every node reachable from root, including root.
func ReachableSet[N comparable](root N, next func(N) []N) map[N]bool {
	visited := map[N]bool{root: true}
	stack := []N{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range next(n) {
			if !visited[c] {
				visited[c] = true
				stack = append(stack, c)
			}
		}
	}
	return visited
}

// Descendants returns every node reachable from n by following next. n
// itself appears in the result only when a cycle leads back to it.
func Descendants[N comparable](n N, next func(N) []N) map[N]bool {
	visited := make(map[N]bool)
	stack := []N{}
	for _, c := range next(n) {
		if !visited[c] {
			visited[c] = true
			stack = append(stack, c)
		}
	}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range next(cur) {
			if !visited[c] {
				visited[c] = true
				stack = append(stack, c)
			}
		}
	}
	return visited
}

// Ancestors returns every node from which n can be reached. prev must return
// the direct parents of a node. As with Descendants, n is present only when
// it sits on a cycle through itself.
func Ancestors[N comparable](n N, prev func(N) []N) map[N]bool {
	return Descendants(n, prev)
}
