package cfg

// LoopInfo contains information about loops in a method.
type LoopInfo struct {
	loopNodes map[int]bool
	headers   []int
}

// IsInLoop returns true if node i is inside a loop.
func (l *LoopInfo) IsInLoop(i int) bool {
	return l.loopNodes[i]
}

// Headers returns the targets of back-edges in ascending order of
// discovery.
func (l *LoopInfo) Headers() []int {
	return l.headers
}

// CanReach checks if src can reach dst following normal and handler edges,
// using BFS.
//
// Example:
//
//	0: ICONST_0
//	1: ISTORE 1
//	2: L0:            ←──┐
//	3: IINC 1 1          │
//	4: GOTO L0    ───────┘
//
//	CanReach(0, 4) = true  (0 → 1 → 2 → 3 → 4)
//	CanReach(4, 2) = true  (back-edge)
//	CanReach(3, 0) = false (nothing jumps back to the entry)
func (g *Graph) CanReach(src, dst int) bool {
	if src < 0 || dst < 0 || src >= g.Len() || dst >= g.Len() {
		return false
	}
	if src == dst {
		return true
	}

	visited := make([]bool, g.Len())
	queue := []int{src}
	visited[src] = true

	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]

		for _, succ := range g.outgoing(i) {
			if succ == dst {
				return true
			}
			if !visited[succ] {
				visited[succ] = true
				queue = append(queue, succ)
			}
		}
	}
	return false
}

func (g *Graph) outgoing(i int) []int {
	if len(g.handlers[i]) == 0 {
		return g.succs[i]
	}
	out := append([]int(nil), g.succs[i]...)
	for _, h := range g.handlers[i] {
		out = append(out, h.Index)
	}
	return out
}

// DetectLoops finds loops in the method.
//
// Loop detection algorithm:
//
//  1. Find back-edges: edge A→B where B does not come after A
//  2. Verify the back-edge closes a cycle: CanReach(B, A) must be true
//  3. Mark all nodes between loop head (B) and loop tail (A) as in-loop
//
// The reachability check rejects edges that merely point backwards in
// instruction order, such as a handler placed before the code it protects
// and never jumping back.
func (g *Graph) DetectLoops() *LoopInfo {
	info := &LoopInfo{loopNodes: make(map[int]bool)}
	seen := make(map[int]bool)

	for i := 0; i < g.Len(); i++ {
		for _, succ := range g.outgoing(i) {
			if succ > i || !g.CanReach(succ, i) {
				continue
			}
			for j := succ; j <= i; j++ {
				info.loopNodes[j] = true
			}
			if !seen[succ] {
				seen[succ] = true
				info.headers = append(info.headers, succ)
			}
		}
	}
	return info
}
