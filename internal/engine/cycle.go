package engine

import (
	"slices"

	"github.com/roach88/chipwire/internal/ir"
)

// findLoops returns the combinational loops among the unresolved nodes.
//
// Kahn's algorithm leaves behind every node that is in a loop or downstream
// of one. Only strongly connected components with more than one member, or
// a single member wired to itself, are actual loops; the rest are collateral.
//
// Each loop lists its members in insertion order, and loops are ordered by
// their first member, so the result is deterministic.
func findLoops(b *ir.Board, succ [][]int, unresolved []int) [][]ir.NodeID {
	inSet := make(map[int]bool, len(unresolved))
	for _, v := range unresolved {
		inSet[v] = true
	}

	var loops [][]int
	for _, scc := range tarjanSCC(succ, unresolved, inSet) {
		if len(scc) > 1 || hasSelfLoop(scc[0], succ) {
			slices.Sort(scc)
			loops = append(loops, scc)
		}
	}
	slices.SortFunc(loops, func(a, b []int) int { return a[0] - b[0] })

	out := make([][]ir.NodeID, len(loops))
	for i, loop := range loops {
		out[i] = idsOf(b, loop)
	}
	return out
}

func hasSelfLoop(v int, succ [][]int) bool {
	return slices.Contains(succ[v], v)
}

// tarjanSCC finds strongly connected components of the subgraph induced by
// nodes, visiting roots in the given order.
func tarjanSCC(succ [][]int, nodes []int, inSet map[int]bool) [][]int {
	var (
		index   = 0
		stack   []int
		indices = make(map[int]int)
		lowlink = make(map[int]int)
		onStack = make(map[int]bool)
		sccs    [][]int
	)

	var strongConnect func(int)
	strongConnect = func(v int) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range succ[v] {
			if !inSet[w] {
				continue
			}
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is a root: pop its component.
		if lowlink[v] == indices[v] {
			var scc []int
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sccs = append(sccs, scc)
		}
	}

	for _, v := range nodes {
		if _, visited := indices[v]; !visited {
			strongConnect(v)
		}
	}
	return sccs
}
