package engine

import (
	"fmt"
	"slices"
	"sort"

	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/node"
)

// Schedule is the evaluation order of one board. It is computed once and
// reused unchanged for every tick.
type Schedule struct {
	// Order lists node ids in evaluation order.
	Order []ir.NodeID

	// Deferred lists wires that impose no same-tick ordering because their
	// source is sequential. Feedback through a delay shows up here.
	Deferred []ir.Wire

	positions []int // board insertion indices, parallel to Order
}

// BuildSchedule resolves node types, checks node ids, arity and port
// references, and orders the board. It does not check boundary indices;
// Compile does.
func BuildSchedule(b *ir.Board, reg *node.Registry) (*Schedule, error) {
	defs, err := resolve(b, reg)
	if err != nil {
		return nil, err
	}
	if err := checkNodes(b, defs); err != nil {
		return nil, err
	}
	if err := checkReferences(b, defs); err != nil {
		return nil, err
	}
	return order(b, defs)
}

// resolve looks up every node's definition, in insertion order.
func resolve(b *ir.Board, reg *node.Registry) ([]*node.Definition, error) {
	defs := make([]*node.Definition, len(b.Nodes))
	for i, n := range b.Nodes {
		def, ok := reg.Lookup(n.Type)
		if !ok {
			return nil, NewUnknownTypeError(n.ID, n.Type)
		}
		defs[i] = def
	}
	return defs, nil
}

// checkNodes rejects reused ids and port counts the type cannot evaluate.
func checkNodes(b *ir.Board, defs []*node.Definition) error {
	seen := make(map[ir.NodeID]bool, len(b.Nodes))
	for i, n := range b.Nodes {
		if seen[n.ID] {
			return NewDuplicateNodeError(n.ID)
		}
		seen[n.ID] = true

		def := defs[i]
		if err := checkArity(n, ir.SideInput, n.InputCount, len(def.Inputs), def.VariadicInputs); err != nil {
			return err
		}
		if err := checkArity(n, ir.SideOutput, n.OutputCount, len(def.Outputs), def.VariadicOutputs); err != nil {
			return err
		}
	}
	return nil
}

// checkArity accepts zero (the declared count), at least the declared count
// for variadic sides, and exactly the declared count otherwise.
func checkArity(n *ir.NodeInstance, side ir.Side, requested, declared int, variadic bool) error {
	switch {
	case requested <= 0:
		return nil
	case requested < declared:
		return NewArityError(n.ID, n.Type,
			fmt.Sprintf("type %q needs %d %s ports, got %d", n.Type, declared, side, requested))
	case !variadic && requested != declared:
		return NewArityError(n.ID, n.Type,
			fmt.Sprintf("type %q has exactly %d %s ports, got %d", n.Type, declared, side, requested))
	}
	return nil
}

// nodeIndex maps ids to insertion positions. The first occurrence of a
// duplicated id wins.
func nodeIndex(b *ir.Board) map[ir.NodeID]int {
	idx := make(map[ir.NodeID]int, len(b.Nodes))
	for i, n := range b.Nodes {
		if _, seen := idx[n.ID]; !seen {
			idx[n.ID] = i
		}
	}
	return idx
}

// checkReferences validates every wire endpoint and constant key.
func checkReferences(b *ir.Board, defs []*node.Definition) error {
	idx := nodeIndex(b)

	portCount := func(ref ir.PortRef) (int, bool) {
		i, ok := idx[ref.NodeID]
		if !ok {
			return 0, false
		}
		n := b.Nodes[i]
		if ref.Side == ir.SideOutput {
			return defs[i].OutputCount(n.OutputCount), true
		}
		return defs[i].InputCount(n.InputCount), true
	}

	check := func(w ir.Wire, ref ir.PortRef, side ir.Side) error {
		if ref.Side != side {
			return NewWirePortError(w.ID, ref, fmt.Sprintf("wire endpoint must be an %s port", side))
		}
		count, ok := portCount(ref)
		if !ok {
			return NewWirePortError(w.ID, ref, fmt.Sprintf("wire references unknown node %q", ref.NodeID))
		}
		if ref.Port < 0 || ref.Port >= count {
			return NewWirePortError(w.ID, ref,
				fmt.Sprintf("%s port %d out of range (node has %d)", side, ref.Port, count))
		}
		return nil
	}

	for _, w := range b.Wires {
		if err := check(w, w.Source, ir.SideOutput); err != nil {
			return err
		}
		if err := check(w, w.Target, ir.SideInput); err != nil {
			return err
		}
	}

	// Sorted keys keep the reported error stable when several are bad.
	keys := make([]string, 0, len(b.Constants))
	for k := range b.Constants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		id, port, err := ir.ParseConstantKey(key)
		if err != nil {
			return NewConstantPortError(key, "", 0, err.Error())
		}
		count, ok := portCount(ir.In(id, port))
		if !ok {
			return NewConstantPortError(key, id, port, fmt.Sprintf("constant references unknown node %q", id))
		}
		if port >= count {
			return NewConstantPortError(key, id, port,
				fmt.Sprintf("input port %d out of range (node has %d)", port, count))
		}
	}
	return nil
}

// checkBoundaries requires each direction's indices to be exactly 0..n-1.
func checkBoundaries(b *ir.Board) error {
	for _, nodes := range [][]*ir.NodeInstance{b.InputNodes(), b.OutputNodes()} {
		seen := make(map[int]ir.NodeID, len(nodes))
		for _, n := range nodes {
			idx, ok := n.Boundary()
			switch {
			case !ok:
				return NewBoundaryError(n.ID, "boundary index not assigned (see ir.AssignBoundaryIndices)")
			case idx < 0 || idx >= len(nodes):
				return NewBoundaryError(n.ID,
					fmt.Sprintf("boundary index %d out of range [0,%d)", idx, len(nodes)))
			}
			if other, dup := seen[idx]; dup {
				return NewBoundaryError(n.ID,
					fmt.Sprintf("boundary index %d already used by %q", idx, other))
			}
			seen[idx] = n.ID
		}
	}
	return nil
}

// order runs Kahn's algorithm over the same-tick dependency graph.
func order(b *ir.Board, defs []*node.Definition) (*Schedule, error) {
	idx := nodeIndex(b)
	n := len(b.Nodes)
	indegree := make([]int, n)
	succ := make([][]int, n)

	s := &Schedule{}
	for _, w := range b.Wires {
		src := idx[w.Source.NodeID]
		dst := idx[w.Target.NodeID]
		if defs[src].Kind == node.Sequential {
			s.Deferred = append(s.Deferred, w)
			continue
		}
		succ[src] = append(succ[src], dst)
		indegree[dst]++
	}

	// ready stays sorted by insertion index so ties resolve deterministically.
	var ready []int
	for i := 0; i < n; i++ {
		if indegree[i] == 0 && idx[b.Nodes[i].ID] == i {
			ready = append(ready, i)
		}
	}

	for len(ready) > 0 {
		cur := ready[0]
		ready = ready[1:]
		s.positions = append(s.positions, cur)
		s.Order = append(s.Order, b.Nodes[cur].ID)

		for _, next := range succ[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				at, _ := slices.BinarySearch(ready, next)
				ready = slices.Insert(ready, at, next)
			}
		}
	}

	if len(s.positions) < len(idx) {
		var unresolved []int
		for i := 0; i < n; i++ {
			if indegree[i] > 0 {
				unresolved = append(unresolved, i)
			}
		}
		return nil, NewCycleError(idsOf(b, unresolved), findLoops(b, succ, unresolved))
	}

	return s, nil
}

func idsOf(b *ir.Board, positions []int) []ir.NodeID {
	ids := make([]ir.NodeID, len(positions))
	for i, p := range positions {
		ids[i] = b.Nodes[p].ID
	}
	return ids
}
