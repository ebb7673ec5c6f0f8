package engine

import (
	"log/slog"

	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/node"
)

// source is where an input port reads its value each tick.
type source struct {
	wired    bool
	slot     int     // index into the value buffer when wired
	constant float64 // literal (or 0) when not wired
}

func (s source) read(values []float64) float64 {
	if s.wired {
		return values[s.slot]
	}
	return s.constant
}

// step is one scheduled node with everything resolved up front, so the tick
// loop does no lookups.
type step struct {
	id       ir.NodeID
	kind     node.Kind
	boundary node.Boundary
	evaluate node.EvalFunc
	peek     node.EvalFunc
	params   node.Params

	inputs  []source
	inOff   int // offset into the per-run input scratch buffer
	outSlot int // first output slot in the value buffer
	nOut    int
}

// Program is a compiled board ready to run.
type Program struct {
	steps      []step
	sequential []int // step indices of sequential nodes
	inputSlots []int // value slot per boundary input index
	outputs    []source
	width      int // value buffer size
	inWidth    int // input scratch size
	order      []ir.NodeID
	cfg        config
}

// Compile validates a board and resolves it into a Program.
//
// Checks run in this order and the first failure is returned:
// unknown node types, node ids and arity, port references, boundary indices,
// combinational loops.
func Compile(b *ir.Board, reg *node.Registry, opts ...Option) (*Program, error) {
	cfg := newConfig(opts)
	log := cfg.logger.With("board", b.Name)

	defs, err := resolve(b, reg)
	if err == nil {
		err = checkNodes(b, defs)
	}
	if err == nil {
		err = checkReferences(b, defs)
	}
	if err == nil {
		err = checkBoundaries(b)
	}
	var sched *Schedule
	if err == nil {
		sched, err = order(b, defs)
	}
	if err != nil {
		log.Debug("board rejected", "error", err)
		return nil, err
	}
	log.Debug("schedule computed", "order", sched.Order, "deferred_wires", len(sched.Deferred))

	p := &Program{
		order: sched.Order,
		cfg:   cfg,
	}

	// Assign output slots in insertion order.
	outSlot := make([]int, len(b.Nodes))
	for i, n := range b.Nodes {
		outSlot[i] = p.width
		p.width += defs[i].OutputCount(n.OutputCount)
	}

	// Wired inputs, keyed by target. A second wire into the same port
	// overwrites the first; the editor never produces that.
	idx := nodeIndex(b)
	wired := make(map[ir.PortRef]int, len(b.Wires))
	for _, w := range b.Wires {
		wired[w.Target] = outSlot[idx[w.Source.NodeID]] + w.Source.Port
	}

	inputSource := func(id ir.NodeID, port int) source {
		if slot, ok := wired[ir.In(id, port)]; ok {
			return source{wired: true, slot: slot}
		}
		return source{constant: b.Constants[ir.ConstantKey(id, port)]}
	}

	p.inputSlots = make([]int, len(b.InputNodes()))
	p.outputs = make([]source, len(b.OutputNodes()))

	for _, pos := range sched.positions {
		n := b.Nodes[pos]
		def := defs[pos]
		s := step{
			id:       n.ID,
			kind:     def.Kind,
			boundary: def.Boundary,
			evaluate: def.Evaluate,
			peek:     def.Peek,
			params:   def.ResolveParams(n.Params),
			inOff:    p.inWidth,
			outSlot:  outSlot[pos],
			nOut:     def.OutputCount(n.OutputCount),
		}
		nIn := def.InputCount(n.InputCount)
		s.inputs = make([]source, nIn)
		for port := 0; port < nIn; port++ {
			s.inputs[port] = inputSource(n.ID, port)
		}
		p.inWidth += nIn

		switch def.Boundary {
		case node.BoundaryInput:
			p.inputSlots[*n.BoundaryIndex] = s.outSlot
		case node.BoundaryOutput:
			p.outputs[*n.BoundaryIndex] = inputSource(n.ID, 0)
		}

		if def.Kind == node.Sequential && def.Boundary == node.BoundaryNone {
			p.sequential = append(p.sequential, len(p.steps))
		}
		p.steps = append(p.steps, s)
	}

	return p, nil
}

// Order returns the evaluation order.
func (p *Program) Order() []ir.NodeID {
	return append([]ir.NodeID(nil), p.order...)
}

// Inputs returns the number of boundary inputs the generator must feed.
func (p *Program) Inputs() int { return len(p.inputSlots) }

// Outputs returns the number of boundary output columns.
func (p *Program) Outputs() int { return len(p.outputs) }

// Evaluate compiles and runs a board in one call.
func Evaluate(b *ir.Board, reg *node.Registry, gen InputGenerator, opts ...Option) (*CycleResults, error) {
	p, err := Compile(b, reg, opts...)
	if err != nil {
		return nil, err
	}
	return p.Run(gen), nil
}

func (p *Program) logger() *slog.Logger {
	return p.cfg.logger
}
