package engine

import (
	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/node"
)

// Run evaluates the program for the configured number of ticks.
//
// Every call starts from fresh state, so the same program and generator
// always produce the same samples. A nil generator feeds zeros.
func (p *Program) Run(gen InputGenerator) *CycleResults {
	cycles := p.cfg.cycles
	values := make([]float64, p.width)
	scratch := make([]float64, p.inWidth)
	state := make([]any, len(p.steps))

	res := &CycleResults{
		OutputValues: make([][]float64, cycles),
		Order:        p.Order(),
	}
	if p.cfg.trace {
		res.Trace = make(map[ir.NodeID][][]float64, len(p.steps))
		for _, s := range p.steps {
			res.Trace[s.id] = make([][]float64, cycles)
		}
	}

	ctx := &node.Context{}
	call := func(i int, fn node.EvalFunc, tick int) {
		s := &p.steps[i]
		in := scratch[s.inOff : s.inOff+len(s.inputs)]
		for port, src := range s.inputs {
			in[port] = src.read(values)
		}
		ctx.Inputs = in
		ctx.Params = s.params
		ctx.State = &state[i]
		ctx.Tick = tick
		ctx.Outputs = s.nOut
		out := values[s.outSlot : s.outSlot+s.nOut]
		got := fn(ctx)
		n := copy(out, got)
		clear(out[n:])
	}

	for tick := 0; tick < cycles; tick++ {
		var feed []float64
		if gen != nil {
			feed = gen(tick)
		}
		for i, slot := range p.inputSlots {
			if i < len(feed) {
				values[slot] = feed[i]
			} else {
				values[slot] = 0
			}
		}

		// Latch sequential outputs before anything reads them, so a consumer
		// scheduled ahead of its source sees this tick's value.
		for _, i := range p.sequential {
			call(i, p.steps[i].peek, tick)
		}

		for i := range p.steps {
			s := &p.steps[i]
			if s.boundary != node.BoundaryNone {
				continue
			}
			call(i, s.evaluate, tick)
		}

		row := make([]float64, len(p.outputs))
		for i, src := range p.outputs {
			row[i] = src.read(values)
		}
		res.OutputValues[tick] = row

		if res.Trace != nil {
			for _, s := range p.steps {
				res.Trace[s.id][tick] = append([]float64(nil), values[s.outSlot:s.outSlot+s.nOut]...)
			}
		}
	}

	p.logger().Debug("run complete", "cycles", cycles, "outputs", len(p.outputs))
	return res
}
