package testutil

import (
	"fmt"

	"github.com/roach88/chipwire/internal/ir"
)

// BoardBuilder assembles an ir.Board in insertion order.
//
//	b := testutil.NewBoard("pass").
//		Input("in").
//		Output("out").
//		Wire("in", 0, "out", 0).
//		Build()
type BoardBuilder struct {
	board *ir.Board
	wires int
}

// NewBoard starts an empty board.
func NewBoard(name string) *BoardBuilder {
	return &BoardBuilder{board: &ir.Board{Name: name, Constants: ir.PortConstants{}}}
}

// Node adds a node of the given type with optional params.
func (b *BoardBuilder) Node(id, typ string, params ...map[string]float64) *BoardBuilder {
	n := &ir.NodeInstance{
		ID:   ir.NodeID(id),
		Type: typ,
	}
	if len(params) > 0 {
		n.Params = params[0]
	}
	b.board.Nodes = append(b.board.Nodes, n)
	return b
}

// Ports overrides the input and output counts of the most recently added node.
func (b *BoardBuilder) Ports(inputs, outputs int) *BoardBuilder {
	n := b.last()
	n.InputCount = inputs
	n.OutputCount = outputs
	return b
}

// Input adds a connection-input node; indices are assigned on Build.
func (b *BoardBuilder) Input(id string) *BoardBuilder {
	return b.Node(id, ir.TypeConnectionInput)
}

// Output adds a connection-output node; indices are assigned on Build.
func (b *BoardBuilder) Output(id string) *BoardBuilder {
	return b.Node(id, ir.TypeConnectionOutput)
}

// Index pins the boundary index of the most recently added node.
func (b *BoardBuilder) Index(i int) *BoardBuilder {
	b.last().BoundaryIndex = ir.At(i)
	return b
}

// Wire connects from's output port to to's input port. Wire ids are w1, w2, ...
func (b *BoardBuilder) Wire(from string, fromPort int, to string, toPort int) *BoardBuilder {
	b.wires++
	b.board.Wires = append(b.board.Wires, ir.Wire{
		ID:     fmt.Sprintf("w%d", b.wires),
		Source: ir.Out(ir.NodeID(from), fromPort),
		Target: ir.In(ir.NodeID(to), toPort),
	})
	return b
}

// Chain wires port 0 to port 0 along ids.
func (b *BoardBuilder) Chain(ids ...string) *BoardBuilder {
	for i := 1; i < len(ids); i++ {
		b.Wire(ids[i-1], 0, ids[i], 0)
	}
	return b
}

// Constant sets a literal on an unwired input port.
func (b *BoardBuilder) Constant(id string, port int, v float64) *BoardBuilder {
	b.board.Constants[ir.ConstantKey(ir.NodeID(id), port)] = v
	return b
}

// Build assigns any missing boundary indices and returns the board.
func (b *BoardBuilder) Build() *ir.Board {
	ir.AssignBoundaryIndices(b.board)
	return b.board
}

// Raw returns the board without assigning boundary indices.
func (b *BoardBuilder) Raw() *ir.Board {
	return b.board
}

func (b *BoardBuilder) last() *ir.NodeInstance {
	if len(b.board.Nodes) == 0 {
		panic("testutil: no node added yet")
	}
	return b.board.Nodes[len(b.board.Nodes)-1]
}
