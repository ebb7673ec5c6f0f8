package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/chipwire/internal/ir"
	"github.com/roach88/chipwire/internal/node"
	"github.com/roach88/chipwire/internal/testutil"
)

func TestBuildSchedule_TopologicalOrder(t *testing.T) {
	// Inserted in reverse dependency order on purpose.
	b := testutil.NewBoard("rev").
		Output("out").
		Node("s", node.TypeScale).
		Node("o", node.TypeOffset).
		Input("in").
		Chain("in", "o", "s", "out").
		Build()

	s, err := BuildSchedule(b, node.Default())
	require.NoError(t, err)
	assert.Equal(t, []ir.NodeID{"in", "o", "s", "out"}, s.Order)
	assertTopological(t, b, s)
}

func TestBuildSchedule_TiesGoToInsertionOrder(t *testing.T) {
	b := testutil.NewBoard("ties").
		Node("c", node.TypeConstant).
		Node("a", node.TypeConstant).
		Node("b", node.TypeConstant).
		Node("sum", node.TypeMix).
		Wire("b", 0, "sum", 0).
		Wire("a", 0, "sum", 1).
		Build()

	s, err := BuildSchedule(b, node.Default())
	require.NoError(t, err)
	assert.Equal(t, []ir.NodeID{"c", "a", "b", "sum"}, s.Order)
}

func TestBuildSchedule_ReleasedNodesKeepInsertionOrder(t *testing.T) {
	// x and y become ready when in is processed and join z in insertion order.
	b := testutil.NewBoard("release").
		Input("in").
		Node("y", node.TypeInvert).
		Node("z", node.TypeConstant).
		Node("x", node.TypeInvert).
		Wire("in", 0, "x", 0).
		Wire("in", 0, "y", 0).
		Build()

	s, err := BuildSchedule(b, node.Default())
	require.NoError(t, err)
	assert.Equal(t, []ir.NodeID{"in", "y", "z", "x"}, s.Order)
}

func TestBuildSchedule_DefersSequentialEdges(t *testing.T) {
	b := feedbackBoard()

	s, err := BuildSchedule(b, node.Default())
	require.NoError(t, err)
	require.Len(t, s.Deferred, 1)
	assert.Equal(t, ir.NodeID("d"), s.Deferred[0].Source.NodeID)
	assertTopological(t, b, s)
}

func TestBuildSchedule_CombinationalCycle(t *testing.T) {
	b := testutil.NewBoard("loop").
		Node("A", node.TypeInvert).
		Node("B", node.TypeInvert).
		Wire("A", 0, "B", 0).
		Wire("B", 0, "A", 0).
		Build()

	_, err := BuildSchedule(b, node.Default())
	require.Error(t, err)
	assert.True(t, IsCycleError(err))

	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.ElementsMatch(t, []ir.NodeID{"A", "B"}, ee.NodeIDs)
	assert.Equal(t, [][]ir.NodeID{{"A", "B"}}, ee.Loops)
}

func TestBuildSchedule_CycleBrokenByDelay(t *testing.T) {
	b := testutil.NewBoard("loop").
		Node("A", node.TypeInvert).
		Node("B", node.TypeDelay).
		Wire("A", 0, "B", 0).
		Wire("B", 0, "A", 0).
		Build()

	s, err := BuildSchedule(b, node.Default())
	require.NoError(t, err)
	assert.Len(t, s.Order, 2)
}

func TestBuildSchedule_CycleSeparatesLoopsFromDownstream(t *testing.T) {
	b := testutil.NewBoard("collateral").
		Input("in").
		Node("A", node.TypeMix).
		Node("B", node.TypeInvert).
		Node("C", node.TypeInvert).
		Node("P", node.TypeInvert).
		Node("Q", node.TypeInvert).
		Output("out").
		Wire("in", 0, "A", 0).
		Wire("A", 0, "B", 0).
		Wire("B", 0, "A", 1).
		Wire("A", 0, "C", 0).
		Wire("C", 0, "out", 0).
		Wire("P", 0, "Q", 0).
		Wire("Q", 0, "P", 0).
		Build()

	_, err := BuildSchedule(b, node.Default())
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeCombinationalCycle, ee.Code)
	assert.Equal(t, []ir.NodeID{"A", "B", "C", "P", "Q", "out"}, ee.NodeIDs)
	assert.Equal(t, [][]ir.NodeID{{"A", "B"}, {"P", "Q"}}, ee.Loops)
}

func TestBuildSchedule_SelfLoop(t *testing.T) {
	b := testutil.NewBoard("self").
		Node("A", node.TypeInvert).
		Wire("A", 0, "A", 0).
		Build()

	_, err := BuildSchedule(b, node.Default())
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, [][]ir.NodeID{{"A"}}, ee.Loops)
}

func TestBuildSchedule_DelaySelfLoop(t *testing.T) {
	b := testutil.NewBoard("self").
		Node("D", node.TypeDelay).
		Wire("D", 0, "D", 0).
		Build()

	_, err := BuildSchedule(b, node.Default())
	assert.NoError(t, err)
}

func TestBuildSchedule_UnknownType(t *testing.T) {
	b := testutil.NewBoard("unknown").
		Input("in").
		Node("x", "flux-capacitor").
		Build()

	_, err := BuildSchedule(b, node.Default())
	assert.True(t, IsUnknownTypeError(err))

	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ir.NodeID("x"), ee.NodeID)
	assert.Equal(t, "flux-capacitor", ee.Type)
}

func TestBuildSchedule_UnknownTypeBeatsCycle(t *testing.T) {
	b := testutil.NewBoard("both").
		Node("A", node.TypeInvert).
		Node("B", node.TypeInvert).
		Node("C", "nope").
		Wire("A", 0, "B", 0).
		Wire("B", 0, "A", 0).
		Build()

	_, err := BuildSchedule(b, node.Default())
	assert.True(t, IsUnknownTypeError(err))
}

func TestBuildSchedule_InvalidPortReferences(t *testing.T) {
	tests := []struct {
		name  string
		build func(*testutil.BoardBuilder) *testutil.BoardBuilder
		node  ir.NodeID
		port  int
	}{
		{
			name: "target port out of range",
			build: func(b *testutil.BoardBuilder) *testutil.BoardBuilder {
				return b.Wire("in", 0, "x", 1)
			},
			node: "x", port: 1,
		},
		{
			name: "source port out of range",
			build: func(b *testutil.BoardBuilder) *testutil.BoardBuilder {
				return b.Wire("in", 2, "x", 0)
			},
			node: "in", port: 2,
		},
		{
			name: "unknown target node",
			build: func(b *testutil.BoardBuilder) *testutil.BoardBuilder {
				return b.Wire("in", 0, "ghost", 0)
			},
			node: "ghost", port: 0,
		},
		{
			name: "constant port out of range",
			build: func(b *testutil.BoardBuilder) *testutil.BoardBuilder {
				return b.Constant("x", 4, 10)
			},
			node: "x", port: 4,
		},
		{
			name: "constant on unknown node",
			build: func(b *testutil.BoardBuilder) *testutil.BoardBuilder {
				return b.Constant("ghost", 0, 10)
			},
			node: "ghost", port: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := tt.build(testutil.NewBoard("refs").Input("in").Node("x", node.TypeInvert)).Build()

			_, err := BuildSchedule(b, node.Default())
			require.Error(t, err)
			assert.True(t, IsPortReferenceError(err))

			var ee *EvalError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.node, ee.NodeID)
			assert.Equal(t, tt.port, ee.PortIndex)
		})
	}
}

func TestBuildSchedule_VariadicPortsAccepted(t *testing.T) {
	b := testutil.NewBoard("variadic").
		Input("in").
		Node("m", node.TypeMix).Ports(3, 0).
		Wire("in", 0, "m", 2).
		Build()

	_, err := BuildSchedule(b, node.Default())
	assert.NoError(t, err)
}

func TestBuildSchedule_WrongSideRejected(t *testing.T) {
	b := testutil.NewBoard("side").Input("in").Node("x", node.TypeInvert).Build()
	b.Wires = append(b.Wires, ir.Wire{ID: "bad", Source: ir.In("x", 0), Target: ir.In("x", 0)})

	_, err := BuildSchedule(b, node.Default())
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeInvalidPortReference, ee.Code)
	assert.Equal(t, "bad", ee.WireID)
}

// assertTopological checks that every same-tick wire goes forward in the order.
func assertTopological(t *testing.T, b *ir.Board, s *Schedule) {
	t.Helper()
	pos := make(map[ir.NodeID]int, len(s.Order))
	for i, id := range s.Order {
		pos[id] = i
	}
	deferred := make(map[string]bool, len(s.Deferred))
	for _, w := range s.Deferred {
		deferred[w.ID] = true
	}
	for _, w := range b.Wires {
		if deferred[w.ID] {
			continue
		}
		assert.Less(t, pos[w.Source.NodeID], pos[w.Target.NodeID], "wire %s", w.ID)
	}
}

// feedbackBoard: out = in + delayed(out).
func feedbackBoard() *ir.Board {
	return testutil.NewBoard("feedback").
		Input("in").
		Node("m", node.TypeMix).
		Node("d", node.TypeDelay).
		Output("out").
		Wire("in", 0, "m", 0).
		Wire("d", 0, "m", 1).
		Wire("m", 0, "d", 0).
		Wire("m", 0, "out", 0).
		Build()
}

func TestBuildSchedule_InvalidArity(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		in, out int
	}{
		{name: "too few inputs", typ: node.TypeMultiply, in: 1},
		{name: "fixed inputs exceeded", typ: node.TypeInvert, in: 2},
		{name: "too few variadic inputs", typ: node.TypeMix, in: 1},
		{name: "fixed outputs exceeded", typ: node.TypeOffset, out: 2},
		{name: "too few variadic outputs", typ: node.TypeSplit, out: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := testutil.NewBoard("arity").Node("n", tt.typ).Ports(tt.in, tt.out).Build()

			_, err := BuildSchedule(b, node.Default())
			var ee *EvalError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, ErrCodeInvalidArity, ee.Code)
			assert.Equal(t, ir.NodeID("n"), ee.NodeID)
			assert.Equal(t, tt.typ, ee.Type)
		})
	}
}

func TestBuildSchedule_DuplicateNodeID(t *testing.T) {
	b := testutil.NewBoard("dup").
		Input("in").
		Node("x", node.TypeInvert).
		Node("x", node.TypeScale).
		Build()

	_, err := BuildSchedule(b, node.Default())
	var ee *EvalError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, ErrCodeDuplicateNodeID, ee.Code)
	assert.Equal(t, ir.NodeID("x"), ee.NodeID)
}
